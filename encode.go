package ical

import (
	"strconv"
	"strings"

	"github.com/kronocal/ical/internal/grammar"
	"github.com/kronocal/ical/recurrence"
)

// Encode serializes cal back to RFC 5545 text: CRLF line endings, folded at
// 75 octets. Unknown properties and components round-trip verbatim.
func Encode(cal *Calendar) string {
	root := &grammar.ParsedComponent{Name: "VCALENDAR"}

	root.Properties = append(root.Properties, grammar.ContentLine{Name: "PRODID", Value: grammar.EscapeText(cal.ProdID)})
	root.Properties = append(root.Properties, grammar.ContentLine{Name: "VERSION", Value: cal.Version})
	root.Properties = append(root.Properties, cal.Extra...)

	for _, ev := range cal.Events {
		root.Children = append(root.Children, encodeEvent(ev))
	}
	for _, td := range cal.ToDos {
		root.Children = append(root.Children, encodeToDo(td))
	}
	for _, j := range cal.Journals {
		root.Children = append(root.Children, encodeJournal(j))
	}
	for _, f := range cal.FreeBusy {
		root.Children = append(root.Children, encodeFreeBusy(f))
	}
	root.Children = append(root.Children, cal.TimeZones...)

	return grammar.EmitComponents([]*grammar.ParsedComponent{root})
}

// encodeItemHead emits the two properties that precede an item's own
// anchor (DTSTART/DUE): UID and DTSTAMP.
func encodeItemHead(comp *grammar.ParsedComponent, it *Item) {
	comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "UID", Value: it.UID})
	comp.Properties = append(comp.Properties, encodeUTCDateTime("DTSTAMP", it.DTStamp))
}

// encodeItemTail emits every Item property that follows the anchor.
func encodeItemTail(comp *grammar.ParsedComponent, it *Item) {
	if it.Summary != "" {
		comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "SUMMARY", Value: grammar.EscapeText(it.Summary)})
	}
	if it.Description != "" {
		comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "DESCRIPTION", Value: grammar.EscapeText(it.Description)})
	}
	if it.Location != "" {
		comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "LOCATION", Value: grammar.EscapeText(it.Location)})
	}
	if it.Status != StatusNone {
		comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "STATUS", Value: string(it.Status)})
	}
	if it.Class != "" {
		comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "CLASS", Value: string(it.Class)})
	}
	if it.Priority != 0 {
		comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "PRIORITY", Value: strconv.Itoa(it.Priority)})
	}
	if it.Geo != nil {
		comp.Properties = append(comp.Properties, grammar.ContentLine{
			Name:  "GEO",
			Value: strconv.FormatFloat(it.Geo.Lat, 'f', 6, 64) + ";" + strconv.FormatFloat(it.Geo.Lon, 'f', 6, 64),
		})
	}
	if it.Sequence != 0 {
		comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "SEQUENCE", Value: strconv.Itoa(it.Sequence)})
	}
	if it.Created != nil {
		comp.Properties = append(comp.Properties, encodeUTCDateTime("CREATED", *it.Created))
	}
	if it.LastModified != nil {
		comp.Properties = append(comp.Properties, encodeUTCDateTime("LAST-MODIFIED", *it.LastModified))
	}
	if it.RecurrenceID != nil {
		comp.Properties = append(comp.Properties, encodeDateOrDateTime("RECURRENCE-ID", *it.RecurrenceID))
	}
	if it.RRule != nil {
		comp.Properties = append(comp.Properties, encodeRRule(it.RRule))
	}
	for _, rd := range it.RDate {
		comp.Properties = append(comp.Properties, encodeDateOrDateTime("RDATE", rd))
	}
	for _, ex := range it.EXDate {
		comp.Properties = append(comp.Properties, encodeDateOrDateTime("EXDATE", ex))
	}
	for _, rel := range it.RelatedTo {
		cl := grammar.ContentLine{Name: "RELATED-TO", Value: rel.UID}
		if rel.RelType != "" && rel.RelType != RelParent {
			cl.Parameters = append(cl.Parameters, grammar.Parameter{Name: "RELTYPE", Values: []string{string(rel.RelType)}})
		}
		comp.Properties = append(comp.Properties, cl)
	}
	if len(it.Categories) > 0 {
		comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "CATEGORIES", Value: encodeTextList(it.Categories)})
	}
	if len(it.Resources) > 0 {
		comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "RESOURCES", Value: encodeTextList(it.Resources)})
	}
	comp.Properties = append(comp.Properties, it.Extra...)
}

func encodeEvent(ev *Event) *grammar.ParsedComponent {
	comp := &grammar.ParsedComponent{Name: "VEVENT"}
	encodeItemHead(comp, &ev.Item)
	comp.Properties = append(comp.Properties, encodeDateOrDateTime("DTSTART", ev.DTStart))
	if ev.DTEnd != nil {
		comp.Properties = append(comp.Properties, encodeDateOrDateTime("DTEND", *ev.DTEnd))
	}
	if ev.Duration != nil {
		comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "DURATION", Value: FormatDuration(*ev.Duration)})
	}
	encodeItemTail(comp, &ev.Item)
	return comp
}

func encodeToDo(td *ToDo) *grammar.ParsedComponent {
	comp := &grammar.ParsedComponent{Name: "VTODO"}
	encodeItemHead(comp, &td.Item)
	if td.DTStart != nil {
		comp.Properties = append(comp.Properties, encodeDateOrDateTime("DTSTART", *td.DTStart))
	}
	if td.Due != nil {
		comp.Properties = append(comp.Properties, encodeDateOrDateTime("DUE", *td.Due))
	}
	if td.Duration != nil {
		comp.Properties = append(comp.Properties, grammar.ContentLine{Name: "DURATION", Value: FormatDuration(*td.Duration)})
	}
	encodeItemTail(comp, &td.Item)
	return comp
}

func encodeJournal(j *Journal) *grammar.ParsedComponent {
	return &grammar.ParsedComponent{Name: "VJOURNAL", Properties: j.Properties}
}

func encodeFreeBusy(f *FreeBusy) *grammar.ParsedComponent {
	return &grammar.ParsedComponent{Name: "VFREEBUSY", Properties: f.Properties}
}

func encodeUTCDateTime(name string, v Value) grammar.ContentLine {
	return grammar.ContentLine{Name: name, Value: v.When.UTC().Format("20060102T150405Z")}
}

// encodeDateOrDateTime renders v per its Kind: DATE emits VALUE=DATE and an
// 8-digit value; UTC date-time emits a trailing Z; zoned emits TZID=; a
// floating date-time emits neither.
func encodeDateOrDateTime(name string, v Value) grammar.ContentLine {
	cl := grammar.ContentLine{Name: name}
	switch v.Kind {
	case KindDate:
		cl.Parameters = []grammar.Parameter{{Name: "VALUE", Values: []string{"DATE"}}}
		cl.Value = v.When.Format("20060102")
	case KindDateTimeUTC:
		cl.Value = v.When.UTC().Format("20060102T150405Z")
	case KindDateTimeZoned:
		cl.Parameters = []grammar.Parameter{{Name: "TZID", Values: []string{v.TZID}}}
		cl.Value = v.When.Format("20060102T150405")
	default: // floating
		cl.Value = v.When.Format("20060102T150405")
	}
	return cl
}

func encodeTextList(items []string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = grammar.EscapeText(s)
	}
	return strings.Join(out, ",")
}

func encodeRRule(r *recurrence.RecurrenceRule) grammar.ContentLine {
	var b strings.Builder
	b.WriteString("FREQ=")
	b.WriteString(string(r.Freq))
	if r.Interval > 1 {
		b.WriteString(";INTERVAL=")
		b.WriteString(strconv.Itoa(r.Interval))
	}
	if r.Count > 0 {
		b.WriteString(";COUNT=")
		b.WriteString(strconv.Itoa(r.Count))
	}
	if r.Until != nil {
		b.WriteString(";UNTIL=")
		if r.Until.IsAllDay() {
			b.WriteString(r.Until.When.Format("20060102"))
		} else {
			b.WriteString(r.Until.When.UTC().Format("20060102T150405Z"))
		}
	}
	writeIntList(&b, "BYSECOND", r.BySecond)
	writeIntList(&b, "BYMINUTE", r.ByMinute)
	writeIntList(&b, "BYHOUR", r.ByHour)
	if len(r.ByDay) > 0 {
		b.WriteString(";BYDAY=")
		for i, bd := range r.ByDay {
			if i > 0 {
				b.WriteByte(',')
			}
			if bd.Ordinal != 0 {
				b.WriteString(strconv.Itoa(bd.Ordinal))
			}
			b.WriteString(string(bd.Day))
		}
	}
	writeIntList(&b, "BYMONTHDAY", r.ByMonthDay)
	writeIntList(&b, "BYYEARDAY", r.ByYearDay)
	writeIntList(&b, "BYWEEKNO", r.ByWeekNo)
	writeIntList(&b, "BYMONTH", r.ByMonth)
	writeIntList(&b, "BYSETPOS", r.BySetPos)
	if r.WKST != "" && r.WKST != recurrence.Monday {
		b.WriteString(";WKST=")
		b.WriteString(string(r.WKST))
	}
	return grammar.ContentLine{Name: "RRULE", Value: b.String()}
}

func writeIntList(b *strings.Builder, name string, vs []int) {
	if len(vs) == 0 {
		return
	}
	b.WriteByte(';')
	b.WriteString(name)
	b.WriteByte('=')
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
}
