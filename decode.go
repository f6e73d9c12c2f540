package ical

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kronocal/ical/internal/grammar"
	"github.com/kronocal/ical/recurrence"
	"github.com/kronocal/ical/values"
	"github.com/samber/mo"
)

// Decode parses text into a Calendar. text must hold exactly one VCALENDAR;
// a second one is rejected, and other top-level components are ignored.
func Decode(text string, opts Options) (*Calendar, error) {
	roots, err := grammar.Parse(text)
	if err != nil {
		return nil, wrapGrammarError(err)
	}

	var root *grammar.ParsedComponent
	for _, r := range roots {
		if r.Name == "VCALENDAR" {
			if root != nil {
				return nil, validationErr("more than one VCALENDAR at the top level")
			}
			root = r
		}
	}
	if root == nil {
		return nil, validationErr("no VCALENDAR component found")
	}

	return decodeCalendar(root, opts)
}

func wrapGrammarError(err error) error {
	switch err.(type) {
	case *grammar.LexError:
		return &Error{Kind: KindLex, Message: err.Error(), Err: err}
	case *grammar.ParseError:
		return &Error{Kind: KindParse, Message: err.Error(), Err: err}
	default:
		return &Error{Kind: KindParse, Message: err.Error(), Err: err}
	}
}

func decodeCalendar(root *grammar.ParsedComponent, opts Options) (*Calendar, error) {
	cal := &Calendar{}

	if cl, ok := root.Prop("PRODID"); ok {
		v, err := unescapeText(cl.Value, opts)
		if err != nil {
			return nil, decodeErr("PRODID: %v", err)
		}
		cal.ProdID = v
	}
	if cl, ok := root.Prop("VERSION"); ok {
		cal.Version = cl.Value
	}

	known := map[string]bool{"PRODID": true, "VERSION": true, "CALSCALE": true, "METHOD": true}
	for _, p := range root.Properties {
		if !known[p.Name] {
			cal.Extra = append(cal.Extra, p)
		} else if p.Name == "CALSCALE" || p.Name == "METHOD" {
			cal.Extra = append(cal.Extra, p)
		}
	}

	for _, comp := range root.Children {
		switch comp.Name {
		case "VEVENT":
			ev, err := decodeEvent(comp, opts)
			if err != nil {
				return nil, err
			}
			cal.Events = append(cal.Events, ev)
		case "VTODO":
			td, err := decodeToDo(comp, opts)
			if err != nil {
				return nil, err
			}
			cal.ToDos = append(cal.ToDos, td)
		case "VJOURNAL":
			cal.Journals = append(cal.Journals, decodeJournal(comp))
		case "VFREEBUSY":
			cal.FreeBusy = append(cal.FreeBusy, decodeFreeBusy(comp))
		case "VTIMEZONE":
			cal.TimeZones = append(cal.TimeZones, comp)
		default:
			// Unknown component kinds round-trip as opaque trees too: they
			// are kept in TimeZones alongside VTIMEZONE blocks, which Encode
			// re-emits verbatim.
			cal.TimeZones = append(cal.TimeZones, comp)
		}
	}

	return cal, nil
}

var knownItemProps = map[string]bool{
	"UID": true, "DTSTAMP": true, "SUMMARY": true, "DESCRIPTION": true,
	"LOCATION": true, "STATUS": true, "CLASS": true, "PRIORITY": true, "GEO": true,
	"SEQUENCE": true, "CREATED": true, "LAST-MODIFIED": true,
	"RECURRENCE-ID": true, "RRULE": true, "RDATE": true, "EXDATE": true,
	"RELATED-TO": true, "CATEGORIES": true, "RESOURCES": true,
	"DTSTART": true, "DTEND": true, "DUE": true, "DURATION": true,
}

func decodeItemCommon(comp *grammar.ParsedComponent, opts Options) (Item, error) {
	var it Item

	uid, ok := comp.Prop("UID")
	if !ok {
		return it, validationErr(comp.Name + " is missing required UID")
	}
	it.UID = uid.Value

	stamp, ok := comp.Prop("DTSTAMP")
	if !ok {
		return it, validationErr(comp.Name + " is missing required DTSTAMP")
	}
	dtstamp, err := decodeUTCDateTimeResult(stamp).Get()
	if err != nil {
		return it, err
	}
	it.DTStamp = dtstamp

	if cl, ok := comp.Prop("SUMMARY"); ok {
		v, err := unescapeText(cl.Value, opts)
		if err != nil {
			return it, decodeErr("SUMMARY: %v", err)
		}
		it.Summary = v
	}
	if cl, ok := comp.Prop("DESCRIPTION"); ok {
		v, err := unescapeText(cl.Value, opts)
		if err != nil {
			return it, decodeErr("DESCRIPTION: %v", err)
		}
		it.Description = v
	}
	if cl, ok := comp.Prop("LOCATION"); ok {
		v, err := unescapeText(cl.Value, opts)
		if err != nil {
			return it, decodeErr("LOCATION: %v", err)
		}
		it.Location = v
	}
	if cl, ok := comp.Prop("STATUS"); ok {
		it.Status = Status(cl.Value)
	}
	if cl, ok := comp.Prop("CLASS"); ok {
		it.Class = Class(cl.Value)
	}
	if cl, ok := comp.Prop("PRIORITY"); ok {
		n, err := strconv.Atoi(cl.Value)
		if err != nil {
			return it, decodeErr("PRIORITY: %v", err)
		}
		it.Priority = n
	}
	if cl, ok := comp.Prop("GEO"); ok {
		g, err := decodeGeo(cl.Value)
		if err != nil {
			return it, err
		}
		it.Geo = g
	}
	if cl, ok := comp.Prop("SEQUENCE"); ok {
		n, err := strconv.Atoi(cl.Value)
		if err != nil {
			return it, decodeErr("SEQUENCE: %v", err)
		}
		it.Sequence = n
	}
	if cl, ok := comp.Prop("CREATED"); ok {
		v, err := decodeUTCDateTimeResult(cl).Get()
		if err != nil {
			return it, err
		}
		it.Created = &v
	}
	if cl, ok := comp.Prop("LAST-MODIFIED"); ok {
		v, err := decodeUTCDateTimeResult(cl).Get()
		if err != nil {
			return it, err
		}
		it.LastModified = &v
	}
	if cl, ok := comp.Prop("RECURRENCE-ID"); ok {
		v, err := decodeDateOrDateTime(cl, opts).Get()
		if err != nil {
			return it, err
		}
		it.RecurrenceID = &v
	}
	if cl, ok := comp.Prop("RRULE"); ok {
		rule, err := decodeRRule(cl.Value, opts)
		if err != nil {
			return it, err
		}
		it.RRule = rule
	}
	for _, cl := range comp.Props("RDATE") {
		vs, err := decodeDateListProp(cl, opts)
		if err != nil {
			return it, err
		}
		it.RDate = append(it.RDate, vs...)
	}
	for _, cl := range comp.Props("EXDATE") {
		vs, err := decodeDateListProp(cl, opts)
		if err != nil {
			return it, err
		}
		it.EXDate = append(it.EXDate, vs...)
	}
	for _, cl := range comp.Props("RELATED-TO") {
		rel := RelatedTo{UID: cl.Value, RelType: RelParent}
		if rt, ok := cl.ParamValue("RELTYPE"); ok {
			rel.RelType = RelType(rt)
		}
		it.RelatedTo = append(it.RelatedTo, rel)
	}
	for _, cl := range comp.Props("CATEGORIES") {
		vs, err := decodeTextList(cl.Value, opts)
		if err != nil {
			return it, decodeErr("CATEGORIES: %v", err)
		}
		it.Categories = append(it.Categories, vs...)
	}
	for _, cl := range comp.Props("RESOURCES") {
		vs, err := decodeTextList(cl.Value, opts)
		if err != nil {
			return it, decodeErr("RESOURCES: %v", err)
		}
		it.Resources = append(it.Resources, vs...)
	}

	for _, p := range comp.Properties {
		if !knownItemProps[p.Name] {
			it.Extra = append(it.Extra, p)
		}
	}

	return it, nil
}

func decodeEvent(comp *grammar.ParsedComponent, opts Options) (*Event, error) {
	it, err := decodeItemCommon(comp, opts)
	if err != nil {
		return nil, err
	}
	ev := &Event{Item: it}

	start, ok := comp.Prop("DTSTART")
	if !ok {
		return nil, validationErr("VEVENT is missing required DTSTART")
	}
	dtstart, err := decodeDateOrDateTime(start, opts).Get()
	if err != nil {
		return nil, err
	}
	ev.DTStart = dtstart

	endCL, hasEnd := comp.Prop("DTEND")
	durCL, hasDur := comp.Prop("DURATION")
	if hasEnd {
		end, err := decodeDateOrDateTime(endCL, opts).Get()
		if err != nil {
			return nil, err
		}
		ev.DTEnd = &end
	}
	if hasDur {
		d, err := values.ParseDuration(durCL.Value)
		if err != nil {
			return nil, decodeErr("DURATION: %v", err)
		}
		ev.Duration = &d
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if ev.RRule != nil {
		if err := ev.RRule.Validate(ev.Anchor()); err != nil {
			return nil, err
		}
	}
	return ev, nil
}

func decodeToDo(comp *grammar.ParsedComponent, opts Options) (*ToDo, error) {
	it, err := decodeItemCommon(comp, opts)
	if err != nil {
		return nil, err
	}
	td := &ToDo{Item: it}

	if cl, ok := comp.Prop("DTSTART"); ok {
		v, err := decodeDateOrDateTime(cl, opts).Get()
		if err != nil {
			return nil, err
		}
		td.DTStart = &v
	}

	dueCL, hasDue := comp.Prop("DUE")
	durCL, hasDur := comp.Prop("DURATION")
	if hasDue {
		v, err := decodeDateOrDateTime(dueCL, opts).Get()
		if err != nil {
			return nil, err
		}
		td.Due = &v
	}
	if hasDur {
		d, err := values.ParseDuration(durCL.Value)
		if err != nil {
			return nil, decodeErr("DURATION: %v", err)
		}
		td.Duration = &d
	}

	if err := td.Validate(); err != nil {
		return nil, err
	}
	if td.RRule != nil {
		if err := td.RRule.Validate(td.Anchor()); err != nil {
			return nil, err
		}
	}
	return td, nil
}

func decodeJournal(comp *grammar.ParsedComponent) *Journal {
	j := &Journal{Properties: comp.Properties}
	if cl, ok := comp.Prop("UID"); ok {
		j.UID = cl.Value
	}
	if cl, ok := comp.Prop("DTSTAMP"); ok {
		if v, err := decodeUTCDateTimeResult(cl).Get(); err == nil {
			j.DTStamp = v
		}
	}
	return j
}

func decodeFreeBusy(comp *grammar.ParsedComponent) *FreeBusy {
	f := &FreeBusy{Properties: comp.Properties}
	if cl, ok := comp.Prop("UID"); ok {
		f.UID = cl.Value
	}
	if cl, ok := comp.Prop("DTSTAMP"); ok {
		if v, err := decodeUTCDateTimeResult(cl).Get(); err == nil {
			f.DTStamp = v
		}
	}
	return f
}

// decodeDateOrDateTime implements the DTSTART/DTEND/DUE/RECURRENCE-ID value
// rule: VALUE=DATE forces a DATE; a trailing Z means UTC and forbids TZID;
// TZID attaches a zone to an otherwise floating date-time.
func decodeDateOrDateTime(cl grammar.ContentLine, opts Options) mo.Result[Value] {
	raw := cl.Value
	valueParam, hasValue := cl.ParamValue("VALUE")
	tzidParam, hasTZID := cl.ParamValue("TZID")
	forceDate := hasValue && strings.EqualFold(valueParam, "DATE")

	if forceDate || !strings.Contains(raw, "T") {
		y, m, d, err := parseDateDigits(raw)
		if err != nil {
			return mo.Err[Value](decodeErr("%s: %v", cl.Name, err))
		}
		return mo.Ok(values.NewDate(y, m, d))
	}

	t, isUTC, err := parseDateTimeDigits(raw)
	if err != nil {
		return mo.Err[Value](decodeErr("%s: %v", cl.Name, err))
	}
	switch {
	case isUTC:
		if hasTZID {
			return mo.Err[Value](decodeErr("%s: TZID is not allowed on a UTC date-time", cl.Name))
		}
		return mo.Ok(values.NewDateTimeUTC(t))
	case hasTZID:
		loc, ok := opts.tzLookup()(tzidParam)
		if !ok {
			return mo.Err[Value](decodeErr("%s: unknown time zone %q", cl.Name, tzidParam))
		}
		zoned := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
		return mo.Ok(values.NewDateTimeZoned(zoned, tzidParam))
	default:
		return mo.Ok(values.NewDateTimeFloating(t))
	}
}

// decodeUTCDateTimeResult decodes DTSTAMP/CREATED/LAST-MODIFIED: always
// DATE-TIME in UTC, no TZID allowed.
func decodeUTCDateTimeResult(cl grammar.ContentLine) mo.Result[Value] {
	if _, hasTZID := cl.ParamValue("TZID"); hasTZID {
		return mo.Err[Value](decodeErr("%s: TZID is not allowed", cl.Name))
	}
	t, isUTC, err := parseDateTimeDigits(cl.Value)
	if err != nil {
		return mo.Err[Value](decodeErr("%s: %v", cl.Name, err))
	}
	if !isUTC {
		return mo.Err[Value](decodeErr("%s: must be a UTC date-time", cl.Name))
	}
	return mo.Ok(values.NewDateTimeUTC(t))
}

func decodeDateListProp(cl grammar.ContentLine, opts Options) ([]Value, error) {
	parts := strings.Split(cl.Value, ",")
	out := make([]Value, 0, len(parts))
	for _, part := range parts {
		single := cl
		single.Value = part
		v, err := decodeDateOrDateTime(single, opts).Get()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeTextList(raw string, opts Options) ([]string, error) {
	parts := splitUnescaped(raw, ',')
	out := make([]string, len(parts))
	for i, p := range parts {
		v, err := unescapeText(p, opts)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// unescapeText resolves textual escapes per opts: lenient mode passes an
// unrecognized escape through verbatim (round-trip fidelity); strict mode
// rejects it (spec §6's strict_rfc5545 "malformed escapes" clause).
func unescapeText(s string, opts Options) (string, error) {
	if opts.StrictRFC5545 {
		return grammar.UnescapeTextStrict(s)
	}
	return grammar.UnescapeText(s), nil
}

func splitUnescaped(s string, sep byte) []string {
	var out []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			cur.WriteByte(s[i])
			cur.WriteByte(s[i+1])
			i++
			continue
		}
		if s[i] == sep {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	out = append(out, cur.String())
	return out
}

// decodeGeo parses a GEO value: two semicolon-separated signed decimal
// degrees, latitude then longitude (RFC 5545 §3.8.1.6).
func decodeGeo(raw string) (*Geo, error) {
	parts := strings.SplitN(raw, ";", 2)
	if len(parts) != 2 {
		return nil, decodeErr("GEO: expected \"lat;lon\", got %q", raw)
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, decodeErr("GEO: invalid latitude %q: %v", parts[0], err)
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, decodeErr("GEO: invalid longitude %q: %v", parts[1], err)
	}
	return &Geo{Lat: lat, Lon: lon}, nil
}

func parseDateDigits(raw string) (int, time.Month, int, error) {
	if len(raw) != 8 {
		return 0, 0, 0, fmt.Errorf("invalid DATE value %q", raw)
	}
	y, err1 := strconv.Atoi(raw[0:4])
	m, err2 := strconv.Atoi(raw[4:6])
	d, err3 := strconv.Atoi(raw[6:8])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, fmt.Errorf("invalid DATE value %q", raw)
	}
	return y, time.Month(m), d, nil
}

func parseDateTimeDigits(raw string) (time.Time, bool, error) {
	isUTC := strings.HasSuffix(raw, "Z")
	body := strings.TrimSuffix(raw, "Z")
	if len(body) != 15 || body[8] != 'T' {
		return time.Time{}, false, fmt.Errorf("invalid DATE-TIME value %q", raw)
	}
	y, err1 := strconv.Atoi(body[0:4])
	mo_, err2 := strconv.Atoi(body[4:6])
	d, err3 := strconv.Atoi(body[6:8])
	hh, err4 := strconv.Atoi(body[9:11])
	mm, err5 := strconv.Atoi(body[11:13])
	ss, err6 := strconv.Atoi(body[13:15])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return time.Time{}, false, fmt.Errorf("invalid DATE-TIME value %q", raw)
	}
	return time.Date(y, time.Month(mo_), d, hh, mm, ss, 0, time.UTC), isUTC, nil
}

// decodeRRule parses an RRULE value's structured parts into a
// recurrence.RecurrenceRule, preserving every part (including ones this
// engine cannot expand) so an unsupported FREQ still round-trips — unless
// opts.StrictRFC5545 is set, in which case an unrecognized FREQ token (not
// one of RFC 5545's seven, never mind whether this engine can expand it)
// is rejected outright rather than preserved.
func decodeRRule(raw string, opts Options) (*recurrence.RecurrenceRule, error) {
	rule := &recurrence.RecurrenceRule{Interval: 1, WKST: recurrence.Monday}
	for _, part := range strings.Split(raw, ";") {
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, decodeErr("RRULE: malformed part %q", part)
		}
		key, val := strings.ToUpper(kv[0]), kv[1]
		var err error
		switch key {
		case "FREQ":
			freq := recurrence.Freq(strings.ToUpper(val))
			if opts.StrictRFC5545 && !freq.Known() {
				return nil, decodeErr("RRULE: FREQ=%s is not a recognized frequency", val)
			}
			rule.Freq = freq
		case "INTERVAL":
			rule.Interval, err = strconv.Atoi(val)
		case "COUNT":
			rule.Count, err = strconv.Atoi(val)
		case "UNTIL":
			until, uerr := parseUntilValue(val)
			if uerr != nil {
				return nil, decodeErr("RRULE: UNTIL: %v", uerr)
			}
			rule.Until = &until
		case "BYSECOND":
			rule.BySecond, err = parseIntList(val)
		case "BYMINUTE":
			rule.ByMinute, err = parseIntList(val)
		case "BYHOUR":
			rule.ByHour, err = parseIntList(val)
		case "BYDAY":
			rule.ByDay, err = parseByDayList(val)
		case "BYMONTHDAY":
			rule.ByMonthDay, err = parseIntList(val)
		case "BYYEARDAY":
			rule.ByYearDay, err = parseIntList(val)
		case "BYWEEKNO":
			rule.ByWeekNo, err = parseIntList(val)
		case "BYMONTH":
			rule.ByMonth, err = parseIntList(val)
		case "BYSETPOS":
			rule.BySetPos, err = parseIntList(val)
		case "WKST":
			rule.WKST = recurrence.Weekday(val)
		}
		if err != nil {
			return nil, decodeErr("RRULE: part %q: %v", part, err)
		}
	}
	return rule, nil
}

func parseUntilValue(val string) (Value, error) {
	if !strings.Contains(val, "T") {
		y, m, d, err := parseDateDigits(val)
		if err != nil {
			return Value{}, err
		}
		return values.NewDate(y, m, d), nil
	}
	t, isUTC, err := parseDateTimeDigits(val)
	if err != nil {
		return Value{}, err
	}
	if isUTC {
		return values.NewDateTimeUTC(t), nil
	}
	return values.NewDateTimeFloating(t), nil
}

func parseIntList(val string) ([]int, error) {
	parts := strings.Split(val, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func parseByDayList(val string) ([]recurrence.ByDay, error) {
	parts := strings.Split(val, ",")
	out := make([]recurrence.ByDay, len(parts))
	for i, p := range parts {
		idx := 0
		for idx < len(p) && (p[idx] == '+' || p[idx] == '-' || (p[idx] >= '0' && p[idx] <= '9')) {
			idx++
		}
		var ordinal int
		if idx > 0 {
			n, err := strconv.Atoi(p[:idx])
			if err != nil {
				return nil, fmt.Errorf("invalid BYDAY ordinal in %q", p)
			}
			ordinal = n
		}
		day := p[idx:]
		if len(day) != 2 {
			return nil, fmt.Errorf("invalid BYDAY weekday in %q", p)
		}
		out[i] = recurrence.ByDay{Ordinal: ordinal, Day: recurrence.Weekday(day)}
	}
	return out, nil
}
