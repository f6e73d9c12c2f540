package ical

import (
	"time"

	"github.com/kronocal/ical/internal/grammar"
	"github.com/kronocal/ical/recurrence"
)

// Status is the STATUS enumeration, shared by events and to-dos even
// though RFC 5545 defines distinct value sets for each; the decoder stores
// any STATUS text verbatim, known or not, and the encoder re-emits it.
type Status string

const (
	StatusNone        Status = ""
	StatusTentative   Status = "TENTATIVE"
	StatusConfirmed   Status = "CONFIRMED"
	StatusCancelled   Status = "CANCELLED"
	StatusNeedsAction Status = "NEEDS-ACTION"
	StatusCompleted   Status = "COMPLETED"
	StatusInProcess   Status = "IN-PROCESS"
	StatusDraft       Status = "DRAFT"
	StatusFinal       Status = "FINAL"
)

// Class is the CLASS text enumeration.
type Class string

const (
	ClassPublic       Class = "PUBLIC"
	ClassPrivate      Class = "PRIVATE"
	ClassConfidential Class = "CONFIDENTIAL"
)

// RelType is a RELATED-TO RELTYPE value.
type RelType string

const (
	RelParent  RelType = "PARENT"
	RelChild   RelType = "CHILD"
	RelSibling RelType = "SIBLING"
)

// RelatedTo links an item to another by UID.
type RelatedTo struct {
	UID     string
	RelType RelType
}

// Geo is a GEO property: a geographic position in decimal degrees.
type Geo struct {
	Lat float64
	Lon float64
}

// Item is the field set shared by Event and ToDo (spec's "Event / ToDo
// (collectively Items)").
type Item struct {
	UID     string
	DTStamp Value

	Summary     string
	Description string
	Location    string
	Status      Status
	Class       Class
	Priority    int // 0 = undefined; 1 (highest) .. 9 (lowest)
	Geo         *Geo

	Sequence     int
	Created      *Value
	LastModified *Value

	RecurrenceID *Value
	RRule        *recurrence.RecurrenceRule
	RDate        []Value
	EXDate       []Value

	RelatedTo  []RelatedTo
	Categories []string
	Resources  []string

	// Extra holds unrecognized properties verbatim so round-trip
	// (testable property 1) survives properties this model doesn't name.
	Extra []grammar.ContentLine
}

func (it *Item) clone() Item {
	cp := *it
	cp.RDate = append([]Value(nil), it.RDate...)
	cp.EXDate = append([]Value(nil), it.EXDate...)
	cp.RelatedTo = append([]RelatedTo(nil), it.RelatedTo...)
	cp.Categories = append([]string(nil), it.Categories...)
	cp.Resources = append([]string(nil), it.Resources...)
	cp.Extra = append([]grammar.ContentLine(nil), it.Extra...)
	if it.Geo != nil {
		g := *it.Geo
		cp.Geo = &g
	}
	if it.Created != nil {
		v := *it.Created
		cp.Created = &v
	}
	if it.LastModified != nil {
		v := *it.LastModified
		cp.LastModified = &v
	}
	if it.RecurrenceID != nil {
		v := *it.RecurrenceID
		cp.RecurrenceID = &v
	}
	if it.RRule != nil {
		r := *it.RRule
		cp.RRule = &r
	}
	return cp
}

// Event is a VEVENT.
type Event struct {
	Item
	DTStart  Value
	DTEnd    *Value         // mutually exclusive with Duration
	Duration *time.Duration // mutually exclusive with DTEnd
}

// End returns the effective end instant: DTEnd if set, DTStart+Duration if
// set, otherwise DTStart itself (timed events) or the following calendar
// day (all-day events), matching RFC 5545's implicit-duration default.
func (e *Event) End() Value {
	switch {
	case e.DTEnd != nil:
		return *e.DTEnd
	case e.Duration != nil:
		return e.DTStart.Add(*e.Duration)
	case e.DTStart.IsAllDay():
		return e.DTStart.AddDate(0, 0, 1)
	default:
		return e.DTStart
	}
}

// Anchor is the value the event's RRULE/RDATE/EXDATE are expressed against.
func (e *Event) Anchor() Value { return e.DTStart }

// Validate checks e against spec §3's invariants: DTEND and DURATION are
// mutually exclusive, and when DTEND is present it strictly follows DTSTART
// (exclusive for DATE values, since their "When" is midnight on the day).
func (e *Event) Validate() error {
	if e.DTEnd != nil && e.Duration != nil {
		return validationErr("VEVENT has both DTEND and DURATION")
	}
	if e.DTEnd != nil && !e.DTEnd.After(e.DTStart) {
		return validationErr("VEVENT DTEND (%v) must be after DTSTART (%v)", e.DTEnd.When, e.DTStart.When)
	}
	return nil
}

// Clone deep-copies e.
func (e *Event) Clone() *Event {
	cp := *e
	cp.Item = e.Item.clone()
	if e.DTEnd != nil {
		v := *e.DTEnd
		cp.DTEnd = &v
	}
	if e.Duration != nil {
		d := *e.Duration
		cp.Duration = &d
	}
	return &cp
}

// ToDo is a VTODO.
type ToDo struct {
	Item
	DTStart  *Value
	Due      *Value
	Duration *time.Duration
}

// Anchor is DTSTART if present, else DUE; a ToDo's RRULE is expressed
// against whichever of the two anchors the item carries.
func (t *ToDo) Anchor() Value {
	if t.DTStart != nil {
		return *t.DTStart
	}
	if t.Due != nil {
		return *t.Due
	}
	return Value{}
}

// Validate mirrors Event.Validate for a to-do's DUE/DURATION pair: they are
// mutually exclusive, and DUE strictly follows DTSTART when both are set.
func (t *ToDo) Validate() error {
	if t.Due != nil && t.Duration != nil {
		return validationErr("VTODO has both DUE and DURATION")
	}
	if t.DTStart != nil && t.Due != nil && !t.Due.After(*t.DTStart) {
		return validationErr("VTODO DUE (%v) must be after DTSTART (%v)", t.Due.When, t.DTStart.When)
	}
	return nil
}

// End mirrors Event.End for a to-do's DUE/DURATION pair.
func (t *ToDo) End() Value {
	switch {
	case t.Due != nil:
		return *t.Due
	case t.DTStart != nil && t.Duration != nil:
		return t.DTStart.Add(*t.Duration)
	default:
		return t.Anchor()
	}
}

// Clone deep-copies t.
func (t *ToDo) Clone() *ToDo {
	cp := *t
	cp.Item = t.Item.clone()
	if t.DTStart != nil {
		v := *t.DTStart
		cp.DTStart = &v
	}
	if t.Due != nil {
		v := *t.Due
		cp.Due = &v
	}
	if t.Duration != nil {
		d := *t.Duration
		cp.Duration = &d
	}
	return &cp
}

// Journal is a VJOURNAL, carried through as a thin passthrough model: a
// caller wanting to inspect DESCRIPTION/CATEGORIES/etc. reads Properties
// directly. The original library gives VJOURNAL an equally thin model.
type Journal struct {
	UID        string
	DTStamp    Value
	Properties []grammar.ContentLine
}

// FreeBusy is a VFREEBUSY, passed through the same way as Journal.
type FreeBusy struct {
	UID        string
	DTStamp    Value
	Properties []grammar.ContentLine
}

// Calendar is the root VCALENDAR container.
type Calendar struct {
	ProdID  string
	Version string

	Events   []*Event
	ToDos    []*ToDo
	Journals []*Journal
	FreeBusy []*FreeBusy

	// TimeZones holds VTIMEZONE blocks, and any component kind the decoder
	// does not recognize, verbatim; the core does not parse TZif data, it
	// only round-trips these trees.
	TimeZones []*grammar.ParsedComponent

	// Extra holds calendar-level properties this model doesn't name,
	// in insertion order.
	Extra []grammar.ContentLine
}

// Clone returns a snapshot for a caller traversing the same calendar
// concurrently from multiple goroutines (the core's iterators are not
// thread-safe). Events and ToDos are deep-copied; the Journals, FreeBusy
// and TimeZones entries are not: the copy's slices point at the same
// *Journal, *FreeBusy and *grammar.ParsedComponent values as c's.
func (c *Calendar) Clone() Calendar {
	cp := *c
	cp.Events = make([]*Event, len(c.Events))
	for i, e := range c.Events {
		cp.Events[i] = e.Clone()
	}
	cp.ToDos = make([]*ToDo, len(c.ToDos))
	for i, td := range c.ToDos {
		cp.ToDos[i] = td.Clone()
	}
	cp.Journals = append([]*Journal(nil), c.Journals...)
	cp.FreeBusy = append([]*FreeBusy(nil), c.FreeBusy...)
	cp.TimeZones = append([]*grammar.ParsedComponent(nil), c.TimeZones...)
	cp.Extra = append([]grammar.ContentLine(nil), c.Extra...)
	return cp
}
