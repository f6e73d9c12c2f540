package ical

import "github.com/kronocal/ical/recurrence"

// Occurrable is satisfied by *Event and *ToDo (via Item's promoted methods)
// and is the shape the timeline package expands: anything with an anchor, a
// possible recurrence rule, and an optional RECURRENCE-ID.
type Occurrable interface {
	ItemUID() string
	Anchor() Value
	End() Value
	Rule() *recurrence.RecurrenceRule
	RDates() []Value
	EXDates() []Value
	RecID() *Value
}

// ItemUID returns the item's UID, the series key.
func (it *Item) ItemUID() string { return it.UID }

// Rule returns the item's RRULE, or nil.
func (it *Item) Rule() *recurrence.RecurrenceRule { return it.RRule }

// RDates returns the item's RDATE values.
func (it *Item) RDates() []Value { return it.RDate }

// EXDates returns the item's EXDATE values.
func (it *Item) EXDates() []Value { return it.EXDate }

// RecID returns the item's RECURRENCE-ID, or nil for a master.
func (it *Item) RecID() *Value { return it.RecurrenceID }
