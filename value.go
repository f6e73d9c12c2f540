package ical

import "github.com/kronocal/ical/values"

// Value, ValueKind and friends live in the values package so that both this
// package and the recurrence package can depend on them without a cycle.
// These aliases let callers write ical.Value without an extra import for
// the common case.
type (
	Value     = values.Value
	ValueKind = values.ValueKind
)

const (
	KindDate             = values.KindDate
	KindDateTimeUTC      = values.KindDateTimeUTC
	KindDateTimeZoned    = values.KindDateTimeZoned
	KindDateTimeFloating = values.KindDateTimeFloating
)

var (
	NewDate             = values.NewDate
	NewDateTimeUTC      = values.NewDateTimeUTC
	NewDateTimeZoned    = values.NewDateTimeZoned
	NewDateTimeFloating = values.NewDateTimeFloating
	SameOccurrence      = values.SameOccurrence
	ParseDuration       = values.ParseDuration
	FormatDuration      = values.FormatDuration
)
