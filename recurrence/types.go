// Package recurrence represents RRULE/RDATE/EXDATE as a validated value and
// exposes a lazy occurrence iterator over it.
package recurrence

import (
	"github.com/kronocal/ical/values"
)

// Freq is the RRULE FREQ value. Only Daily, Weekly, and Monthly are
// expandable; the others round-trip but raise RecurrenceError on Expand.
type Freq string

const (
	Secondly Freq = "SECONDLY"
	Minutely Freq = "MINUTELY"
	Hourly   Freq = "HOURLY"
	Daily    Freq = "DAILY"
	Weekly   Freq = "WEEKLY"
	Monthly  Freq = "MONTHLY"
	Yearly   Freq = "YEARLY"
)

// Supported reports whether f is expandable by this engine.
func (f Freq) Supported() bool {
	switch f {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// Known reports whether f is one of RFC 5545's seven FREQ tokens, whether
// or not this engine can expand it. strict_rfc5545 mode rejects anything
// that fails Known; lenient mode only requires Supported at Expand time.
func (f Freq) Known() bool {
	switch f {
	case Secondly, Minutely, Hourly, Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Weekday is an RFC 5545 two-letter weekday code.
type Weekday string

const (
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
	Sunday    Weekday = "SU"
)

var weekdayOrder = map[Weekday]int{
	Monday: 0, Tuesday: 1, Wednesday: 2, Thursday: 3, Friday: 4, Saturday: 5, Sunday: 6,
}

// goWeekday maps a Weekday onto time.Weekday (Sunday == 0 in the stdlib).
func (w Weekday) goWeekday() int {
	order := map[Weekday]int{
		Sunday: 0, Monday: 1, Tuesday: 2, Wednesday: 3, Thursday: 4, Friday: 5, Saturday: 6,
	}
	return order[w]
}

// ByDay is a BYDAY entry: a weekday, optionally prefixed by a signed
// ordinal. The ordinal is only meaningful (and only valid) with FREQ=MONTHLY.
type ByDay struct {
	Ordinal int // 0 means unqualified ("every such weekday in the period")
	Day     Weekday
}

// RecurrenceRule is a decoded RRULE.
type RecurrenceRule struct {
	Freq     Freq
	Interval int // >= 1, default 1

	Count int           // 0 means unset
	Until *values.Value // mutually exclusive with Count

	BySecond   []int
	ByMinute   []int
	ByHour     []int
	ByDay      []ByDay
	ByMonthDay []int // may be negative, counting from the end of the month
	ByYearDay  []int
	ByWeekNo   []int
	ByMonth    []int
	BySetPos   []int

	WKST Weekday // defaults to Monday
}

// NewRecurrenceRule returns a RecurrenceRule with its defaults applied
// (Interval=1, WKST=Monday).
func NewRecurrenceRule(freq Freq) *RecurrenceRule {
	return &RecurrenceRule{Freq: freq, Interval: 1, WKST: Monday}
}

// Supported reports whether r's FREQ is expandable by this engine. Callers
// can probe this before calling Expand to distinguish "round-trips fine,
// can't be expanded" from a construction error.
func (r *RecurrenceRule) Supported() bool { return r.Freq.Supported() }
