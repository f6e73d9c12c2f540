package store

import (
	"time"

	"github.com/kronocal/ical"
	"github.com/kronocal/ical/recurrence"
)

// Mode selects how a Delete or Edit call scopes itself against a recurring
// series.
type Mode string

const (
	// This scopes the call to a single occurrence.
	This Mode = "this"
	// ThisAndFuture scopes the call to the target occurrence and everything
	// after it, splitting the series at that boundary.
	ThisAndFuture Mode = "this_and_future"
	// All scopes the call to the entire series (or the whole item, for a
	// non-recurring one).
	All Mode = "all"
)

// Changes carries the field-level edits Edit applies. A nil field is left
// untouched; Start/End are absolute replacement values, not deltas.
type Changes struct {
	Summary     *string
	Description *string
	Location    *string
	Status      *ical.Status
	Start       *ical.Value
	End         *ical.Value
	Duration    *time.Duration
	RRule       *recurrence.RecurrenceRule
}

// schedulingSignificant reports whether applying c would touch any of the
// fields spec.md §4.7 calls scheduling-significant (everything Changes
// exposes except Description).
func (c Changes) schedulingSignificant() bool {
	return c.Summary != nil || c.Location != nil || c.Status != nil ||
		c.Start != nil || c.End != nil || c.Duration != nil || c.RRule != nil
}
