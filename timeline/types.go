// Package timeline merges the occurrences of every event and to-do in a
// Calendar into one globally ordered, lazily-pulled sequence, with override
// resolution and bounded range queries.
package timeline

import "github.com/kronocal/ical"

// Occurrence is one materialized instance on the timeline.
type Occurrence struct {
	ItemUID      string
	RecurrenceID *ical.Value // nil when the item is not part of a recurring series
	Start        ical.Value
	End          ical.Value
	// IsOverride reports whether this occurrence came from an override item
	// (a distinct Event/ToDo carrying RECURRENCE-ID) rather than being
	// generated directly from the master's RRULE/RDATE.
	IsOverride bool
	// Item is the concrete Event or ToDo this occurrence was produced from:
	// the master for a generated candidate, the override item otherwise.
	Item ical.Occurrable
}

// Options tunes timeline construction, mirroring ical.Options' knobs that
// bear on expansion.
type Options struct {
	MaxExpansions uint32
}

func (o Options) maxOccurrences() int {
	if o.MaxExpansions == 0 {
		return int(ical.DefaultOptions.MaxExpansions)
	}
	return int(o.MaxExpansions)
}
