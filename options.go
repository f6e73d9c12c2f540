package ical

import "time"

// TimeZoneLookup resolves a TZID to a concrete time zone. The core does not
// ship a time zone database (spec §1, §6); callers supply one, typically
// backed by a sibling RFC 8536 TZif module or the Go runtime's IANA copy.
type TimeZoneLookup func(name string) (*time.Location, bool)

// DefaultTimeZoneLookup defers to the Go runtime's bundled IANA database.
func DefaultTimeZoneLookup(name string) (*time.Location, bool) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, false
	}
	return loc, true
}

// Options controls Decode's behavior. A plain struct of knobs rather than
// functional options, matching recurrence.ExpansionOptions.
type Options struct {
	// StrictRFC5545 rejects unknown FREQ values and malformed escapes at
	// decode time instead of preserving them for round-trip.
	StrictRFC5545 bool
	// MaxExpansions is not read by Decode. The timeline and store packages
	// take their own MaxExpansions setting and fall back to
	// DefaultOptions.MaxExpansions when theirs is zero.
	MaxExpansions uint32
	// TimeZoneLookup resolves TZID parameters to a *time.Location. Nil
	// means DefaultTimeZoneLookup.
	TimeZoneLookup TimeZoneLookup
}

// DefaultOptions is lenient (StrictRFC5545=false) with a generous but
// bounded MaxExpansions of 3650 occurrences.
var DefaultOptions = Options{
	StrictRFC5545: false,
	MaxExpansions: 3650,
}

func (o Options) tzLookup() TimeZoneLookup {
	if o.TimeZoneLookup != nil {
		return o.TimeZoneLookup
	}
	return DefaultTimeZoneLookup
}
