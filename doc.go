/*
Package ical reads, manipulates, and writes iCalendar data as defined by
RFC 5545.

An application constructs a Calendar in memory (or decodes one from text),
populates it with Events and ToDos, optionally gives them recurrence rules
via the recurrence package, queries them as a chronological timeline via
the timeline package, and re-encodes the result back to text. The library
is embedded: there is no server and no persistence beyond what the caller
provides.

# Basic usage

	cal, err := ical.Decode(text, ical.DefaultOptions)
	if err != nil {
		log.Fatal(err)
	}
	for _, ev := range cal.Events {
		fmt.Println(ev.UID, ev.Summary)
	}
	out := ical.Encode(cal)

# Time zones

The core does not ship a time zone database. Callers supply a
TimeZoneLookup, or rely on DefaultTimeZoneLookup which defers to the Go
runtime's IANA database via time.LoadLocation.

# Recurrence and the timeline

See the recurrence package for expanding RRULE/RDATE/EXDATE into a lazy
occurrence sequence, and the timeline package for merging many events'
occurrences (plus non-recurring items) into one globally ordered stream.
The store package mediates edits to recurring series (this instance,
this-and-future, all) while preserving RFC 5545 invariants.
*/
package ical
