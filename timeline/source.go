package timeline

import (
	"sort"

	"github.com/kronocal/ical"
	"github.com/kronocal/ical/recurrence"
)

// source is one series' lazy occurrence stream: either the RRULE/RDATE
// expansion of a recurring master (with its overrides folded in) or a
// single fixed-position item.
type source interface {
	uid() string
	// peek returns the key the merger orders this source by, without
	// consuming it. ok is false once the source is exhausted.
	peek() (ical.Value, bool, error)
	// next consumes the peeked candidate and returns the Occurrence it
	// produces (after override substitution, if any).
	next() (Occurrence, error)
}

// recurringSource expands one recurring master, substituting any override
// whose RECURRENCE-ID matches a generated candidate.
type recurringSource struct {
	master    ical.Occurrable
	overrides []ical.Occurrable
	it        *recurrence.Iterator

	buf    ical.Value
	hasBuf bool
	done   bool
}

func newRecurringSource(master ical.Occurrable, overrides []ical.Occurrable, opts recurrence.ExpansionOptions) (*recurringSource, error) {
	it, err := recurrence.NewIterator(master.Anchor(), master.Rule(), master.RDates(), master.EXDates(), opts)
	if err != nil {
		return nil, err
	}
	return &recurringSource{master: master, overrides: overrides, it: it}, nil
}

func (s *recurringSource) uid() string { return s.master.ItemUID() }

func (s *recurringSource) fill() error {
	if s.hasBuf || s.done {
		return nil
	}
	v, ok, err := s.it.Next()
	if err != nil {
		return err
	}
	if !ok {
		s.done = true
		return nil
	}
	s.buf, s.hasBuf = v, true
	return nil
}

func (s *recurringSource) peek() (ical.Value, bool, error) {
	if err := s.fill(); err != nil {
		return ical.Value{}, false, err
	}
	return s.buf, s.hasBuf, nil
}

func (s *recurringSource) next() (Occurrence, error) {
	if err := s.fill(); err != nil {
		return Occurrence{}, err
	}
	cand := s.buf
	s.hasBuf = false

	for _, ov := range s.overrides {
		if r := ov.RecID(); r != nil && ical.SameOccurrence(*r, cand) {
			start := ov.Anchor()
			return Occurrence{
				ItemUID:      s.master.ItemUID(),
				RecurrenceID: &cand,
				Start:        start,
				End:          ov.End(),
				IsOverride:   true,
				Item:         ov,
			}, nil
		}
	}

	delta := s.master.End().Sub(s.master.Anchor())
	return Occurrence{
		ItemUID:      s.master.ItemUID(),
		RecurrenceID: &cand,
		Start:        cand,
		End:          cand.Add(delta),
		IsOverride:   false,
		Item:         s.master,
	}, nil
}

// listSource walks a pre-sorted slice of non-recurring items in order: one
// shared source for "all non-recurring items in chronological order"
// (spec §4.6), rather than one source per item.
type listSource struct {
	items []ical.Occurrable
	pos   int
}

// newListSource sorts items by (start, all-day-before-timed, UID,
// insertion order) and wraps them as one source.
func newListSource(items []ical.Occurrable) *listSource {
	sorted := append([]ical.Occurrable(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessCandidate(sorted[i].Anchor(), sorted[i].ItemUID(), sorted[j].Anchor(), sorted[j].ItemUID())
	})
	return &listSource{items: sorted}
}

func (s *listSource) uid() string {
	if s.pos < len(s.items) {
		return s.items[s.pos].ItemUID()
	}
	return ""
}

func (s *listSource) peek() (ical.Value, bool, error) {
	if s.pos >= len(s.items) {
		return ical.Value{}, false, nil
	}
	return s.items[s.pos].Anchor(), true, nil
}

func (s *listSource) next() (Occurrence, error) {
	it := s.items[s.pos]
	s.pos++
	return Occurrence{
		ItemUID:      it.ItemUID(),
		RecurrenceID: it.RecID(),
		Start:        it.Anchor(),
		End:          it.End(),
		IsOverride:   it.RecID() != nil,
		Item:         it,
	}, nil
}

// lessCandidate implements the merger's tie-break: all-day before timed at
// the same instant, else UID lexicographic.
func lessCandidate(a ical.Value, aUID string, b ical.Value, bUID string) bool {
	if !a.When.Equal(b.When) {
		return a.When.Before(b.When)
	}
	if a.IsAllDay() != b.IsAllDay() {
		return a.IsAllDay()
	}
	return aUID < bUID
}
