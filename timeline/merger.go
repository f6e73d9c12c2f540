package timeline

import (
	"github.com/kronocal/ical"
	"github.com/kronocal/ical/recurrence"
)

// Timeline is a lazily-pulled, globally ordered view over a Calendar
// snapshot. It does not mutate the calendar and does not reflect
// subsequent mutations (§5): construct a fresh Timeline after edits.
type Timeline struct {
	cal  *ical.Calendar
	opts Options
}

// New builds a Timeline over cal. cal is read, never mutated; per the
// concurrency model a caller wanting to traverse concurrently with edits
// must pass a Clone().
func New(cal *ical.Calendar, opts Options) *Timeline {
	return &Timeline{cal: cal, opts: opts}
}

// Cursor is a pull-based iterator over a Timeline's occurrences, bounded
// from below and/or above.
type Cursor struct {
	heap   *minHeap[source]
	lower  *ical.Value
	upper  *ical.Value
	err    error
	closed bool
}

// All returns a cursor over every occurrence, unbounded above; combine with
// opts.MaxExpansions to keep an unbounded recurring series finite.
func (tl *Timeline) All() (*Cursor, error) {
	return tl.between(nil, nil)
}

// On returns the occurrences that overlap the given calendar date, i.e.
// Overlapping(day 00:00, next day 00:00) with both bounds compared as
// instants; an occurrence that began on an earlier day and is still in
// progress on day is included.
func (tl *Timeline) On(day ical.Value) (*Cursor, error) {
	start := ical.NewDate(day.When.Year(), day.When.Month(), day.When.Day())
	end := start.AddDate(0, 0, 1)
	return tl.Overlapping(start, end)
}

// Overlapping returns occurrences whose [Start, End) intersects [from, to).
func (tl *Timeline) Overlapping(from, to ical.Value) (*Cursor, error) {
	return tl.between(&from, &to)
}

// StartingAt returns occurrences whose End is after from, unbounded above:
// those with Start >= from, and also those that began before from and are
// still in progress at from.
func (tl *Timeline) StartingAt(from ical.Value) (*Cursor, error) {
	return tl.between(&from, nil)
}

func (tl *Timeline) between(lower, upper *ical.Value) (*Cursor, error) {
	srcs, err := buildSources(tl.cal, tl.opts, lower, upper)
	if err != nil {
		return nil, err
	}

	h := newMinHeap[source](func(a, b source) bool {
		av, _, _ := a.peek()
		bv, _, _ := b.peek()
		return lessCandidate(av, a.uid(), bv, b.uid())
	})
	for _, s := range srcs {
		v, ok, err := s.peek()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if upper != nil && !v.Before(*upper) {
			continue
		}
		h.push(s)
	}
	return &Cursor{heap: h, lower: lower, upper: upper}, nil
}

// Next returns the next occurrence in ascending Start order, or ok=false
// once the cursor is exhausted or the upper bound has been passed.
func (c *Cursor) Next() (Occurrence, bool, error) {
	if c.err != nil {
		return Occurrence{}, false, c.err
	}
	if c.closed {
		return Occurrence{}, false, nil
	}

	for !c.heap.empty() {
		s := c.heap.pop()
		v, ok, err := s.peek()
		if err != nil {
			c.err = err
			return Occurrence{}, false, err
		}
		if !ok {
			continue
		}
		if c.upper != nil && !v.Before(*c.upper) {
			continue // this source has crossed the upper bound; drop it
		}

		occ, err := s.next()
		if err != nil {
			c.err = err
			return Occurrence{}, false, err
		}

		if nv, ok, err := s.peek(); err != nil {
			c.err = err
			return Occurrence{}, false, err
		} else if ok && (c.upper == nil || nv.Before(*c.upper)) {
			c.heap.push(s)
		}

		if c.lower != nil && occ.Start.Before(*c.lower) && !occ.End.After(*c.lower) {
			continue
		}
		return occ, true, nil
	}
	c.closed = true
	return Occurrence{}, false, nil
}

// Collect drains the cursor into a slice, bounded by limit (0 means
// unbounded — callers iterating an unbounded series should always supply a
// limit or an upper-bounded range).
func (c *Cursor) Collect(limit int) ([]Occurrence, error) {
	var out []Occurrence
	for limit <= 0 || len(out) < limit {
		occ, ok, err := c.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			break
		}
		out = append(out, occ)
	}
	return out, nil
}

// buildSources groups items into one source per recurring master plus one
// shared source for everything non-recurring. When upper bounds the query
// and a master has no overrides to reposition its candidates, HasOccurrenceInRange
// fast-skips constructing a full iterator for a series that cannot land in
// [lower, upper) at all.
func buildSources(cal *ical.Calendar, opts Options, lower, upper *ical.Value) ([]source, error) {
	type group struct {
		master    ical.Occurrable
		overrides []ical.Occurrable
	}
	groups := map[string]*group{}
	order := []string{}

	add := func(it ical.Occurrable) {
		g, ok := groups[it.ItemUID()]
		if !ok {
			g = &group{}
			groups[it.ItemUID()] = g
			order = append(order, it.ItemUID())
		}
		if it.RecID() == nil {
			g.master = it
		} else {
			g.overrides = append(g.overrides, it)
		}
	}
	for _, ev := range cal.Events {
		add(ev)
	}
	for _, td := range cal.ToDos {
		add(td)
	}

	expOpts := recurrence.ExpansionOptions{MaxOccurrences: opts.maxOccurrences()}

	var sources []source
	var plain []ical.Occurrable
	for _, uid := range order {
		g := groups[uid]
		if g.master != nil && (g.master.Rule() != nil || len(g.master.RDates()) > 0) {
			if skip, err := skipsWindow(g.master, g.overrides, lower, upper); err != nil {
				return nil, err
			} else if skip {
				continue
			}
			rs, err := newRecurringSource(g.master, g.overrides, expOpts)
			if err != nil {
				return nil, err
			}
			sources = append(sources, rs)
			continue
		}
		if g.master != nil {
			plain = append(plain, g.master)
		}
		plain = append(plain, g.overrides...)
	}
	if len(plain) > 0 {
		sources = append(sources, newListSource(plain))
	}
	return sources, nil
}

// skipsWindow reports whether master's RRULE is provably irrelevant to
// [lower, upper) without constructing an Iterator. It only applies when the
// master carries no overrides (so a generated candidate's position is also
// its occurrence's position) and no RDATE entries (which the RRULE check
// does not see), and the query has an upper bound; it never
// reports a skip it isn't sure of, since HasOccurrenceInRange's inclusive
// [rangeStart, rangeEnd] check is a superset of the merger's own exclusive
// upper-bound test.
func skipsWindow(master ical.Occurrable, overrides []ical.Occurrable, lower, upper *ical.Value) (bool, error) {
	rule := master.Rule()
	if rule == nil || len(overrides) > 0 || len(master.RDates()) > 0 || upper == nil || !rule.Freq.Supported() {
		return false, nil
	}
	rangeStart := master.Anchor().When
	if lower != nil {
		// An occurrence starting up to one duration before lower still overlaps it.
		if ls := lower.When.Add(-master.End().Sub(master.Anchor())); ls.After(rangeStart) {
			rangeStart = ls
		}
	}
	rangeEnd := upper.When
	if rangeStart.After(rangeEnd) {
		return true, nil
	}
	has, err := recurrence.HasOccurrenceInRange(master.Anchor().When, rule, rangeStart, rangeEnd)
	if err != nil {
		return false, err
	}
	return !has, nil
}
