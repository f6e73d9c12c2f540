// Package store implements the mutation/edit engine over a decoded
// Calendar: adding items, and deleting or editing occurrences scoped to
// a single instance, an instance and everything after it, or an entire
// series.
package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/kronocal/ical"
	"github.com/kronocal/ical/recurrence"
)

// Options tunes Store construction.
type Options struct {
	// MaxExpansions bounds the internal expansions Edit/Delete perform to
	// validate a recurrence id or regenerate a pruned override set.
	MaxExpansions uint32
}

func (o Options) maxOccurrences() int {
	if o.MaxExpansions == 0 {
		return int(ical.DefaultOptions.MaxExpansions)
	}
	return int(o.MaxExpansions)
}

// Store wraps a Calendar and provides add/delete/edit with the scoping
// semantics a recurring series needs.
type Store struct {
	cal           *ical.Calendar
	clock         Clock
	maxExpansions int
}

// New builds a Store over cal, mutating it in place. clock supplies
// DTSTAMP/LAST-MODIFIED on every mutation.
func New(cal *ical.Calendar, clock Clock, opts Options) *Store {
	return &Store{cal: cal, clock: clock, maxExpansions: opts.maxOccurrences()}
}

// Calendar returns the wrapped calendar.
func (s *Store) Calendar() *ical.Calendar { return s.cal }

// Add appends item, validating UID uniqueness for masters and rejecting
// any RELATED-TO whose RelType isn't PARENT. item must be *ical.Event or
// *ical.ToDo.
func (s *Store) Add(item any) error {
	switch v := item.(type) {
	case *ical.Event:
		if err := validateRelatedTo(v.RelatedTo); err != nil {
			return err
		}
		if err := v.Validate(); err != nil {
			return err
		}
		if err := validateRule(v); err != nil {
			return err
		}
		if v.RecurrenceID == nil {
			if _, found := s.findMaster(v.UID); found {
				return errf(ErrUIDCollision, "a master with UID %q already exists", v.UID)
			}
		}
		s.cal.Events = append(s.cal.Events, v)
		return nil
	case *ical.ToDo:
		if err := validateRelatedTo(v.RelatedTo); err != nil {
			return err
		}
		if err := v.Validate(); err != nil {
			return err
		}
		if err := validateRule(v); err != nil {
			return err
		}
		if v.RecurrenceID == nil {
			if _, found := s.findMaster(v.UID); found {
				return errf(ErrUIDCollision, "a master with UID %q already exists", v.UID)
			}
		}
		s.cal.ToDos = append(s.cal.ToDos, v)
		return nil
	default:
		return errf(ErrIncompatibleMode, "unsupported item type %T", item)
	}
}

func validateRelatedTo(related []ical.RelatedTo) error {
	for _, r := range related {
		if r.RelType != ical.RelParent {
			return errf(ErrIncompatibleMode, "RELATED-TO %q: only RelType PARENT is supported", r.UID)
		}
	}
	return nil
}

// validateRule checks o's RRULE (if any) against its own anchor: INTERVAL
// positivity, COUNT/UNTIL mutual exclusivity, UNTIL value-type agreement,
// WKST validity, and BYDAY-ordinal-only-with-MONTHLY.
func validateRule(o ical.Occurrable) error {
	if o.Rule() == nil {
		return nil
	}
	if err := o.Rule().Validate(o.Anchor()); err != nil {
		return wrapf(ErrIncompatibleMode, err, "invalid RRULE")
	}
	return nil
}

// Delete removes an occurrence, a suffix of a series, or an entire
// series, per mode.
func (s *Store) Delete(uid string, recID *ical.Value, mode Mode) error {
	master, found := s.findMaster(uid)
	if !found {
		return errf(ErrNotFound, "no item with UID %q", uid)
	}
	recurring := isRecurring(master)

	switch mode {
	case This:
		if recID == nil {
			if recurring {
				return errf(ErrIncompatibleMode, "mode %q on a recurring series requires a recurrence id", mode)
			}
			return s.deleteWholeSeries(uid)
		}
		if !recurring {
			return errf(ErrIncompatibleMode, "mode %q with a recurrence id requires a recurring master", mode)
		}
		return s.deleteThisInstance(master, uid, *recID)
	case ThisAndFuture:
		if recID == nil || !recurring {
			return errf(ErrIncompatibleMode, "mode %q requires a recurring master and a recurrence id", mode)
		}
		return s.deleteThisAndFuture(master, uid, *recID)
	case All:
		return s.deleteWholeSeries(uid)
	default:
		return errf(ErrIncompatibleMode, "unknown mode %q", mode)
	}
}

func (s *Store) deleteWholeSeries(uid string) error {
	if _, found := s.findMaster(uid); !found {
		return errf(ErrNotFound, "no item with UID %q", uid)
	}
	s.removeWhere(func(o ical.Occurrable) bool { return o.ItemUID() == uid })
	s.cascadeDeleteChildren(uid, map[string]bool{})
	return nil
}

func (s *Store) deleteThisInstance(master ical.Occurrable, uid string, recID ical.Value) error {
	valid, err := s.isCandidate(master, recID)
	if err != nil {
		return wrapf(ErrNotFound, err, "recurrence id is not expandable")
	}
	if !valid {
		return errf(ErrNotFound, "recurrence id does not name an occurrence of %q", uid)
	}
	s.removeWhere(func(o ical.Occurrable) bool {
		return o.ItemUID() == uid && o.RecID() != nil && ical.SameOccurrence(*o.RecID(), recID)
	})
	now := s.clock.Now()
	switch m := master.(type) {
	case *ical.Event:
		m.EXDate = append(m.EXDate, recID)
		m.Sequence++
		refresh(&m.Item, now)
	case *ical.ToDo:
		m.EXDate = append(m.EXDate, recID)
		m.Sequence++
		refresh(&m.Item, now)
	}
	return nil
}

func (s *Store) deleteThisAndFuture(master ical.Occurrable, uid string, recID ical.Value) error {
	valid, err := s.isCandidate(master, recID)
	if err != nil {
		return wrapf(ErrNotFound, err, "recurrence id is not expandable")
	}
	if !valid {
		return errf(ErrNotFound, "recurrence id does not name an occurrence of %q", uid)
	}
	if ical.SameOccurrence(recID, master.Anchor()) {
		return s.deleteWholeSeries(uid)
	}
	if master.Rule() == nil {
		return errf(ErrIncompatibleMode, "mode %q requires an RRULE to truncate; %q only has RDATE entries", ThisAndFuture, uid)
	}

	now := s.clock.Now()
	switch m := master.(type) {
	case *ical.Event:
		until := untilBefore(m.Anchor(), recID)
		m.RRule.Until = &until
		m.RRule.Count = 0
		m.Sequence++
		refresh(&m.Item, now)
	case *ical.ToDo:
		until := untilBefore(m.Anchor(), recID)
		m.RRule.Until = &until
		m.RRule.Count = 0
		m.Sequence++
		refresh(&m.Item, now)
	}
	s.removeWhere(func(o ical.Occurrable) bool {
		return o.ItemUID() == uid && o.RecID() != nil && atOrAfter(*o.RecID(), recID)
	})
	return nil
}

// Edit mutates an occurrence, a suffix of a series, or an entire series,
// per mode.
func (s *Store) Edit(uid string, recID *ical.Value, changes Changes, mode Mode) error {
	master, found := s.findMaster(uid)
	if !found {
		return errf(ErrNotFound, "no item with UID %q", uid)
	}
	overrides := s.overridesOf(uid)
	recurring := isRecurring(master)

	switch mode {
	case This:
		if recID == nil {
			return errf(ErrIncompatibleMode, "mode %q requires a recurrence id", mode)
		}
		if !recurring {
			return errf(ErrIncompatibleMode, "mode %q with a recurrence id requires a recurring master", mode)
		}
		return s.editThisInstance(master, uid, *recID, changes)
	case ThisAndFuture:
		if recID == nil {
			return errf(ErrIncompatibleMode, "mode %q requires a recurrence id", mode)
		}
		if !recurring {
			return errf(ErrIncompatibleMode, "mode %q requires a recurring master", mode)
		}
		return s.editThisAndFuture(master, overrides, uid, *recID, changes)
	case All:
		return s.editAll(master, uid, changes)
	default:
		return errf(ErrIncompatibleMode, "unknown mode %q", mode)
	}
}

func (s *Store) editThisInstance(master ical.Occurrable, uid string, recID ical.Value, changes Changes) error {
	valid, err := s.isCandidate(master, recID)
	if err != nil {
		return wrapf(ErrNotFound, err, "recurrence id is not expandable")
	}
	if !valid {
		return errf(ErrNotFound, "recurrence id does not name an occurrence of %q", uid)
	}
	now := s.clock.Now()

	if ov, has := s.findOverride(uid, recID); has {
		switch o := ov.(type) {
		case *ical.Event:
			if applyEventChanges(o, changes) {
				o.Sequence++
			}
			refresh(&o.Item, now)
		case *ical.ToDo:
			if applyToDoChanges(o, changes) {
				o.Sequence++
			}
			refresh(&o.Item, now)
		}
		return validateRule(ov)
	}

	switch m := master.(type) {
	case *ical.Event:
		ov := m.Clone()
		ov.RecurrenceID = ptrValue(recID)
		ov.RRule = nil
		ov.RDate = nil
		ov.EXDate = nil
		ov.Sequence = 0
		ov.DTStart = recID
		if m.DTEnd != nil {
			delta := m.End().Sub(m.Anchor())
			end := recID.Add(delta)
			ov.DTEnd = &end
		}
		applyEventChanges(ov, changes)
		refresh(&ov.Item, now)
		if err := validateRule(ov); err != nil {
			return err
		}
		s.cal.Events = append(s.cal.Events, ov)
	case *ical.ToDo:
		ov := m.Clone()
		ov.RecurrenceID = ptrValue(recID)
		ov.RRule = nil
		ov.RDate = nil
		ov.EXDate = nil
		ov.Sequence = 0
		if m.DTStart != nil {
			v := recID
			ov.DTStart = &v
			if m.Due != nil {
				delta := m.Due.Sub(*m.DTStart)
				end := recID.Add(delta)
				ov.Due = &end
			}
		} else if m.Due != nil {
			v := recID
			ov.Due = &v
		}
		applyToDoChanges(ov, changes)
		refresh(&ov.Item, now)
		if err := validateRule(ov); err != nil {
			return err
		}
		s.cal.ToDos = append(s.cal.ToDos, ov)
	}
	return nil
}

func (s *Store) editThisAndFuture(master ical.Occurrable, overrides []ical.Occurrable, uid string, recID ical.Value, changes Changes) error {
	valid, err := s.isCandidate(master, recID)
	if err != nil {
		return wrapf(ErrNotFound, err, "recurrence id is not expandable")
	}
	if !valid {
		return errf(ErrNotFound, "recurrence id does not name an occurrence of %q", uid)
	}
	now := s.clock.Now()

	if ical.SameOccurrence(recID, master.Anchor()) {
		switch m := master.(type) {
		case *ical.Event:
			if applyEventChanges(m, changes) {
				m.Sequence++
			}
			refresh(&m.Item, now)
		case *ical.ToDo:
			if applyToDoChanges(m, changes) {
				m.Sequence++
			}
			refresh(&m.Item, now)
		}
		return validateRule(master)
	}
	if master.Rule() == nil {
		return errf(ErrIncompatibleMode, "mode %q requires an RRULE to fork; %q only has RDATE entries", ThisAndFuture, uid)
	}

	newUID := uuid.New().String()

	switch m := master.(type) {
	case *ical.Event:
		freshRule := cloneRule(m.RRule)
		until := untilBefore(m.Anchor(), recID)
		m.RRule.Until = &until
		m.RRule.Count = 0
		m.Sequence++
		refresh(&m.Item, now)

		nm := m.Clone()
		nm.UID = newUID
		nm.RecurrenceID = nil
		nm.RDate = nil
		nm.EXDate = nil
		nm.Sequence = 0
		nm.RRule = freshRule
		nm.DTStart = recID
		if m.DTEnd != nil {
			delta := m.End().Sub(m.Anchor())
			end := recID.Add(delta)
			nm.DTEnd = &end
		}
		applyEventChanges(nm, changes)
		refresh(&nm.Item, now)
		if err := validateRule(nm); err != nil {
			return err
		}
		s.cal.Events = append(s.cal.Events, nm)
	case *ical.ToDo:
		freshRule := cloneRule(m.RRule)
		until := untilBefore(m.Anchor(), recID)
		m.RRule.Until = &until
		m.RRule.Count = 0
		m.Sequence++
		refresh(&m.Item, now)

		nm := m.Clone()
		nm.UID = newUID
		nm.RecurrenceID = nil
		nm.RDate = nil
		nm.EXDate = nil
		nm.Sequence = 0
		nm.RRule = freshRule
		if m.DTStart != nil {
			v := recID
			nm.DTStart = &v
		} else if m.Due != nil {
			v := recID
			nm.Due = &v
		}
		applyToDoChanges(nm, changes)
		refresh(&nm.Item, now)
		if err := validateRule(nm); err != nil {
			return err
		}
		s.cal.ToDos = append(s.cal.ToDos, nm)
	}

	for _, ov := range overrides {
		if ov.RecID() == nil || !atOrAfter(*ov.RecID(), recID) {
			continue
		}
		switch o := ov.(type) {
		case *ical.Event:
			o.UID = newUID
		case *ical.ToDo:
			o.UID = newUID
		}
	}
	return nil
}

func (s *Store) editAll(master ical.Occurrable, uid string, changes Changes) error {
	now := s.clock.Now()
	expansionTouched := changes.RRule != nil || changes.Start != nil

	switch m := master.(type) {
	case *ical.Event:
		if applyEventChanges(m, changes) {
			m.Sequence++
		}
		refresh(&m.Item, now)
	case *ical.ToDo:
		if applyToDoChanges(m, changes) {
			m.Sequence++
		}
		refresh(&m.Item, now)
	}

	if err := validateRule(master); err != nil {
		return err
	}
	if !expansionTouched {
		return nil
	}
	keep, err := s.expansionSet(master)
	if err != nil {
		return wrapf(ErrIncompatibleMode, err, "regenerated expansion is invalid")
	}
	s.removeWhere(func(o ical.Occurrable) bool {
		if o.ItemUID() != uid || o.RecID() == nil {
			return false
		}
		for _, v := range keep {
			if ical.SameOccurrence(v, *o.RecID()) {
				return false
			}
		}
		return true
	})
	return nil
}

func (s *Store) expansionSet(master ical.Occurrable) ([]ical.Value, error) {
	it, err := recurrence.NewIterator(master.Anchor(), master.Rule(), master.RDates(), master.EXDates(), recurrence.ExpansionOptions{MaxOccurrences: s.maxExpansions})
	if err != nil {
		return nil, err
	}
	var out []ical.Value
	for {
		v, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) isCandidate(master ical.Occurrable, recID ical.Value) (bool, error) {
	if !isRecurring(master) {
		return ical.SameOccurrence(recID, master.Anchor()), nil
	}
	set, err := s.expansionSet(master)
	if err != nil {
		return false, err
	}
	for _, v := range set {
		if ical.SameOccurrence(v, recID) {
			return true, nil
		}
	}
	return false, nil
}

func isRecurring(o ical.Occurrable) bool {
	return o.Rule() != nil || len(o.RDates()) > 0
}

func (s *Store) entries() []ical.Occurrable {
	out := make([]ical.Occurrable, 0, len(s.cal.Events)+len(s.cal.ToDos))
	for _, ev := range s.cal.Events {
		out = append(out, ev)
	}
	for _, td := range s.cal.ToDos {
		out = append(out, td)
	}
	return out
}

func (s *Store) findMaster(uid string) (ical.Occurrable, bool) {
	for _, o := range s.entries() {
		if o.ItemUID() == uid && o.RecID() == nil {
			return o, true
		}
	}
	return nil, false
}

func (s *Store) findOverride(uid string, recID ical.Value) (ical.Occurrable, bool) {
	for _, o := range s.entries() {
		if o.ItemUID() == uid && o.RecID() != nil && ical.SameOccurrence(*o.RecID(), recID) {
			return o, true
		}
	}
	return nil, false
}

func (s *Store) overridesOf(uid string) []ical.Occurrable {
	var out []ical.Occurrable
	for _, o := range s.entries() {
		if o.ItemUID() == uid && o.RecID() != nil {
			out = append(out, o)
		}
	}
	return out
}

func (s *Store) removeWhere(pred func(ical.Occurrable) bool) {
	events := s.cal.Events[:0:0]
	for _, ev := range s.cal.Events {
		if !pred(ev) {
			events = append(events, ev)
		}
	}
	s.cal.Events = events

	todos := s.cal.ToDos[:0:0]
	for _, td := range s.cal.ToDos {
		if !pred(td) {
			todos = append(todos, td)
		}
	}
	s.cal.ToDos = todos
}

// cascadeDeleteChildren removes every ToDo (and its own overrides and
// descendants) whose RELATED-TO names parentUID with RelType PARENT.
func (s *Store) cascadeDeleteChildren(parentUID string, visited map[string]bool) {
	if visited[parentUID] {
		return
	}
	visited[parentUID] = true

	childSet := map[string]bool{}
	for _, td := range s.cal.ToDos {
		for _, r := range td.RelatedTo {
			if r.RelType == ical.RelParent && r.UID == parentUID {
				childSet[td.UID] = true
			}
		}
	}
	if len(childSet) == 0 {
		return
	}
	for child := range childSet {
		s.cascadeDeleteChildren(child, visited)
	}
	s.removeWhere(func(o ical.Occurrable) bool { return childSet[o.ItemUID()] })
}

func ptrValue(v ical.Value) *ical.Value { return &v }

func atOrAfter(v, boundary ical.Value) bool {
	return ical.SameOccurrence(v, boundary) || v.After(boundary)
}

// untilBefore computes the RRULE UNTIL marking the instant immediately
// before instance: end-of-day on the preceding calendar date, in the same
// value kind as anchor, except that a zoned anchor gets a UTC UNTIL (the
// zone's end-of-day converted to UTC), as RecurrenceRule.Validate requires.
func untilBefore(anchor, instance ical.Value) ical.Value {
	prevDay := instance.When.AddDate(0, 0, -1)
	if anchor.IsAllDay() {
		return ical.NewDate(prevDay.Year(), prevDay.Month(), prevDay.Day())
	}
	endOfPrevDay := time.Date(prevDay.Year(), prevDay.Month(), prevDay.Day(), 23, 59, 59, 0, time.UTC)
	switch anchor.Kind {
	case ical.KindDateTimeUTC:
		return ical.NewDateTimeUTC(endOfPrevDay)
	case ical.KindDateTimeZoned:
		return ical.NewDateTimeUTC(time.Date(prevDay.Year(), prevDay.Month(), prevDay.Day(), 23, 59, 59, 0, anchor.When.Location()))
	default:
		return ical.NewDateTimeFloating(endOfPrevDay)
	}
}

func cloneRule(r *recurrence.RecurrenceRule) *recurrence.RecurrenceRule {
	if r == nil {
		return nil
	}
	cp := *r
	cp.BySecond = append([]int(nil), r.BySecond...)
	cp.ByMinute = append([]int(nil), r.ByMinute...)
	cp.ByHour = append([]int(nil), r.ByHour...)
	cp.ByDay = append([]recurrence.ByDay(nil), r.ByDay...)
	cp.ByMonthDay = append([]int(nil), r.ByMonthDay...)
	cp.ByYearDay = append([]int(nil), r.ByYearDay...)
	cp.ByWeekNo = append([]int(nil), r.ByWeekNo...)
	cp.ByMonth = append([]int(nil), r.ByMonth...)
	cp.BySetPos = append([]int(nil), r.BySetPos...)
	cp.Until = nil
	return &cp
}

func refresh(it *ical.Item, now time.Time) {
	it.DTStamp = ical.NewDateTimeUTC(now)
	lm := ical.NewDateTimeUTC(now)
	it.LastModified = &lm
}

func applyEventChanges(ev *ical.Event, c Changes) bool {
	if c.Description != nil {
		ev.Description = *c.Description
	}
	if !c.schedulingSignificant() {
		return false
	}

	changed := false
	if c.Summary != nil && *c.Summary != ev.Summary {
		ev.Summary = *c.Summary
		changed = true
	}
	if c.Location != nil && *c.Location != ev.Location {
		ev.Location = *c.Location
		changed = true
	}
	if c.Status != nil && *c.Status != ev.Status {
		ev.Status = *c.Status
		changed = true
	}
	if c.Start != nil && !ical.SameOccurrence(*c.Start, ev.DTStart) {
		ev.DTStart = *c.Start
		changed = true
	}
	if c.End != nil {
		if ev.DTEnd == nil || !ical.SameOccurrence(*c.End, *ev.DTEnd) {
			v := *c.End
			ev.DTEnd = &v
			ev.Duration = nil
			changed = true
		}
	}
	if c.Duration != nil {
		if ev.Duration == nil || *ev.Duration != *c.Duration {
			d := *c.Duration
			ev.Duration = &d
			ev.DTEnd = nil
			changed = true
		}
	}
	if c.RRule != nil {
		ev.RRule = c.RRule
		changed = true
	}
	return changed
}

func applyToDoChanges(td *ical.ToDo, c Changes) bool {
	if c.Description != nil {
		td.Description = *c.Description
	}
	if !c.schedulingSignificant() {
		return false
	}

	changed := false
	if c.Summary != nil && *c.Summary != td.Summary {
		td.Summary = *c.Summary
		changed = true
	}
	if c.Location != nil && *c.Location != td.Location {
		td.Location = *c.Location
		changed = true
	}
	if c.Status != nil && *c.Status != td.Status {
		td.Status = *c.Status
		changed = true
	}
	if c.Start != nil {
		if td.DTStart == nil || !ical.SameOccurrence(*c.Start, *td.DTStart) {
			v := *c.Start
			td.DTStart = &v
			changed = true
		}
	}
	if c.End != nil {
		if td.Due == nil || !ical.SameOccurrence(*c.End, *td.Due) {
			v := *c.End
			td.Due = &v
			td.Duration = nil
			changed = true
		}
	}
	if c.Duration != nil {
		if td.Duration == nil || *td.Duration != *c.Duration {
			d := *c.Duration
			td.Duration = &d
			td.Due = nil
			changed = true
		}
	}
	if c.RRule != nil {
		td.RRule = c.RRule
		changed = true
	}
	return changed
}
