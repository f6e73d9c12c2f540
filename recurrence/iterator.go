package recurrence

import (
	"sort"
	"time"

	"github.com/kronocal/ical/values"
)

const maxEmptyWindows = 10000

// ruleStream lazily walks the RRULE-generated portion of a sequence,
// materializing one INTERVAL-period window of candidates at a time.
type ruleStream struct {
	anchor time.Time
	rule   *RecurrenceRule

	periodIndex int
	window      []time.Time
	windowPos   int
	ruleEmitted int
	exhausted   bool
}

func newRuleStream(anchor time.Time, rule *RecurrenceRule) *ruleStream {
	return &ruleStream{anchor: anchor, rule: rule}
}

// peek returns the next not-yet-consumed rule-generated instant without
// consuming it.
func (rs *ruleStream) peek() (time.Time, bool) {
	empty := 0
	for {
		if rs.exhausted {
			return time.Time{}, false
		}
		if rs.windowPos < len(rs.window) {
			cand := rs.window[rs.windowPos]
			if rs.rule.Until != nil && cand.After(rs.rule.Until.When) {
				rs.exhausted = true
				return time.Time{}, false
			}
			if rs.rule.Count > 0 && rs.ruleEmitted >= rs.rule.Count {
				rs.exhausted = true
				return time.Time{}, false
			}
			return cand, true
		}
		rs.window = generateWindow(rs.anchor, rs.rule, rs.periodIndex)
		rs.windowPos = 0
		rs.periodIndex++
		if len(rs.window) == 0 {
			empty++
			if empty > maxEmptyWindows {
				rs.exhausted = true
				return time.Time{}, false
			}
			continue
		}
		empty = 0
	}
}

func (rs *ruleStream) consume() {
	rs.windowPos++
	rs.ruleEmitted++
}

// Iterator produces the ascending, EXDATE-filtered occurrence sequence of
// a single recurring event: the RRULE-generated sequence merged with
// RDATE, pulled one value at a time.
type Iterator struct {
	rs     *ruleStream
	rdate  []values.Value
	rdateI int
	exdate []values.Value

	anchorKind values.ValueKind
	anchorTZID string

	opts    ExpansionOptions
	emitted int
	done    bool
}

// NewIterator builds an Iterator over rule (may be nil for an RDATE-only
// series) anchored at anchor, unioning rdate and filtering exdate. It
// returns an error if rule's FREQ is not one of DAILY, WEEKLY, or MONTHLY.
func NewIterator(anchor values.Value, rule *RecurrenceRule, rdate, exdate []values.Value, opts ExpansionOptions) (*Iterator, error) {
	if rule != nil && !rule.Freq.Supported() {
		return nil, errf("FREQ=%s cannot be expanded", rule.Freq)
	}

	sorted := append([]values.Value(nil), rdate...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].When.Before(sorted[j].When) })

	var rs *ruleStream
	if rule != nil {
		rs = newRuleStream(anchor.When, rule)
	}

	return &Iterator{
		rs:         rs,
		rdate:      sorted,
		exdate:     exdate,
		anchorKind: anchor.Kind,
		anchorTZID: anchor.TZID,
		opts:       opts,
	}, nil
}

func (it *Iterator) wrap(t time.Time) values.Value {
	switch it.anchorKind {
	case values.KindDate:
		return values.NewDate(t.Year(), t.Month(), t.Day())
	case values.KindDateTimeUTC:
		return values.NewDateTimeUTC(t)
	case values.KindDateTimeZoned:
		return values.NewDateTimeZoned(t, it.anchorTZID)
	default:
		return values.NewDateTimeFloating(t)
	}
}

// Next returns the next occurrence, or ok=false once the rule has been
// exhausted (COUNT/UNTIL reached, or opts.MaxOccurrences hit for an
// otherwise unbounded rule).
func (it *Iterator) Next() (values.Value, bool, error) {
	if it.done {
		return values.Value{}, false, nil
	}
	for {
		if it.opts.MaxOccurrences > 0 && it.emitted >= it.opts.MaxOccurrences {
			it.done = true
			return values.Value{}, false, nil
		}

		ruleHead, haveRule := time.Time{}, false
		if it.rs != nil {
			if t, ok := it.rs.peek(); ok {
				ruleHead, haveRule = t, true
			}
		}
		haveRdate := it.rdateI < len(it.rdate)

		if !haveRule && !haveRdate {
			it.done = true
			return values.Value{}, false, nil
		}

		var candTime time.Time
		fromRule, fromRdate := false, false
		switch {
		case haveRule && haveRdate:
			rdateT := it.rdate[it.rdateI].When
			switch {
			case ruleHead.Before(rdateT):
				candTime, fromRule = ruleHead, true
			case rdateT.Before(ruleHead):
				candTime, fromRdate = rdateT, true
			default:
				candTime, fromRule, fromRdate = ruleHead, true, true
			}
		case haveRule:
			candTime, fromRule = ruleHead, true
		default:
			candTime, fromRdate = it.rdate[it.rdateI].When, true
		}

		if fromRule {
			it.rs.consume()
		}
		if fromRdate {
			it.rdateI++
		}

		cand := it.wrap(candTime)
		if it.excluded(cand) {
			continue
		}
		it.emitted++
		return cand, true, nil
	}
}

// Expand builds an Iterator over r anchored at anchor, unioning rdate and
// filtering exdate. It is a thin wrapper over NewIterator so that callers
// holding a *RecurrenceRule don't need to import the constructor
// separately.
func (r *RecurrenceRule) Expand(anchor values.Value, rdate, exdate []values.Value, opts ExpansionOptions) (*Iterator, error) {
	return NewIterator(anchor, r, rdate, exdate, opts)
}

func (it *Iterator) excluded(cand values.Value) bool {
	for _, ex := range it.exdate {
		if values.SameOccurrence(cand, ex) {
			return true
		}
	}
	return false
}
