package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// HasOccurrenceInRange is a fast existence check: does rule, anchored at
// anchor, land an occurrence inside [rangeStart, rangeEnd], both ends
// inclusive? It builds the
// RRULE string rrule-go expects and delegates the date arithmetic to it,
// rather than walking Iterator to exhaustion — useful for a timeline that
// only needs to know whether a source is relevant to a window before
// paying for full expansion.
func HasOccurrenceInRange(anchor time.Time, rule *RecurrenceRule, rangeStart, rangeEnd time.Time) (bool, error) {
	if !rule.Freq.Supported() {
		return false, errf("FREQ=%s is not expandable", rule.Freq)
	}

	dtstart := anchor.UTC().Format("20060102T150405Z")
	fullRule := fmt.Sprintf("DTSTART:%s\nRRULE:%s", dtstart, toRRuleString(rule))

	ruleSet, err := rrule.StrToRRuleSet(fullRule)
	if err != nil {
		return false, fmt.Errorf("recurrence: parsing RRULE for range check: %w", err)
	}

	occurrences := ruleSet.Between(rangeStart, rangeEnd, true)
	return len(occurrences) > 0, nil
}

// toRRuleString renders r in RFC 5545 RRULE value syntax, e.g.
// "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE".
func toRRuleString(r *RecurrenceRule) string {
	s := "FREQ=" + string(r.Freq)
	if r.Interval > 1 {
		s += fmt.Sprintf(";INTERVAL=%d", r.Interval)
	}
	if r.Count > 0 {
		s += fmt.Sprintf(";COUNT=%d", r.Count)
	}
	if r.Until != nil {
		if r.Until.IsAllDay() {
			s += ";UNTIL=" + r.Until.When.Format("20060102")
		} else {
			s += ";UNTIL=" + r.Until.When.UTC().Format("20060102T150405Z")
		}
	}
	if len(r.ByDay) > 0 {
		s += ";BYDAY="
		for i, bd := range r.ByDay {
			if i > 0 {
				s += ","
			}
			if bd.Ordinal != 0 {
				s += fmt.Sprintf("%d", bd.Ordinal)
			}
			s += string(bd.Day)
		}
	}
	if len(r.ByMonthDay) > 0 {
		s += ";BYMONTHDAY=" + joinInts(r.ByMonthDay)
	}
	if len(r.ByMonth) > 0 {
		s += ";BYMONTH=" + joinInts(r.ByMonth)
	}
	if r.WKST != "" && r.WKST != Monday {
		s += ";WKST=" + string(r.WKST)
	}
	return s
}

func joinInts(vs []int) string {
	s := ""
	for i, v := range vs {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d", v)
	}
	return s
}
