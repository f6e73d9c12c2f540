package recurrence

import "github.com/kronocal/ical/values"

// Validate checks r for internal consistency against anchor (the owning
// event or to-do's DTSTART) and fills in defaults (Interval, WKST). It does
// not check Freq.Supported(); unsupported frequencies decode and validate
// fine, and only fail at Expand.
func (r *RecurrenceRule) Validate(anchor values.Value) error {
	if r.Interval == 0 {
		r.Interval = 1
	}
	if r.Interval < 0 {
		return errf("INTERVAL must be positive, got %d", r.Interval)
	}
	if r.WKST == "" {
		r.WKST = Monday
	}
	if _, ok := weekdayOrder[r.WKST]; !ok {
		return errf("WKST %q is not a valid weekday code", r.WKST)
	}

	if r.Count > 0 && r.Until != nil {
		return errf("COUNT and UNTIL are mutually exclusive")
	}
	if r.Count < 0 {
		return errf("COUNT must be positive, got %d", r.Count)
	}

	if r.Until != nil {
		if err := validateUntil(anchor, *r.Until); err != nil {
			return err
		}
	}

	for _, bd := range r.ByDay {
		if _, ok := weekdayOrder[bd.Day]; !ok {
			return errf("BYDAY weekday code %q is invalid", bd.Day)
		}
		if bd.Ordinal != 0 && r.Freq != Monthly {
			return errf("BYDAY ordinal %d is only valid with FREQ=MONTHLY", bd.Ordinal)
		}
	}

	return nil
}

func validateUntil(anchor, until values.Value) error {
	if anchor.IsAllDay() {
		if !until.IsAllDay() {
			return errf("UNTIL must be a DATE value when DTSTART is a DATE")
		}
		return nil
	}
	if until.IsAllDay() {
		return errf("UNTIL must be a DATE-TIME value when DTSTART is a DATE-TIME")
	}
	if anchor.Kind != values.KindDateTimeFloating && until.Kind != values.KindDateTimeUTC {
		return errf("UNTIL must be expressed in UTC when DTSTART carries a time zone")
	}
	return nil
}
