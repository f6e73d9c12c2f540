package values

import (
	"testing"
	"time"
)

func TestSameOccurrenceDateIsCalendarDayEquality(t *testing.T) {
	a := NewDate(2022, time.September, 5)
	b := Value{Kind: KindDate, When: time.Date(2022, time.September, 5, 0, 0, 0, 0, time.FixedZone("x", 3600))}
	if !SameOccurrence(a, b) {
		t.Error("expected calendar-day equality regardless of stored zone")
	}
}

func TestSameOccurrenceUTCIsInstantEquality(t *testing.T) {
	a := NewDateTimeUTC(time.Date(2022, 9, 5, 9, 0, 0, 0, time.UTC))
	b := NewDateTimeUTC(time.Date(2022, 9, 5, 9, 0, 0, 0, time.UTC))
	if !SameOccurrence(a, b) {
		t.Error("expected instant equality for UTC values")
	}
}

func TestSameOccurrenceZonedIsWallTimeEquality(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("no tzdata available")
	}
	a := NewDateTimeZoned(time.Date(2022, 9, 5, 9, 0, 0, 0, ny), "America/New_York")
	b := NewDateTimeZoned(time.Date(2022, 9, 5, 9, 0, 0, 0, time.UTC), "America/New_York")
	if !SameOccurrence(a, b) {
		t.Error("expected wall-time equality ignoring actual offset")
	}
}

func TestParseFormatDurationRoundTrips(t *testing.T) {
	cases := []string{"P1D", "PT1H30M", "P1DT1H", "PT0S", "P2W"}
	for _, c := range cases {
		d, err := ParseDuration(c)
		if err != nil {
			t.Fatalf("ParseDuration(%q): %v", c, err)
		}
		if c == "P2W" {
			if d != 14*24*time.Hour {
				t.Errorf("P2W = %v, want 336h", d)
			}
			continue
		}
		got := FormatDuration(d)
		d2, err := ParseDuration(got)
		if err != nil {
			t.Fatalf("re-parse %q: %v", got, err)
		}
		if d2 != d {
			t.Errorf("round trip %q -> %v -> %q -> %v", c, d, got, d2)
		}
	}
}

func TestParseDurationRejectsMissingP(t *testing.T) {
	if _, err := ParseDuration("1D"); err == nil {
		t.Error("expected error for duration missing leading P")
	}
}
