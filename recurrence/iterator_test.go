package recurrence

import (
	"testing"
	"time"

	"github.com/kronocal/ical/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datesUTC(ts []values.Value) []string {
	out := make([]string, len(ts))
	for i, v := range ts {
		out[i] = v.When.Format("2006-01-02")
	}
	return out
}

func drain(t *testing.T, it *Iterator, limit int) []values.Value {
	t.Helper()
	var out []values.Value
	for i := 0; i < limit; i++ {
		v, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func TestIteratorWeeklyByDay(t *testing.T) {
	anchor := values.NewDateTimeUTC(time.Date(2022, 8, 29, 9, 0, 0, 0, time.UTC)) // Monday
	rule := NewRecurrenceRule(Weekly)
	rule.ByDay = []ByDay{{Day: Monday}, {Day: Wednesday}}
	rule.Count = 5

	it, err := NewIterator(anchor, rule, nil, nil, DefaultExpansionOptions)
	require.NoError(t, err)

	got := drain(t, it, 20)
	assert.Equal(t, []string{
		"2022-08-29", "2022-08-31",
		"2022-09-05", "2022-09-07",
		"2022-09-12",
	}, datesUTC(got))
}

func TestIteratorMonthlyByMonthDay(t *testing.T) {
	anchor := values.NewDate(2022, time.January, 31)
	rule := NewRecurrenceRule(Monthly)
	rule.ByMonthDay = []int{31}
	rule.Count = 4

	it, err := NewIterator(anchor, rule, nil, nil, DefaultExpansionOptions)
	require.NoError(t, err)

	got := drain(t, it, 20)
	// February and April have no 31st; only months with one survive.
	assert.Equal(t, []string{"2022-01-31", "2022-03-31", "2022-05-31", "2022-07-31"}, datesUTC(got))
}

func TestIteratorMonthlyByDayOrdinal(t *testing.T) {
	anchor := values.NewDate(2022, time.January, 3) // first Monday of January 2022
	rule := NewRecurrenceRule(Monthly)
	rule.ByDay = []ByDay{{Ordinal: -1, Day: Friday}}
	rule.Count = 3

	it, err := NewIterator(anchor, rule, nil, nil, DefaultExpansionOptions)
	require.NoError(t, err)

	got := drain(t, it, 20)
	assert.Equal(t, []string{"2022-01-28", "2022-02-25", "2022-03-25"}, datesUTC(got))
}

func TestIteratorUnionsRDATEAndFiltersEXDATE(t *testing.T) {
	anchor := values.NewDateTimeUTC(time.Date(2022, 9, 1, 9, 0, 0, 0, time.UTC))
	rule := NewRecurrenceRule(Daily)
	rule.Count = 3

	rdate := []values.Value{values.NewDateTimeUTC(time.Date(2022, 9, 10, 9, 0, 0, 0, time.UTC))}
	exdate := []values.Value{values.NewDateTimeUTC(time.Date(2022, 9, 2, 9, 0, 0, 0, time.UTC))}

	it, err := NewIterator(anchor, rule, rdate, exdate, DefaultExpansionOptions)
	require.NoError(t, err)

	got := drain(t, it, 20)
	assert.Equal(t, []string{"2022-09-01", "2022-09-03", "2022-09-10"}, datesUTC(got))
}

func TestIteratorRejectsUnsupportedFreq(t *testing.T) {
	anchor := values.NewDateTimeUTC(time.Date(2022, 9, 1, 9, 0, 0, 0, time.UTC))
	rule := NewRecurrenceRule(Yearly)

	_, err := NewIterator(anchor, rule, nil, nil, DefaultExpansionOptions)
	assert.Error(t, err)
}

func TestIteratorUnboundedStopsAtMaxOccurrences(t *testing.T) {
	anchor := values.NewDateTimeUTC(time.Date(2022, 9, 1, 9, 0, 0, 0, time.UTC))
	rule := NewRecurrenceRule(Daily)

	it, err := NewIterator(anchor, rule, nil, nil, ExpansionOptions{MaxOccurrences: 10})
	require.NoError(t, err)

	got := drain(t, it, 1000)
	assert.Len(t, got, 10)
}

func TestValidateRejectsCountAndUntilTogether(t *testing.T) {
	anchor := values.NewDateTimeUTC(time.Date(2022, 9, 1, 9, 0, 0, 0, time.UTC))
	until := values.NewDateTimeUTC(time.Date(2022, 12, 1, 9, 0, 0, 0, time.UTC))
	rule := NewRecurrenceRule(Daily)
	rule.Count = 3
	rule.Until = &until

	assert.Error(t, rule.Validate(anchor))
}

func TestValidateRejectsMismatchedUntilKind(t *testing.T) {
	anchor := values.NewDate(2022, time.September, 1)
	until := values.NewDateTimeUTC(time.Date(2022, 12, 1, 9, 0, 0, 0, time.UTC))
	rule := NewRecurrenceRule(Daily)
	rule.Until = &until

	assert.Error(t, rule.Validate(anchor))
}

func TestHasOccurrenceInRange(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rule := NewRecurrenceRule(Daily)
	rule.Count = 7

	ok, err := HasOccurrenceInRange(anchor, rule, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = HasOccurrenceInRange(anchor, rule, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, ok)
}
