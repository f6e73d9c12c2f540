package timeline_test

import (
	"testing"
	"time"

	"github.com/kronocal/ical"
	"github.com/kronocal/ical/recurrence"
	"github.com/kronocal/ical/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDateTime(y int, m time.Month, d, hh, mm, ss int) ical.Value {
	return ical.NewDateTimeFloating(time.Date(y, m, d, hh, mm, ss, 0, time.UTC))
}

// TestWeeklyExpansion is scenario S2: a weekly Monday meeting expanded over
// a five-week window.
func TestWeeklyExpansion(t *testing.T) {
	rule := recurrence.NewRecurrenceRule(recurrence.Weekly)
	rule.ByDay = []recurrence.ByDay{{Day: recurrence.Monday}}

	ev := &ical.Event{
		Item: ical.Item{
			UID:     "mock-uid-1",
			DTStamp: mustDateTime(2022, 8, 29, 9, 0, 0),
			Summary: "Monday meeting",
			RRule:   rule,
		},
		DTStart: mustDateTime(2022, 8, 29, 9, 0, 0),
	}
	cal := &ical.Calendar{Events: []*ical.Event{ev}}

	tl := timeline.New(cal, timeline.Options{MaxExpansions: 3650})
	cur, err := tl.Overlapping(ical.NewDate(2022, 8, 29), ical.NewDate(2022, 9, 30))
	require.NoError(t, err)

	occs, err := cur.Collect(0)
	require.NoError(t, err)
	require.Len(t, occs, 5)

	wantDays := []int{29, 5, 12, 19, 26}
	for i, occ := range occs {
		assert.Equal(t, "mock-uid-1", occ.ItemUID)
		assert.Equal(t, 9, occ.Start.When.Hour())
		assert.Equal(t, wantDays[i], occ.Start.When.Day())
		require.NotNil(t, occ.RecurrenceID)
		assert.True(t, ical.SameOccurrence(*occ.RecurrenceID, occ.Start))
	}
}

// TestAllDayBeforeTimedAtSameBoundary is scenario S6.
func TestAllDayBeforeTimedAtSameBoundary(t *testing.T) {
	allDay := &ical.Event{
		Item:    ical.Item{UID: "all-day-uid", DTStamp: mustDateTime(2022, 8, 29, 0, 0, 0)},
		DTStart: ical.NewDate(2022, 8, 29),
	}
	timed := &ical.Event{
		Item:    ical.Item{UID: "timed-uid", DTStamp: mustDateTime(2022, 8, 29, 0, 0, 0)},
		DTStart: mustDateTime(2022, 8, 29, 0, 0, 0),
	}
	cal := &ical.Calendar{Events: []*ical.Event{timed, allDay}}

	tl := timeline.New(cal, timeline.Options{MaxExpansions: 3650})
	cur, err := tl.On(ical.NewDate(2022, 8, 29))
	require.NoError(t, err)

	occs, err := cur.Collect(0)
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, "all-day-uid", occs[0].ItemUID)
	assert.Equal(t, "timed-uid", occs[1].ItemUID)
}

// TestOverrideReplacesGeneratedCandidate is testable property 4.
func TestOverrideReplacesGeneratedCandidate(t *testing.T) {
	rule := recurrence.NewRecurrenceRule(recurrence.Weekly)
	rule.ByDay = []recurrence.ByDay{{Day: recurrence.Monday}}
	rule.Count = 3

	recID := mustDateTime(2022, 9, 5, 9, 0, 0)
	master := &ical.Event{
		Item: ical.Item{
			UID:     "series-1",
			DTStamp: mustDateTime(2022, 8, 29, 9, 0, 0),
			Summary: "Monday meeting",
			RRule:   rule,
		},
		DTStart: mustDateTime(2022, 8, 29, 9, 0, 0),
	}
	override := &ical.Event{
		Item: ical.Item{
			UID:          "series-1",
			DTStamp:      mustDateTime(2022, 9, 5, 9, 0, 0),
			Summary:      "Team meeting (moved)",
			RecurrenceID: &recID,
		},
		DTStart: mustDateTime(2022, 9, 5, 10, 0, 0),
	}
	cal := &ical.Calendar{Events: []*ical.Event{master, override}}

	tl := timeline.New(cal, timeline.Options{MaxExpansions: 3650})
	cur, err := tl.All()
	require.NoError(t, err)
	occs, err := cur.Collect(10)
	require.NoError(t, err)
	require.Len(t, occs, 3)

	assert.True(t, occs[1].IsOverride)
	assert.Equal(t, "Team meeting (moved)", occs[1].Item.(*ical.Event).Summary)
	assert.Equal(t, 10, occs[1].Start.When.Hour())
}

// TestExdateSuppressesOccurrence is testable property 3.
func TestExdateSuppressesOccurrence(t *testing.T) {
	rule := recurrence.NewRecurrenceRule(recurrence.Daily)
	rule.Count = 5

	excluded := mustDateTime(2022, 9, 3, 9, 0, 0)
	ev := &ical.Event{
		Item: ical.Item{
			UID:     "daily-1",
			DTStamp: mustDateTime(2022, 9, 1, 9, 0, 0),
			RRule:   rule,
			EXDate:  []ical.Value{excluded},
		},
		DTStart: mustDateTime(2022, 9, 1, 9, 0, 0),
	}
	cal := &ical.Calendar{Events: []*ical.Event{ev}}

	tl := timeline.New(cal, timeline.Options{MaxExpansions: 3650})
	cur, err := tl.All()
	require.NoError(t, err)
	occs, err := cur.Collect(10)
	require.NoError(t, err)
	require.Len(t, occs, 4)
	for _, occ := range occs {
		assert.False(t, ical.SameOccurrence(occ.Start, excluded))
	}
}
