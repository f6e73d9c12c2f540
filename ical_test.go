package ical_test

import (
	"strings"
	"testing"

	"github.com/kronocal/ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseAndReEmit is scenario S1.
func TestParseAndReEmit(t *testing.T) {
	input := "BEGIN:VCALENDAR\r\n" +
		"PRODID:-//Test//Test//EN\r\n" +
		"VERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:19970901T130000Z-123401@example.com\r\n" +
		"DTSTAMP:19970901T130000Z\r\n" +
		"DTSTART:19970903T163000Z\r\n" +
		"DTEND:19970903T190000Z\r\n" +
		"SUMMARY:Annual Employee Review\r\n" +
		"CLASS:PRIVATE\r\n" +
		"CATEGORIES:BUSINESS,HUMAN RESOURCES\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	cal, err := ical.Decode(input, ical.DefaultOptions)
	require.NoError(t, err)
	require.Len(t, cal.Events, 1)

	ev := cal.Events[0]
	assert.Equal(t, "19970901T130000Z-123401@example.com", ev.UID)
	assert.Equal(t, "Annual Employee Review", ev.Summary)
	assert.Equal(t, ical.ClassPrivate, ev.Class)
	assert.Equal(t, []string{"BUSINESS", "HUMAN RESOURCES"}, ev.Categories)
	assert.Equal(t, ical.KindDateTimeUTC, ev.DTStart.Kind)
	require.NotNil(t, ev.DTEnd)

	out := ical.Encode(cal)
	require.True(t, strings.HasSuffix(out, "\r\n"))
	for _, line := range strings.Split(strings.TrimRight(out, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 75)
	}

	wantOrder := []string{
		"BEGIN:VCALENDAR",
		"PRODID:-//Test//Test//EN",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:19970901T130000Z-123401@example.com",
		"DTSTAMP:19970901T130000Z",
		"DTSTART:19970903T163000Z",
		"DTEND:19970903T190000Z",
		"SUMMARY:Annual Employee Review",
		"CLASS:PRIVATE",
		"CATEGORIES:BUSINESS,HUMAN RESOURCES",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	gotLines := strings.Split(strings.TrimRight(out, "\r\n"), "\r\n")
	require.Len(t, gotLines, len(wantOrder))
	for i, want := range wantOrder {
		assert.Equal(t, want, gotLines[i])
	}

	roundTripped, err := ical.Decode(out, ical.DefaultOptions)
	require.NoError(t, err)
	assert.Equal(t, cal.Events[0].UID, roundTripped.Events[0].UID)
	assert.Equal(t, cal.Events[0].Summary, roundTripped.Events[0].Summary)
	assert.Equal(t, cal.Events[0].Class, roundTripped.Events[0].Class)
	assert.Equal(t, cal.Events[0].Categories, roundTripped.Events[0].Categories)
	assert.True(t, ical.SameOccurrence(cal.Events[0].DTStart, roundTripped.Events[0].DTStart))
	assert.True(t, ical.SameOccurrence(*cal.Events[0].DTEnd, *roundTripped.Events[0].DTEnd))
}

// TestDecodeEncodeRoundTripPreservesUnknownProperties covers testable
// property 1 against an item carrying a property this model doesn't name.
func TestDecodeEncodeRoundTripPreservesUnknownProperties(t *testing.T) {
	input := "BEGIN:VCALENDAR\r\n" +
		"PRODID:-//Test//Test//EN\r\n" +
		"VERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:unknown-prop-1\r\n" +
		"DTSTAMP:20220101T000000Z\r\n" +
		"DTSTART:20220101T090000Z\r\n" +
		"X-CUSTOM-FIELD:some value\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	cal, err := ical.Decode(input, ical.DefaultOptions)
	require.NoError(t, err)

	out := ical.Encode(cal)
	assert.Contains(t, out, "X-CUSTOM-FIELD:some value")

	again, err := ical.Decode(out, ical.DefaultOptions)
	require.NoError(t, err)
	assert.Equal(t, cal.Events[0].Extra, again.Events[0].Extra)
}

func TestDecodeRejectsDTEndBeforeDTStart(t *testing.T) {
	input := "BEGIN:VCALENDAR\r\n" +
		"PRODID:-//Test//Test//EN\r\n" +
		"VERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:bad-dtend@example.com\r\n" +
		"DTSTAMP:20220101T000000Z\r\n" +
		"DTSTART:20220101T100000Z\r\n" +
		"DTEND:20220101T090000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	_, err := ical.Decode(input, ical.DefaultOptions)
	require.Error(t, err)
	var verr *ical.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDecodeRejectsDueBeforeDTStart(t *testing.T) {
	input := "BEGIN:VCALENDAR\r\n" +
		"PRODID:-//Test//Test//EN\r\n" +
		"VERSION:2.0\r\n" +
		"BEGIN:VTODO\r\n" +
		"UID:bad-due@example.com\r\n" +
		"DTSTAMP:20220101T000000Z\r\n" +
		"DTSTART:20220101T100000Z\r\n" +
		"DUE:20220101T090000Z\r\n" +
		"END:VTODO\r\n" +
		"END:VCALENDAR\r\n"

	_, err := ical.Decode(input, ical.DefaultOptions)
	require.Error(t, err)
	var verr *ical.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDecodeEncodeGeoRoundTrip(t *testing.T) {
	input := "BEGIN:VCALENDAR\r\n" +
		"PRODID:-//Test//Test//EN\r\n" +
		"VERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:geo-1@example.com\r\n" +
		"DTSTAMP:20220101T000000Z\r\n" +
		"DTSTART:20220101T090000Z\r\n" +
		"GEO:37.386013;-122.082932\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	cal, err := ical.Decode(input, ical.DefaultOptions)
	require.NoError(t, err)
	require.NotNil(t, cal.Events[0].Geo)
	assert.InDelta(t, 37.386013, cal.Events[0].Geo.Lat, 1e-6)
	assert.InDelta(t, -122.082932, cal.Events[0].Geo.Lon, 1e-6)

	out := ical.Encode(cal)
	assert.Contains(t, out, "GEO:37.386013;-122.082932")

	again, err := ical.Decode(out, ical.DefaultOptions)
	require.NoError(t, err)
	require.NotNil(t, again.Events[0].Geo)
	assert.Equal(t, *cal.Events[0].Geo, *again.Events[0].Geo)
}

func TestStrictModeRejectsUnknownFreq(t *testing.T) {
	input := "BEGIN:VCALENDAR\r\n" +
		"PRODID:-//Test//Test//EN\r\n" +
		"VERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:bad-freq@example.com\r\n" +
		"DTSTAMP:20220101T000000Z\r\n" +
		"DTSTART:20220101T090000Z\r\n" +
		"RRULE:FREQ=FORTNIGHTLY\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	strict := ical.DefaultOptions
	strict.StrictRFC5545 = true
	_, err := ical.Decode(input, strict)
	require.Error(t, err)

	cal, err := ical.Decode(input, ical.DefaultOptions)
	require.NoError(t, err)
	require.NotNil(t, cal.Events[0].RRule)
}

func TestStrictModeRejectsMalformedEscape(t *testing.T) {
	input := "BEGIN:VCALENDAR\r\n" +
		"PRODID:-//Test//Test//EN\r\n" +
		"VERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:bad-escape@example.com\r\n" +
		"DTSTAMP:20220101T000000Z\r\n" +
		"DTSTART:20220101T090000Z\r\n" +
		"SUMMARY:broken \\q escape\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	strict := ical.DefaultOptions
	strict.StrictRFC5545 = true
	_, err := ical.Decode(input, strict)
	require.Error(t, err)

	cal, err := ical.Decode(input, ical.DefaultOptions)
	require.NoError(t, err)
	assert.NotEmpty(t, cal.Events[0].Summary)
}

func TestDecodeRejectsIncoherentRRule(t *testing.T) {
	input := "BEGIN:VCALENDAR\r\n" +
		"PRODID:-//Test//Test//EN\r\n" +
		"VERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:bad-rrule@example.com\r\n" +
		"DTSTAMP:20220101T000000Z\r\n" +
		"DTSTART:20220101T090000Z\r\n" +
		"RRULE:FREQ=DAILY;COUNT=5;UNTIL=20220201T090000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	_, err := ical.Decode(input, ical.DefaultOptions)
	require.Error(t, err)
}
