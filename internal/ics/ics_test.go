package ics_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetinvite/internal/ics"
	"meetinvite/internal/models"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC)
	event := &models.Event{
		UID:         "uid-1",
		Created:     start.Add(-24 * time.Hour),
		Title:       "Meeting Invite",
		Description: "Weekly sync",
		StartTime:   start,
		EndTime:     start.Add(30 * time.Minute),
		Location:    "https://meet.google.com/abc",
		Organizer:   "ada@example.com",
		Attendees:   []string{"bob@example.com", "eve@example.com"},
	}

	data, err := ics.Encode(event)
	require.NoError(t, err)

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)

	method, err := cal.Props.Text(ical.PropMethod)
	require.NoError(t, err)
	assert.Equal(t, "REQUEST", method)

	events := cal.Events()
	require.Len(t, events, 1)
	ve := events[0]

	uid, err := ve.Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)

	location, err := ve.Props.Text(ical.PropLocation)
	require.NoError(t, err)
	assert.Equal(t, "https://meet.google.com/abc", location)

	stamp, err := ve.Props.DateTime(ical.PropDateTimeStamp, time.UTC)
	require.NoError(t, err)
	assert.True(t, start.Add(-24*time.Hour).Equal(stamp))

	gotStart, err := ve.DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, start.Equal(gotStart))

	attendees := ve.Props.Values(ical.PropAttendee)
	require.Len(t, attendees, 2)
	assert.Equal(t, "mailto:bob@example.com", attendees[0].Value)
	assert.Equal(t, "mailto:ada@example.com", ve.Props.Get(ical.PropOrganizer).Value)
}

func TestEncodeOmitsEmptyOptionalFields(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC)
	data, err := ics.Encode(&models.Event{UID: "uid-2", Title: "t", StartTime: start, EndTime: start.Add(time.Hour)})
	require.NoError(t, err)

	assert.NotContains(t, string(data), "LOCATION")
	assert.NotContains(t, string(data), "ORGANIZER")
	assert.Contains(t, string(data), "PRODID:-//meetinvite//EN")
}
