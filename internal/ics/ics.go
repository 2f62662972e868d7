// Package ics encodes meeting invitations as iCalendar documents.
package ics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"meetinvite/internal/models"
)

const (
	ProductID   = "-//meetinvite//EN"
	Filename    = "invite.ics"
	ContentType = "text/calendar; charset=utf-8; method=REQUEST"
)

// Calendar wraps the event in a VCALENDAR carrying a REQUEST method.
func Calendar(event *models.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText(ical.PropMethod, "REQUEST")
	cal.Children = append(cal.Children, Component(event))
	return cal
}

// Component converts an event to a VEVENT.
func Component(event *models.Event) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, event.UID)
	ve.Props.SetText(ical.PropSummary, event.Title)
	stamp := event.Created
	if stamp.IsZero() {
		stamp = time.Now()
	}
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.StartTime.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, event.EndTime.UTC())

	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.Location != "" {
		ve.Props.SetText(ical.PropLocation, event.Location)
		ve.Props.SetText(ical.PropURL, event.Location)
	}
	if event.Organizer != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.Value = "mailto:" + event.Organizer
		ve.Props.Add(p)
	}
	for _, attendee := range event.Attendees {
		p := ical.NewProp(ical.PropAttendee)
		p.Value = "mailto:" + attendee
		p.Params.Set("RSVP", "TRUE")
		ve.Props.Add(p)
	}
	return ve
}

// Encode renders the event as an .ics document.
func Encode(event *models.Event) ([]byte, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(Calendar(event)); err != nil {
		return nil, fmt.Errorf("failed to encode event to iCal format: %w", err)
	}
	return buf.Bytes(), nil
}
