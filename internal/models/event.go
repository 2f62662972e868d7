package models

import "time"

// Event is the calendar view of a meeting invitation.
// It is independent of any calendar provider and is used both for the .ics
// attachment and for publishing to a CalDAV calendar.
type Event struct {
	UID         string    // iCalendar UID
	Created     time.Time // When the invitation was issued (DTSTAMP)
	Title       string    // Summary of the event
	Description string    // Plain-text description
	StartTime   time.Time // Start time of the meeting
	EndTime     time.Time // End time of the meeting
	Location    string    // Meeting link
	Organizer   string    // Organizer's email
	Attendees   []string  // Attendee emails
}
