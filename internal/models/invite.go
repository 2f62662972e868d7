package models

// Draft holds the user-entered fields of a single invitation.
type Draft struct {
	SenderName      string
	SenderEmail     string
	RecipientEmails string // raw, comma separated
	MeetingLink     string
	Description     string
}

// IsZero reports whether every field of the draft is empty.
func (d Draft) IsZero() bool {
	return d == Draft{}
}
