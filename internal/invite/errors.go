package invite

import (
	"errors"
	"strings"
)

var (
	ErrMissingField           = errors.New("missing required field")
	ErrInvalidSenderEmail     = errors.New("invalid sender email address")
	ErrInvalidRecipientEmails = errors.New("invalid recipient email(s)")
	ErrMissingCredential      = errors.New("missing email provider API key")
	ErrUnknownSend            = errors.New("unknown send error")
	ErrAlreadySending         = errors.New("an invitation is already being sent")
	ErrInvalidTransition      = errors.New("invalid dispatch state transition")
)

// FieldError names the first required field found empty.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return ErrMissingField.Error() + ": " + e.Field
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

// RecipientsError lists the recipient tokens that are not email addresses,
// in the order they were entered.
type RecipientsError struct {
	Invalid []string
}

func (e *RecipientsError) Error() string {
	return ErrInvalidRecipientEmails.Error() + ": " + strings.Join(e.Invalid, ", ")
}

func (e *RecipientsError) Unwrap() error {
	return ErrInvalidRecipientEmails
}

// UserMessage turns an error from Validate or Dispatch into the sentence shown
// to the person filling in the form.
func UserMessage(err error) string {
	var recipients *RecipientsError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingField):
		return "Please fill in all required fields"
	case errors.Is(err, ErrInvalidSenderEmail):
		return "Please enter a valid sender email address"
	case errors.As(err, &recipients):
		return "Invalid recipient email(s): " + strings.Join(recipients.Invalid, ", ")
	case errors.Is(err, ErrMissingCredential):
		return "Please set your Resend API key first"
	case errors.Is(err, ErrAlreadySending):
		return "An invitation is already being sent"
	case errors.Is(err, ErrUnknownSend):
		return "Failed to send invitation: Please try again"
	default:
		return "Failed to send invitation: " + err.Error()
	}
}
