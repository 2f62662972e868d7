package invite

import (
	"regexp"
	"strings"

	"meetinvite/internal/models"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether s looks like an email address: something, "@",
// something, ".", something, none of it whitespace or "@".
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// Recipients splits the raw recipient field on commas and trims each token.
// Empty tokens are kept so that validation can report them.
func Recipients(raw string) []string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Validate checks a draft before anything is sent. Checks run in a fixed order
// and stop at the first failing category: required fields, sender address,
// recipient addresses, then the API key.
func Validate(d models.Draft, apiKey string) error {
	required := []struct {
		name  string
		value string
	}{
		{"sender name", d.SenderName},
		{"sender email", d.SenderEmail},
		{"recipient emails", d.RecipientEmails},
		{"description", d.Description},
		{"meeting link", d.MeetingLink},
	}
	for _, f := range required {
		if f.value == "" {
			return &FieldError{Field: f.name}
		}
	}

	if !IsEmail(d.SenderEmail) {
		return ErrInvalidSenderEmail
	}

	var invalid []string
	for _, r := range Recipients(d.RecipientEmails) {
		if !IsEmail(r) {
			invalid = append(invalid, r)
		}
	}
	if len(invalid) > 0 {
		return &RecipientsError{Invalid: invalid}
	}

	if apiKey == "" {
		return ErrMissingCredential
	}
	return nil
}
