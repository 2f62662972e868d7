// Package mailer defines the contract between the invite dispatcher and the
// transactional email providers that deliver its messages.
package mailer

import (
	"context"
	"errors"
)

// ErrProviderRequestFailed marks any failure reported by, or while talking to, a provider.
var ErrProviderRequestFailed = errors.New("failed to send email")

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a single outgoing email addressed to exactly one recipient.
type Message struct {
	From        string
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers messages through one provider account.
// Send returns the provider's message id on success.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Provider opens a Sender authenticated with an API key.
type Provider interface {
	Sender(apiKey string) (Sender, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(apiKey string) (Sender, error)

// Sender implements Provider.
func (f ProviderFunc) Sender(apiKey string) (Sender, error) {
	return f(apiKey)
}

// ProviderError is a non-success answer from a provider.
type ProviderError struct {
	StatusCode int    // HTTP status, zero when the provider does not report one
	Status     string // status text, e.g. "Unprocessable Entity"
	Name       string // provider error name, if any
	Message    string // provider error message, if any
}

// Detail returns the most specific description available, or "" when the
// provider gave nothing to go on.
func (e *ProviderError) Detail() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Status
}

func (e *ProviderError) Error() string {
	if d := e.Detail(); d != "" {
		return ErrProviderRequestFailed.Error() + ": " + d
	}
	return ErrProviderRequestFailed.Error()
}

func (e *ProviderError) Unwrap() error {
	return ErrProviderRequestFailed
}
