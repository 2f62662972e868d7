// Package postmark delivers messages through Postmark.
package postmark

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"

	"meetinvite/internal/mailer"
)

// MessageTag is attached to every invitation for Postmark's statistics.
const MessageTag = "meeting-invite"

// ErrMissingServerToken is returned by NewClient when no token is given.
var ErrMissingServerToken = errors.New("postmark server token is required")

// Client sends emails with one Postmark server token.
type Client struct {
	client *postmark.Client
}

// Option configures a Client.
type Option func(*postmark.Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *postmark.Client) { c.BaseURL = u }
}

// NewClient creates a Postmark-backed sender. The server token plays the role
// of the provider API key; the account token is optional for sending.
func NewClient(serverToken, accountToken string, opts ...Option) (*Client, error) {
	if serverToken == "" {
		return nil, ErrMissingServerToken
	}
	pc := postmark.NewClient(serverToken, accountToken)
	for _, opt := range opts {
		opt(pc)
	}
	return &Client{client: pc}, nil
}

// Provider opens a Client for each server token it is given.
func Provider(accountToken string, opts ...Option) mailer.Provider {
	return mailer.ProviderFunc(func(apiKey string) (mailer.Sender, error) {
		return NewClient(apiKey, accountToken, opts...)
	})
}

// Send implements mailer.Sender.
func (c *Client) Send(ctx context.Context, msg mailer.Message) (string, error) {
	email := postmark.Email{
		From:     msg.From,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      MessageTag,
		HTMLBody: msg.HTML,
	}
	for _, a := range msg.Attachments {
		email.Attachments = append(email.Attachments, postmark.Attachment{
			Name:        a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: a.ContentType,
		})
	}

	resp, err := c.client.SendEmail(ctx, email)
	if resp.ErrorCode > 0 {
		return "", &mailer.ProviderError{
			Status:  fmt.Sprintf("postmark error %d", resp.ErrorCode),
			Message: resp.Message,
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", mailer.ErrProviderRequestFailed, err)
	}
	return resp.MessageID, nil
}
