// Package resend delivers messages through the Resend transactional email API.
package resend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"meetinvite/internal/mailer"
)

const (
	DefaultBaseURL = "https://api.resend.com"
	userAgent      = "meetinvite/1.0"
)

// ErrMissingAPIKey is returned by NewClient when no key is given.
var ErrMissingAPIKey = errors.New("resend API key is required")

// bearerTransport adds the API key and identifying headers to each request.
type bearerTransport struct {
	APIKey    string
	Transport http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.APIKey)
	req.Header.Set("User-Agent", userAgent)
	return t.Transport.RoundTrip(req)
}

type options struct {
	baseURL   string
	transport http.RoundTripper
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimSuffix(u, "/") }
}

// WithTransport sets the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithTimeout bounds each request. Zero leaves the transport default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Client sends emails with one API key.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	o := options{
		baseURL:   DefaultBaseURL,
		transport: http.DefaultTransport,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		httpClient: &http.Client{
			Transport: &bearerTransport{APIKey: apiKey, Transport: o.transport},
			Timeout:   o.timeout,
		},
		baseURL: o.baseURL,
		logger:  o.logger,
	}, nil
}

// Provider opens a Client for each API key it is given.
func Provider(opts ...Option) mailer.Provider {
	return mailer.ProviderFunc(func(apiKey string) (mailer.Sender, error) {
		return NewClient(apiKey, opts...)
	})
}

type attachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

type sendRequest struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []attachment `json:"attachments,omitempty"`
}

// sendResponse covers both the success body and the error bodies Resend
// returns: {"id"}, {"name","message"} or {"error":{"message"}}.
type sendResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Send posts one message to /emails and returns the Resend message id.
func (c *Client) Send(ctx context.Context, msg mailer.Message) (string, error) {
	payload := sendRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, attachment{
			Filename:    a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			ContentType: a.ContentType,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", mailer.ErrProviderRequestFailed, err)
	}
	defer resp.Body.Close()

	// The body may be empty or not JSON; that only loses the error message.
	var data sendResponse
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &data)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("Resend rejected email", "status", resp.StatusCode, "body", string(raw))
		pe := &mailer.ProviderError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Name:       data.Name,
			Message:    data.Message,
		}
		if data.Error != nil && data.Error.Message != "" {
			pe.Message = data.Error.Message
		}
		return "", pe
	}

	c.logger.Debug("Email sent", "to", msg.To, "id", data.ID)
	return data.ID, nil
}
