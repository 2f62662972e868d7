// Package outbox is a mailer that writes messages to a directory instead of
// sending them. It backs the CLI's dry-run mode.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"meetinvite/internal/mailer"
)

// Outbox writes each message as <base>.html plus a <base>.json metadata file,
// and attachments as <base>_<filename>.
type Outbox struct {
	dir string
	now func() time.Time
}

// New returns an outbox writing under dir.
func New(dir string) *Outbox {
	return &Outbox{dir: dir, now: time.Now}
}

// Provider returns a provider that ignores the API key and writes to dir.
func Provider(dir string) mailer.Provider {
	return mailer.ProviderFunc(func(string) (mailer.Sender, error) {
		return New(dir), nil
	})
}

type metadata struct {
	Timestamp   string   `json:"timestamp"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Subject     string   `json:"subject"`
	Attachments []string `json:"attachments,omitempty"`
}

// Send implements mailer.Sender. The returned id is the base file name.
func (o *Outbox) Send(ctx context.Context, msg mailer.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create outbox dir: %w", mailer.ErrProviderRequestFailed, err)
	}

	now := o.now()
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405.000000"), sanitizeFilename(msg.To))

	if err := os.WriteFile(filepath.Join(o.dir, base+".html"), []byte(msg.HTML), 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to write HTML file: %w", mailer.ErrProviderRequestFailed, err)
	}

	meta := metadata{
		Timestamp: now.Format(time.RFC3339),
		From:      msg.From,
		To:        msg.To,
		Subject:   msg.Subject,
	}
	for _, a := range msg.Attachments {
		name := base + "_" + sanitizeFilename(a.Filename)
		if err := os.WriteFile(filepath.Join(o.dir, name), a.Content, 0o644); err != nil {
			return "", fmt.Errorf("%w: failed to write attachment: %w", mailer.ErrProviderRequestFailed, err)
		}
		meta.Attachments = append(meta.Attachments, name)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal metadata: %w", mailer.ErrProviderRequestFailed, err)
	}
	if err := os.WriteFile(filepath.Join(o.dir, base+".json"), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to write JSON file: %w", mailer.ErrProviderRequestFailed, err)
	}
	return base, nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.@]`)

func sanitizeFilename(s string) string {
	s = sanitizeRegex.ReplaceAllString(strings.ReplaceAll(s, " ", "_"), "")
	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
