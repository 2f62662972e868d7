package invite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"meetinvite/internal/credential"
	"meetinvite/internal/models"
)

const (
	infoDuration    = 2 * time.Second
	warnDuration    = 3 * time.Second
	failureDuration = 5 * time.Second
)

// Form is the state of an open invitation form: the draft being edited, the
// host-supplied meeting time and date, and the busy flag of a running send.
type Form struct {
	Draft       models.Draft
	MeetingTime string
	Date        string

	// Start and Duration, when set, add a calendar invitation to every message.
	Start    time.Time
	Duration time.Duration

	open       bool
	sending    atomic.Bool
	apiKey     string
	store      credential.Store
	dispatcher *Dispatcher
	notifier   Notifier
	logger     *slog.Logger
}

// NewForm opens a form. The stored API key is read once here; the store is
// only consulted again if no key is held when the form is submitted.
func NewForm(store credential.Store, dispatcher *Dispatcher, notifier Notifier, logger *slog.Logger) *Form {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Form{
		open:       true,
		store:      store,
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
	f.apiKey = f.storedKey()
	return f
}

// Open reports whether the form is still open.
func (f *Form) Open() bool { return f.open }

// Sending reports whether a submission is in flight.
func (f *Form) Sending() bool { return f.sending.Load() }

// HasCredential reports whether an API key is available.
func (f *Form) HasCredential() bool { return f.apiKey != "" || f.storedKey() != "" }

// SetAPIKey holds key in memory for this form only.
func (f *Form) SetAPIKey(key string) { f.apiKey = key }

// GenerateLink replaces the meeting link with a new placeholder link.
func (f *Form) GenerateLink() string {
	f.Draft.MeetingLink = GenerateLink()
	f.notify(LevelInfo, "Google Meet link generated successfully!", infoDuration)
	return f.Draft.MeetingLink
}

// CopyLink writes the meeting link to w.
func (f *Form) CopyLink(w io.Writer) error {
	if f.Draft.MeetingLink == "" {
		return fmt.Errorf("%w: meeting link", ErrMissingField)
	}
	if _, err := io.WriteString(w, f.Draft.MeetingLink+"\n"); err != nil {
		f.notify(LevelError, "Failed to copy meeting link", warnDuration)
		return fmt.Errorf("failed to copy meeting link: %w", err)
	}
	f.notify(LevelInfo, "Meeting link copied to clipboard!", infoDuration)
	return nil
}

// WriteSchedule writes the host-supplied meeting time and date to w, one
// labelled line each. Empty values are left out.
func (f *Form) WriteSchedule(w io.Writer) error {
	for _, line := range [][2]string{{"Time", f.MeetingTime}, {"Date", f.Date}} {
		if line[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", line[0], line[1]); err != nil {
			return fmt.Errorf("failed to write meeting schedule: %w", err)
		}
	}
	return nil
}

// Close discards the draft and closes the form.
func (f *Form) Close() {
	f.Draft = models.Draft{}
	f.open = false
}

// Submit validates the draft and sends it. On success the draft is cleared
// and the form closed; on failure the draft is left untouched so the user can
// correct it and submit again.
func (f *Form) Submit(ctx context.Context) *Outcome {
	if !f.sending.CompareAndSwap(false, true) {
		out := &Outcome{State: StateIdle, Err: ErrAlreadySending}
		f.notify(LevelError, UserMessage(out.Err), warnDuration)
		return out
	}
	defer f.sending.Store(false)

	apiKey := f.apiKey
	if apiKey == "" {
		apiKey = f.storedKey()
	}

	out := f.dispatcher.Dispatch(ctx, Request{
		Draft:       f.Draft,
		APIKey:      apiKey,
		MeetingTime: f.MeetingTime,
		Start:       f.Start,
		Duration:    f.Duration,
	})

	switch out.State {
	case StateSent:
		f.notify(LevelInfo, "✅ Invitation sent successfully!", warnDuration)
		f.Close()
	case StateFailed:
		f.notify(LevelError, UserMessage(out.Err), failureDuration)
	default:
		f.notify(LevelError, UserMessage(out.Err), warnDuration)
	}
	return out
}

func (f *Form) storedKey() string {
	if f.store == nil {
		return ""
	}
	key, err := credential.APIKey(f.store)
	if err != nil {
		f.logger.Warn("Could not read stored API key", "error", err)
		return ""
	}
	return key
}

func (f *Form) notify(level Level, msg string, d time.Duration) {
	if f.notifier == nil {
		return
	}
	f.notifier.Notify(Notification{Level: level, Message: msg, Duration: d})
}
