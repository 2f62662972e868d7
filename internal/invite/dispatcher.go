package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"meetinvite/internal/ics"
	"meetinvite/internal/mailer"
	"meetinvite/internal/models"
)

const (
	DefaultFrom    = "noreply@tymeai.com"
	DefaultSubject = "Meeting Invite"
)

// Policy decides what happens to the remaining recipients after a failure.
type Policy int

const (
	// StopOnFirstFailure never attempts recipients after the first failed one.
	StopOnFirstFailure Policy = iota
	// ContinueOnFailure attempts every recipient and reports every failure.
	ContinueOnFailure
)

func (p Policy) String() string {
	if p == ContinueOnFailure {
		return "continue"
	}
	return "stop"
}

// ParsePolicy maps "stop" and "continue" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "stop":
		return StopOnFirstFailure, nil
	case "continue":
		return ContinueOnFailure, nil
	default:
		return 0, fmt.Errorf("unknown dispatch policy %q", s)
	}
}

// Request is everything a single dispatch needs.
type Request struct {
	Draft       models.Draft
	APIKey      string
	MeetingTime string // display string, embedded verbatim

	// Start and Duration are optional. When Start is set every message
	// carries an .ics calendar invitation.
	Start    time.Time
	Duration time.Duration
}

// Status of one recipient within an outcome.
type Status int

const (
	StatusDelivered Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result is what happened to one recipient.
type Result struct {
	Recipient string
	Status    Status
	MessageID string
	Err       error
}

// Outcome is the inspectable result of a dispatch.
type Outcome struct {
	State   State
	Trace   []State
	Results []Result
	Err     error

	// Event is the calendar event attached to the messages, if any.
	Event *models.Event
}

// OK reports whether every recipient was delivered.
func (o *Outcome) OK() bool {
	return o.State == StateSent
}

// Attempted counts recipients for which a send was issued.
func (o *Outcome) Attempted() int {
	n := 0
	for _, r := range o.Results {
		if r.Status != StatusSkipped {
			n++
		}
	}
	return n
}

// Recipients returns the recipients with the given status, in send order.
func (o *Outcome) Recipients(s Status) []string {
	var out []string
	for _, r := range o.Results {
		if r.Status == s {
			out = append(out, r.Recipient)
		}
	}
	return out
}

func (o *Outcome) advance(to State) {
	if !o.State.CanTransition(to) {
		panic(fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.State, to))
	}
	o.State = to
	o.Trace = append(o.Trace, to)
}

// Dispatcher sends one invitation per recipient, one at a time.
type Dispatcher struct {
	provider mailer.Provider
	logger   *slog.Logger
	from     string
	subject  string
	footer   string
	policy   Policy
	now      func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option { return func(d *Dispatcher) { d.logger = l } }
func WithFrom(from string) Option      { return func(d *Dispatcher) { d.from = from } }
func WithSubject(s string) Option      { return func(d *Dispatcher) { d.subject = s } }
func WithFooter(s string) Option       { return func(d *Dispatcher) { d.footer = s } }
func WithPolicy(p Policy) Option       { return func(d *Dispatcher) { d.policy = p } }

// WithClock replaces time.Now, which supplies the date printed in the invitation.
func WithClock(now func() time.Time) Option { return func(d *Dispatcher) { d.now = now } }

// NewDispatcher creates a Dispatcher delivering through provider.
func NewDispatcher(provider mailer.Provider, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		provider: provider,
		logger:   slog.Default(),
		from:     DefaultFrom,
		subject:  DefaultSubject,
		footer:   DefaultFooter,
		policy:   StopOnFirstFailure,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch validates the request and sends the invitation to every recipient
// in order. It never returns nil; failures are reported through Outcome.Err.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) *Outcome {
	out := &Outcome{State: StateIdle}
	out.advance(StateValidating)

	if err := Validate(req.Draft, req.APIKey); err != nil {
		d.logger.Debug("Invitation rejected by validation", "error", err)
		out.Err = err
		out.advance(StateIdle)
		return out
	}
	recipients := Recipients(req.Draft.RecipientEmails)

	sender, err := d.provider.Sender(req.APIKey)
	if err != nil {
		out.Err = fmt.Errorf("failed to open email provider: %w", err)
		out.advance(StateFailed)
		return out
	}

	out.Event = d.event(req, recipients)
	attachments, err := calendarAttachments(out.Event)
	if err != nil {
		out.Err = err
		out.advance(StateFailed)
		return out
	}

	html, err := RenderBody(Body{
		SenderName:  req.Draft.SenderName,
		SenderEmail: req.Draft.SenderEmail,
		Date:        FormatDate(d.now()),
		MeetingTime: req.MeetingTime,
		MeetingLink: req.Draft.MeetingLink,
		Description: req.Draft.Description,
		Footer:      d.footer,
	})
	if err != nil {
		out.Err = err
		out.advance(StateFailed)
		return out
	}

	out.advance(StateSending)
	d.logger.Info("Sending invitation", "recipients", len(recipients), "policy", d.policy)

	var errs []error
	for _, recipient := range recipients {
		if len(errs) > 0 && d.policy == StopOnFirstFailure {
			out.Results = append(out.Results, Result{Recipient: recipient, Status: StatusSkipped})
			continue
		}

		id, err := d.send(ctx, sender, mailer.Message{
			From:        d.from,
			To:          recipient,
			Subject:     d.subject,
			HTML:        html,
			Attachments: attachments,
		})
		if err != nil {
			d.logger.Error("Failed to send invitation", "recipient", recipient, "error", err)
			out.Results = append(out.Results, Result{Recipient: recipient, Status: StatusFailed, Err: err})
			errs = append(errs, err)
			continue
		}

		d.logger.Debug("Invitation delivered", "recipient", recipient, "messageID", id)
		out.Results = append(out.Results, Result{Recipient: recipient, Status: StatusDelivered, MessageID: id})
		out.advance(StateSending)
	}

	if len(errs) > 0 {
		if d.policy == StopOnFirstFailure {
			out.Err = errs[0]
		} else {
			out.Err = errors.Join(errs...)
		}
		out.advance(StateFailed)
		return out
	}

	out.advance(StateSent)
	d.logger.Info("Invitation sent", "recipients", len(recipients))
	return out
}

func (d *Dispatcher) send(ctx context.Context, sender mailer.Sender, msg mailer.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := sender.Send(ctx, msg)
	if err != nil {
		var pe *mailer.ProviderError
		if errors.As(err, &pe) && pe.Detail() == "" {
			return "", fmt.Errorf("%w: %w", ErrUnknownSend, err)
		}
		return "", err
	}
	return id, nil
}

// event describes the meeting as a calendar event, or returns nil when the
// request has no start time.
func (d *Dispatcher) event(req Request, recipients []string) *models.Event {
	if req.Start.IsZero() {
		return nil
	}
	duration := req.Duration
	if duration <= 0 {
		duration = time.Hour
	}
	return &models.Event{
		UID:         uuid.New().String(),
		Created:     d.now(),
		Title:       d.subject,
		Description: req.Draft.Description,
		StartTime:   req.Start,
		EndTime:     req.Start.Add(duration),
		Location:    req.Draft.MeetingLink,
		Organizer:   req.Draft.SenderEmail,
		Attendees:   recipients,
	}
}

func calendarAttachments(event *models.Event) ([]mailer.Attachment, error) {
	if event == nil {
		return nil, nil
	}
	data, err := ics.Encode(event)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar invitation: %w", err)
	}
	return []mailer.Attachment{{
		Filename:    ics.Filename,
		ContentType: ics.ContentType,
		Content:     data,
	}}, nil
}
