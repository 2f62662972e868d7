package invite_test

import (
	"context"
	"fmt"
	"sync"

	"meetinvite/internal/invite"
	"meetinvite/internal/mailer"
	"meetinvite/internal/models"
)

// fakeProvider records every message and fails the sends listed in failOn
// (1-based call numbers).
type fakeProvider struct {
	mu      sync.Mutex
	keys    []string
	sent    []mailer.Message
	failOn  map[int]error
	openErr error
}

func (p *fakeProvider) Sender(apiKey string) (mailer.Sender, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.keys = append(p.keys, apiKey)
	return p, nil
}

func (p *fakeProvider) Send(_ context.Context, msg mailer.Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	n := len(p.sent)
	if err, ok := p.failOn[n]; ok {
		return "", err
	}
	return fmt.Sprintf("msg-%d", n), nil
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type recordingNotifier struct {
	notes []invite.Notification
}

func (r *recordingNotifier) Notify(n invite.Notification) {
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) last() invite.Notification {
	if len(r.notes) == 0 {
		return invite.Notification{}
	}
	return r.notes[len(r.notes)-1]
}

func validDraft() models.Draft {
	return models.Draft{
		SenderName:      "Ada Lovelace",
		SenderEmail:     "ada@example.com",
		RecipientEmails: "bob@example.com, eve@example.com",
		MeetingLink:     "https://meet.google.com/abcdefghijklm",
		Description:     "Weekly sync",
	}
}
