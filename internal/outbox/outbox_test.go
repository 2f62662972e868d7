package outbox_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetinvite/internal/mailer"
	"meetinvite/internal/outbox"
)

func TestOutbox_Send(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	id, err := outbox.New(dir).Send(context.Background(), mailer.Message{
		From:    "noreply@tymeai.com",
		To:      "Bob@Example.com",
		Subject: "Meeting Invite",
		HTML:    "<p>hi</p>",
		Attachments: []mailer.Attachment{{
			Filename: "invite.ics",
			Content:  []byte("BEGIN:VCALENDAR"),
		}},
	})
	require.NoError(t, err)
	assert.Contains(t, id, "bob@example.com")

	html, err := os.ReadFile(filepath.Join(dir, id+".html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(html))

	ics, err := os.ReadFile(filepath.Join(dir, id+"_invite.ics"))
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(ics))

	raw, err := os.ReadFile(filepath.Join(dir, id+".json"))
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "Bob@Example.com", meta["to"])
	assert.Equal(t, "Meeting Invite", meta["subject"])
	assert.NotEmpty(t, meta["timestamp"])
}

func TestOutbox_SendUnwritableDir(t *testing.T) {
	t.Parallel()

	_, err := outbox.New("/dev/null/cannot-create-here").Send(context.Background(), mailer.Message{To: "a@b.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, mailer.ErrProviderRequestFailed)
}

func TestOutbox_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	_, err := outbox.Provider(dir).Sender("")
	require.NoError(t, err)

	_, err = outbox.New(dir).Send(ctx, mailer.Message{To: "a@b.com"})
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
