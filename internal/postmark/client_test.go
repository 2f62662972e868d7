package postmark_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetinvite/internal/mailer"
	"meetinvite/internal/postmark"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	c, err := postmark.NewClient("", "")
	assert.Nil(t, c)
	assert.ErrorIs(t, err, postmark.ErrMissingServerToken)

	c, err = postmark.NewClient("server-token", "")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestClient_Send(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email", r.URL.Path)
		assert.Equal(t, "server-token", r.Header.Get("X-Postmark-Server-Token"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"bob@example.com","MessageID":"pm-1","ErrorCode":0,"Message":"OK"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := postmark.NewClient("server-token", "", postmark.WithBaseURL(srv.URL))
	require.NoError(t, err)

	id, err := c.Send(context.Background(), mailer.Message{
		From:    "noreply@tymeai.com",
		To:      "bob@example.com",
		Subject: "Meeting Invite",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "pm-1", id)
	assert.Equal(t, "bob@example.com", got["To"])
	assert.Equal(t, "Meeting Invite", got["Subject"])
	assert.Equal(t, "<p>hi</p>", got["HtmlBody"])
	assert.Equal(t, postmark.MessageTag, got["Tag"])
}

func TestClient_SendProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid 'To' address"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := postmark.NewClient("server-token", "", postmark.WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Send(context.Background(), mailer.Message{To: "bob@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, mailer.ErrProviderRequestFailed)
	assert.Contains(t, err.Error(), "Invalid 'To' address")
}
