package caldav

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/123/calendars/work/uid-1.ics", EventPath("/123/calendars/work/", "uid-1"))
	assert.Equal(t, "/dav/calendars/ada/uid-1.ics", EventPath("dav/calendars/ada", "uid-1"))
}

func TestBasicAuthTransport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ada", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "meetinvite/1.0", r.Header.Get("User-Agent"))
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Transport: &basicAuthTransport{Username: "ada", Password: "secret", Transport: http.DefaultTransport}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewClient(context.Background(), slog.Default(), Config{Username: "ada"})
	assert.Error(t, err)
}
