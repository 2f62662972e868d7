package invite_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetinvite/internal/invite"
)

func TestFormatDate(t *testing.T) {
	t.Parallel()

	d := time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "Monday, October 19, 2026", invite.FormatDate(d))
}

func TestRenderBody(t *testing.T) {
	t.Parallel()

	html, err := invite.RenderBody(invite.Body{
		SenderName:  "Ada Lovelace",
		SenderEmail: "ada@example.com",
		Date:        "Monday, October 19, 2026",
		MeetingTime: "10:00 AM - 11:00 AM",
		MeetingLink: "https://meet.google.com/abc",
		Description: "Agenda:\nfirst item\nsecond item",
		Footer:      invite.DefaultFooter,
	})
	require.NoError(t, err)

	assert.Contains(t, html, "You have been invited to a meeting by Ada Lovelace (ada@example.com).")
	assert.Contains(t, html, "<p>Date: Monday, October 19, 2026</p>")
	assert.Contains(t, html, "<p>Time: 10:00 AM - 11:00 AM</p>")
	assert.Contains(t, html, `<a href="https://meet.google.com/abc">https://meet.google.com/abc</a>`)
	assert.Contains(t, html, "Agenda:<br/>first item<br/>second item")
	assert.Contains(t, html, "Sent via Tyme!")
}

func TestRenderBody_EscapesInput(t *testing.T) {
	t.Parallel()

	html, err := invite.RenderBody(invite.Body{
		SenderName:  "<b>Mallory</b>",
		MeetingLink: "javascript:alert(1)",
		Description: "<script>alert(1)</script>hello<br>",
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "<b>Mallory</b>")
	assert.Contains(t, html, "&lt;b&gt;Mallory&lt;/b&gt;")
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, `href="javascript:`)
	assert.Contains(t, html, "hello")
}
