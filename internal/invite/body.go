package invite

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// DateLayout renders dates in the long en-US form, e.g. "Monday, January 2, 2006".
const DateLayout = "Monday, January 2, 2006"

// DefaultFooter is printed in small type below the invitation.
const DefaultFooter = "Sent via Tyme!"

var descriptionPolicy = bluemonday.UGCPolicy()

var bodyTemplate = template.Must(template.New("invite").Parse(`
<div style="font-family: sans-serif;">
  <p>Hello,</p>
  <p>You have been invited to a meeting by {{.SenderName}} ({{.SenderEmail}}).</p>
  <p><strong>Meeting Details:</strong></p>
  <p>Date: {{.Date}}</p>
  <p>Time: {{.MeetingTime}}</p>
  <p>Meeting Link: <a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>
  <p><strong>Message:</strong></p>
  <p>{{.Description}}</p>
  <hr/>
  <p style="color: #666; font-size: 12px;">{{.Footer}}</p>
</div>
`))

// Body is the data rendered into an invitation email.
type Body struct {
	SenderName  string
	SenderEmail string
	Date        string
	MeetingTime string
	MeetingLink string
	Description string
	Footer      string
}

// FormatDate formats t with DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// RenderBody builds the HTML body of an invitation. The description is
// sanitised and its newlines become <br/> tags; every other field is escaped.
func RenderBody(b Body) (string, error) {
	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, struct {
		Body
		Description template.HTML
	}{
		Body:        b,
		Description: template.HTML(descriptionHTML(b.Description)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render invitation body: %w", err)
	}
	return buf.String(), nil
}

func descriptionHTML(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(descriptionPolicy.Sanitize(s), "\n", "<br/>")
}
