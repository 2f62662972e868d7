package invite

import (
	"math/rand/v2"
	"strings"
)

const (
	// MeetBaseURL prefixes every generated meeting link.
	MeetBaseURL = "https://meet.google.com/"

	linkTokenLength = 13
	linkAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateLink returns a placeholder Google Meet URL with a random token.
// The token only has to look plausible; it is not a real meeting and is not
// suitable as a secret.
func GenerateLink() string {
	var b strings.Builder
	b.Grow(len(MeetBaseURL) + linkTokenLength)
	b.WriteString(MeetBaseURL)
	for range linkTokenLength {
		b.WriteByte(linkAlphabet[rand.IntN(len(linkAlphabet))])
	}
	return b.String()
}
