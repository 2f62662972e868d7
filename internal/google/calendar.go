package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	credentialsFile = "credentials.json"

	// PrimaryCalendar is the calendar id of the account's own calendar.
	PrimaryCalendar = "primary"
)

var (
	// ErrNoMeetLink is returned when Google created the event without a Meet conference.
	ErrNoMeetLink = errors.New("google did not return a meet link")

	// ErrMissingAccount is returned when no account name is given for a token.
	ErrMissingAccount = errors.New("google account name is required")
)

// MeetClient creates Google Meet conferences through the Calendar API.
type MeetClient struct {
	service    *calendar.Service
	logger     *slog.Logger
	calendarID string
}

// MeetRequest describes the calendar event that carries the conference.
type MeetRequest struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// NewMeetClient creates a client for the named account.
// It loads the OAuth config and the account's token-<accountName>.json file
// in tokenDir, written there by the auth command.
func NewMeetClient(ctx context.Context, logger *slog.Logger, clientID, clientSecret, tokenDir, accountName, calendarID string) (*MeetClient, error) {
	config, err := getOAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	tokenFile, err := TokenFile(tokenDir, accountName)
	if err != nil {
		return nil, err
	}
	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load token for account %s: %w. Please run the 'auth' command first", accountName, err)
	}

	return newMeetClient(ctx, logger, calendarID, option.WithHTTPClient(config.Client(ctx, token)))
}

func newMeetClient(ctx context.Context, logger *slog.Logger, calendarID string, opts ...option.ClientOption) (*MeetClient, error) {
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = PrimaryCalendar
	}
	return &MeetClient{service: service, logger: logger, calendarID: calendarID}, nil
}

// CreateMeetLink inserts an event with a Meet conference and returns the
// conference's join link.
func (c *MeetClient) CreateMeetLink(ctx context.Context, req MeetRequest) (string, error) {
	if req.End.IsZero() || !req.End.After(req.Start) {
		req.End = req.Start.Add(time.Hour)
	}

	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &calendar.EventDateTime{DateTime: req.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: req.End.Format(time.RFC3339)},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}
	for _, a := range req.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: a})
	}

	c.logger.Debug("Creating Google Meet conference", "calendarID", c.calendarID, "summary", req.Summary)
	created, err := c.service.Events.Insert(c.calendarID, event).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}

	link := meetLink(created)
	if link == "" {
		return "", ErrNoMeetLink
	}
	c.logger.Info("Created Google Meet conference", "eventID", created.Id, "link", link)
	return link, nil
}

// meetLink prefers the event's hangout link and falls back to the video entry point.
func meetLink(e *calendar.Event) string {
	if e.HangoutLink != "" {
		return e.HangoutLink
	}
	if e.ConferenceData == nil {
		return ""
	}
	for _, ep := range e.ConferenceData.EntryPoints {
		if ep.EntryPointType == "video" {
			return ep.Uri
		}
	}
	return ""
}

// GetOAuthConfigForAuthFlow is used by the auth command to get the config for the web flow.
func GetOAuthConfigForAuthFlow(clientID, clientSecret string) (*oauth2.Config, error) {
	return getOAuthConfig(clientID, clientSecret)
}

// getOAuthConfig reads credentials and returns an OAuth2 config.
// It prioritizes environment variables over a local credentials.json file.
func getOAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		}, nil
	}

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if _, ok := err.(*fs.PathError); ok {
			return nil, fmt.Errorf("credentials.json not found. Please provide GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars or place credentials.json in the working directory")
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = "urn:ietf:wg:oauth:2.0:oob" // For desktop app flow
	return config, nil
}

// TokenFromWeb is called by the auth flow to retrieve a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(ctx, authCode)
}

// TokenFile is the file in dir holding the named account's token.
func TokenFile(dir, accountName string) (string, error) {
	accountName = strings.TrimSpace(accountName)
	if accountName == "" {
		return "", ErrMissingAccount
	}
	return filepath.Join(dir, "token-"+accountName+".json"), nil
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("unable to create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// GetTokenAccounts lists the accounts that have a token file in dir.
func GetTokenAccounts(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var accounts []string
	for _, file := range files {
		if strings.HasPrefix(file.Name(), "token-") && strings.HasSuffix(file.Name(), ".json") {
			accountName := strings.TrimSuffix(strings.TrimPrefix(file.Name(), "token-"), ".json")
			accounts = append(accounts, accountName)
		}
	}
	return accounts, nil
}

// ResolveAccount returns name if set, otherwise the only account with a token
// in dir.
func ResolveAccount(dir, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	accounts, err := GetTokenAccounts(dir)
	if err != nil {
		return "", fmt.Errorf("could not list google accounts: %w", err)
	}
	switch len(accounts) {
	case 0:
		return "", fmt.Errorf("no google accounts found. Run the 'auth' command first")
	case 1:
		return accounts[0], nil
	default:
		return "", fmt.Errorf("several google accounts found (%s), set GOOGLE_ACCOUNT", strings.Join(accounts, ", "))
	}
}
