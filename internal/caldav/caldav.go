// Package caldav publishes invitation events to a CalDAV calendar.
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"meetinvite/internal/ics"
	"meetinvite/internal/models"
)

// ICloudEndpoint is the default CalDAV endpoint.
const ICloudEndpoint = "https://caldav.icloud.com/"

// Config locates the calendar to publish into.
type Config struct {
	Endpoint string
	Username string
	Password string
	Calendar string // display name of the calendar
}

// basicAuthTransport handles adding Basic Auth and custom headers to requests.
type basicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "meetinvite/1.0")
	return t.Transport.RoundTrip(req)
}

// Client publishes events into one calendar.
type Client struct {
	caldavClient *caldav.Client
	webdavClient *webdav.Client
	logger       *slog.Logger
	calendarPath string
}

// NewClient connects to the server and resolves the calendar by name.
func NewClient(ctx context.Context, logger *slog.Logger, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = ICloudEndpoint
	}
	if cfg.Username == "" || cfg.Password == "" || cfg.Calendar == "" {
		return nil, fmt.Errorf("caldav username, password and calendar name are required")
	}

	httpClient := &http.Client{Transport: &basicAuthTransport{
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: http.DefaultTransport,
	}}

	caldavClient, err := caldav.NewClient(httpClient, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	webdavClient, err := webdav.NewClient(httpClient, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	c := &Client{
		caldavClient: caldavClient,
		webdavClient: webdavClient,
		logger:       logger,
	}

	logger.Info("Finding CalDAV calendar", "calendarName", cfg.Calendar)
	calendarPath, err := c.findCalendar(ctx, cfg.Calendar)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", cfg.Calendar, err)
	}
	c.calendarPath = calendarPath
	logger.Info("Found CalDAV calendar", "path", calendarPath)

	return c, nil
}

// Publish creates the event in the calendar.
func (c *Client) Publish(ctx context.Context, event *models.Event) error {
	c.logger.Debug("Publishing event", "title", event.Title, "uid", event.UID)

	eventPath := EventPath(c.calendarPath, event.UID)
	writer, err := c.webdavClient.Create(ctx, eventPath)
	if err != nil {
		return fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}
	if err := ical.NewEncoder(writer).Encode(ics.Calendar(event)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to encode event to iCal format: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to upload event: %w", err)
	}

	c.logger.Info("Published event", "title", event.Title)
	return nil
}

// EventPath returns the server path of the event's .ics resource. Calendar
// paths come back from discovery as absolute paths, which the webdav client
// uses as-is.
func EventPath(calendarPath, uid string) string {
	return path.Join("/", calendarPath, uid+".ics")
}

func (c *Client) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("no calendar found with name '%s'", name)
}
