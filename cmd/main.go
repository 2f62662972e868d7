package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"

	"meetinvite/internal/caldav"
	"meetinvite/internal/config"
	"meetinvite/internal/credential"
	"meetinvite/internal/google"
	"meetinvite/internal/invite"
	"meetinvite/internal/mailer"
	"meetinvite/internal/outbox"
	"meetinvite/internal/postmark"
	"meetinvite/internal/resend"
)

func main() {
	app := &cli.App{
		Name:  "meetinvite",
		Usage: "Send meeting invitations by email.",
		Commands: []*cli.Command{
			authCommand(),
			linkCommand(),
			sendCommand(),
			keyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account so real Meet links can be created.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel)
			logger.Info("Starting Google authentication flow.")

			oauthCfg, err := google.GetOAuthConfigForAuthFlow(cfg.Google.ClientID, cfg.Google.ClientSecret)
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Print("Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(c.Context, oauthCfg, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			fmt.Print("Enter a name for this account (e.g., 'personal', 'work'): ")
			accountName, _ := reader.ReadString('\n')
			tokenFile, err := google.TokenFile(cfg.Google.TokenDir, accountName)
			if err != nil {
				return err
			}

			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func meetingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.TimestampFlag{Name: "start", Layout: time.RFC3339, Usage: "Meeting start (RFC 3339). Adds a calendar invitation."},
		&cli.DurationFlag{Name: "duration", Value: time.Hour, Usage: "Meeting length."},
	}
}

func linkCommand() *cli.Command {
	return &cli.Command{
		Name:  "link",
		Usage: "Print a meeting link.",
		Flags: append(meetingFlags(),
			&cli.BoolFlag{Name: "google", Usage: "Create a real Google Meet conference instead of a placeholder."},
			&cli.StringFlag{Name: "summary", Value: invite.DefaultSubject, Usage: "Title of the Google Calendar event."},
		),
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel)

			if !c.Bool("google") {
				fmt.Println(invite.GenerateLink())
				return nil
			}

			link, err := googleMeetLink(c, cfg, logger, c.String("summary"), "", nil)
			if err != nil {
				return err
			}
			fmt.Println(link)
			return nil
		},
	}
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Send a meeting invitation to one or more recipients.",
		Flags: append(meetingFlags(),
			&cli.StringFlag{Name: "name", Usage: "Your name.", Required: true},
			&cli.StringFlag{Name: "email", Usage: "Your email address.", Required: true},
			&cli.StringFlag{Name: "to", Usage: "Recipient emails, comma separated.", Required: true},
			&cli.StringFlag{Name: "description", Usage: "Meeting agenda and details."},
			&cli.PathFlag{Name: "description-file", Usage: "Read the description from a file."},
			&cli.StringFlag{Name: "link", Usage: "Meeting link."},
			&cli.BoolFlag{Name: "generate-link", Usage: "Generate a placeholder Google Meet link."},
			&cli.BoolFlag{Name: "google-link", Usage: "Create a real Google Meet link (requires 'auth')."},
			&cli.StringFlag{Name: "time", Usage: "Meeting time as shown in the invitation, e.g. '10:00 AM - 11:00 AM'."},
			&cli.StringFlag{Name: "date", Usage: "Meeting date as shown to you."},
			&cli.StringFlag{Name: "api-key", Usage: "Provider API key for this send only."},
			&cli.StringFlag{Name: "policy", Value: "stop", Usage: "On a failed recipient: 'stop' or 'continue'."},
			&cli.BoolFlag{Name: "dry-run", Usage: "Write messages to OUTBOX_DIR instead of sending them."},
			&cli.BoolFlag{Name: "publish", Usage: "Also add the meeting to the configured CalDAV calendar."},
		),
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel)

			if c.Bool("dry-run") {
				logger.Info("Performing a dry run. Messages are written to the outbox.", "dir", cfg.OutboxDir)
				cfg.Provider = config.ProviderOutbox
			}

			policy, err := invite.ParsePolicy(c.String("policy"))
			if err != nil {
				return err
			}

			store, err := cfg.Credentials()
			if err != nil {
				return err
			}

			dispatcher := invite.NewDispatcher(newProvider(cfg, logger),
				invite.WithLogger(logger),
				invite.WithFrom(cfg.From),
				invite.WithSubject(cfg.Subject),
				invite.WithPolicy(policy),
			)
			form := invite.NewForm(store, dispatcher, invite.LogNotifier{Logger: logger}, logger)
			if !form.HasCredential() && !c.Bool("dry-run") && c.String("api-key") == "" {
				logger.Warn("No API key found. Run 'meetinvite key set' or set RESEND_API_KEY (POSTMARK_SERVER_TOKEN for Postmark).")
			}

			description := c.String("description")
			if path := c.Path("description-file"); path != "" {
				b, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read description file: %w", err)
				}
				description = string(b)
			}

			form.Draft.SenderName = c.String("name")
			form.Draft.SenderEmail = c.String("email")
			form.Draft.RecipientEmails = c.String("to")
			form.Draft.Description = description
			form.Draft.MeetingLink = c.String("link")
			form.MeetingTime = c.String("time")
			form.Date = c.String("date")
			form.Duration = c.Duration("duration")
			if start := c.Timestamp("start"); start != nil {
				form.Start = *start
			}
			if key := c.String("api-key"); key != "" {
				form.SetAPIKey(key)
			}
			if c.Bool("dry-run") {
				form.SetAPIKey("dry-run")
			}

			switch {
			case c.Bool("google-link"):
				link, err := googleMeetLink(c, cfg, logger, cfg.Subject, description, invite.Recipients(form.Draft.RecipientEmails))
				if err != nil {
					return err
				}
				form.Draft.MeetingLink = link
			case c.Bool("generate-link"):
				form.GenerateLink()
			}
			if err := form.WriteSchedule(os.Stdout); err != nil {
				return err
			}
			if err := form.CopyLink(os.Stdout); err != nil {
				logger.Debug("No meeting link to print", "error", err)
			}

			out := form.Submit(c.Context)
			for _, r := range out.Results {
				logger.Info("Recipient", "email", r.Recipient, "status", r.Status, "messageID", r.MessageID)
			}
			if !out.OK() {
				return fmt.Errorf("invitation not sent: %w", out.Err)
			}

			if c.Bool("publish") {
				return publish(c.Context, cfg, logger, out)
			}
			return nil
		},
	}
}

func keyCommand() *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "Manage the stored email provider API key (the Postmark server token when EMAIL_PROVIDER=postmark).",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Store the API key.",
				ArgsUsage: "<api-key>",
				Action: func(c *cli.Context) error {
					key := strings.TrimSpace(c.Args().First())
					if key == "" {
						return fmt.Errorf("an API key argument is required")
					}
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					path, err := cfg.CredentialPath()
					if err != nil {
						return err
					}
					if err := credential.NewFileStore(path).Set(credential.APIKeyName, key); err != nil {
						return fmt.Errorf("failed to store API key: %w", err)
					}
					setupLogger(cfg.LogLevel).Info("Stored API key.", "file", path)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Show the masked API key that would be used.",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					store, err := cfg.Credentials()
					if err != nil {
						return err
					}
					key, err := credential.APIKey(store)
					if err != nil {
						return err
					}
					if key == "" {
						fmt.Println("no API key stored")
						return nil
					}
					fmt.Println(credential.Mask(key))
					return nil
				},
			},
		},
	}
}

func newProvider(cfg *config.Config, logger *slog.Logger) mailer.Provider {
	switch cfg.Provider {
	case config.ProviderPostmark:
		return postmark.Provider(cfg.PostmarkAccountToken)
	case config.ProviderOutbox:
		return outbox.Provider(cfg.OutboxDir)
	default:
		return resend.Provider(
			resend.WithBaseURL(cfg.ResendBaseURL),
			resend.WithTimeout(cfg.HTTPTimeout),
			resend.WithLogger(logger),
		)
	}
}

func googleMeetLink(c *cli.Context, cfg *config.Config, logger *slog.Logger, summary, description string, attendees []string) (string, error) {
	account, err := google.ResolveAccount(cfg.Google.TokenDir, cfg.Google.Account)
	if err != nil {
		return "", err
	}
	client, err := google.NewMeetClient(c.Context, logger, cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.TokenDir, account, cfg.Google.CalendarID)
	if err != nil {
		return "", fmt.Errorf("failed to create google client for account %s: %w", account, err)
	}

	start := time.Now().Add(time.Hour).Truncate(time.Hour)
	if ts := c.Timestamp("start"); ts != nil {
		start = *ts
	}
	return client.CreateMeetLink(c.Context, google.MeetRequest{
		Summary:     summary,
		Description: description,
		Start:       start,
		End:         start.Add(c.Duration("duration")),
		Attendees:   attendees,
	})
}

func publish(ctx context.Context, cfg *config.Config, logger *slog.Logger, out *invite.Outcome) error {
	if out.Event == nil {
		return fmt.Errorf("--publish needs --start so the meeting has a time")
	}
	if !cfg.CalDAVEnabled() {
		return fmt.Errorf("CALDAV_USERNAME, CALDAV_PASSWORD and CALDAV_CALENDAR must be set to publish")
	}
	client, err := caldav.NewClient(ctx, logger, caldav.Config{
		Endpoint: cfg.CalDAV.Endpoint,
		Username: cfg.CalDAV.Username,
		Password: cfg.CalDAV.Password,
		Calendar: cfg.CalDAV.Calendar,
	})
	if err != nil {
		return fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client.Publish(ctx, out.Event)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
