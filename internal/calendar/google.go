// Package calendar is the Google Calendar collaborator: it owns event
// persistence, the OAuth session lifecycle and today-listing.
package calendar

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/Pomiro/assistant/internal/assistant"
	"github.com/Pomiro/assistant/internal/timeparse"
)

// instantLayout serializes instants without a UTC offset; the timezone is
// carried separately as a label.
const instantLayout = "2006-01-02T15:04:05"

// Config holds the calendar client configuration.
type Config struct {
	CredentialsFile string
	TokenFile       string
	CalendarID      string
}

// Service is the Google Calendar client. The underlying session is lazily
// initialized on first use and guarded by a mutex so concurrent handlers
// never race the token refresh.
type Service struct {
	config Config
	logger *slog.Logger

	mu  sync.Mutex
	svc *gcal.Service
}

// NewService creates a calendar service. No network traffic happens until the
// first call.
func NewService(cfg Config, logger *slog.Logger) *Service {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	return &Service{config: cfg, logger: logger}
}

// session returns the authenticated calendar session, creating it on first use.
func (s *Service) session(ctx context.Context) (*gcal.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.svc != nil {
		return s.svc, nil
	}

	config, err := oauthConfig(s.config.CredentialsFile)
	if err != nil {
		return nil, err
	}

	token, err := tokenFromFile(s.config.TokenFile)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load token from %s; run the 'auth' command first", s.config.TokenFile)
	}

	// The token source refreshes expired tokens transparently.
	client := config.Client(context.Background(), token)
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, errors.Wrap(err, "create calendar service")
	}

	s.svc = svc
	s.logger.Info("calendar session initialized", "calendar_id", s.config.CalendarID)
	return svc, nil
}

// CreateEvent inserts the event and returns its reference link.
func (s *Service) CreateEvent(ctx context.Context, event *assistant.CalendarEvent) (string, error) {
	svc, err := s.session(ctx)
	if err != nil {
		return "", err
	}

	item := toGoogleEvent(event)
	s.logger.Info("final event payload",
		"summary", item.Summary,
		"start", item.Start.DateTime,
		"end", item.End.DateTime)

	created, err := svc.Events.Insert(s.config.CalendarID, item).Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, "insert event")
	}

	return created.HtmlLink, nil
}

// ListToday returns the current day's events, local midnight to end of day in
// the home timezone, ordered by start time.
func (s *Service) ListToday(ctx context.Context) ([]assistant.CalendarEntry, error) {
	svc, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(timeparse.HomeZone())
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, timeparse.HomeZone())
	dayEnd := dayStart.AddDate(0, 0, 1)

	result, err := svc.Events.List(s.config.CalendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(dayStart.Format(time.RFC3339)).
		TimeMax(dayEnd.Format(time.RFC3339)).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "list events")
	}

	return toEntries(result.Items), nil
}

// toGoogleEvent converts the pipeline's event into the API representation.
// The description is set only when the builder produced one.
func toGoogleEvent(event *assistant.CalendarEvent) *gcal.Event {
	item := &gcal.Event{
		Summary: event.Summary,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.Format(instantLayout),
			TimeZone: event.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.Format(instantLayout),
			TimeZone: event.TimeZone,
		},
	}
	if event.Description != "" {
		item.Description = event.Description
	}
	return item
}

// toEntries converts listed API events into entries, keeping API order.
// All-day events carry only a date and render at midnight.
func toEntries(items []*gcal.Event) []assistant.CalendarEntry {
	entries := make([]assistant.CalendarEntry, 0, len(items))
	for _, item := range items {
		if item.Start == nil {
			continue
		}

		var start time.Time
		if item.Start.DateTime != "" {
			t, err := time.Parse(time.RFC3339, item.Start.DateTime)
			if err != nil {
				continue
			}
			start = t.In(timeparse.HomeZone())
		} else if item.Start.Date != "" {
			t, err := time.ParseInLocation("2006-01-02", item.Start.Date, timeparse.HomeZone())
			if err != nil {
				continue
			}
			start = t
		} else {
			continue
		}

		entries = append(entries, assistant.CalendarEntry{
			Start:   start,
			Summary: item.Summary,
		})
	}
	return entries
}

// oauthConfig reads the OAuth client credentials file.
func oauthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read client secret file %s", credentialsFile)
	}

	config, err := google.ConfigFromJSON(b, gcal.CalendarScope)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse client secret file")
	}
	config.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	return config, nil
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	return tok, json.NewDecoder(f).Decode(tok)
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "unable to create token file")
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// OAuthConfigForAuthFlow is used by the auth command to run the manual
// authorization-code exchange.
func OAuthConfigForAuthFlow(credentialsFile string) (*oauth2.Config, error) {
	return oauthConfig(credentialsFile)
}

// ExchangeAuthCode trades the pasted authorization code for a token.
func ExchangeAuthCode(ctx context.Context, config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(ctx, authCode)
}
