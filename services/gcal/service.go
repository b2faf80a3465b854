// Package gcal wraps the Google Calendar API as the event store for watch
// plans. The service holds no state about created events; correlation is
// always by summary text.
package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"cinetrack/models"
)

// DefaultEventDuration applies when a caller does not supply a duration.
const DefaultEventDuration = 120 * time.Minute

// Service is the calendar gateway bound to one calendar.
type Service struct {
	events     eventsAPI
	calendarID string
	now        func() time.Time
}

// eventsAPI is the slice of the Google client the service uses; tests swap it
// for a fake.
type eventsAPI interface {
	Insert(ctx context.Context, ev *calendar.Event) (*calendar.Event, error)
	Update(ctx context.Context, id string, ev *calendar.Event) (*calendar.Event, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query string, timeMin time.Time, maxResults int64) ([]*calendar.Event, error)
	ListRange(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error)
}

// NewService authenticates against Google Calendar with the OAuth client in
// credentialsPath and the cached user token in tokenPath. The token must have
// been obtained out-of-band (one-time consent flow); a missing token is a
// configuration error, not something a headless service can recover from.
func NewService(ctx context.Context, credentialsPath, tokenPath string) (*Service, error) {
	creds, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read calendar credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(creds, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse calendar credentials: %w", err)
	}
	token, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read calendar token (run the consent flow first): %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar client: %w", err)
	}
	log.Printf("[gcal] calendar service ready")
	return &Service{
		events:     &googleEvents{srv: srv, calendarID: "primary"},
		calendarID: "primary",
		now:        time.Now,
	}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return token, nil
}

// CreateEvent creates one event and returns its browser link.
func (s *Service) CreateEvent(ctx context.Context, summary, description string, start time.Time, duration time.Duration) (string, error) {
	if duration <= 0 {
		duration = DefaultEventDuration
	}
	ev := &calendar.Event{
		Summary:     summary,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: start.Add(duration).Format(time.RFC3339)},
	}

	var created *calendar.Event
	err := s.withRetry(ctx, "insert", func() error {
		var err error
		created, err = s.events.Insert(ctx, ev)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create event %q: %w", summary, err)
	}
	return created.HtmlLink, nil
}

// UpdateEvent rewrites an existing event and returns its browser link.
func (s *Service) UpdateEvent(ctx context.Context, eventID, summary, description string, start time.Time, duration time.Duration) (string, error) {
	if duration <= 0 {
		duration = DefaultEventDuration
	}
	ev := &calendar.Event{
		Summary:     summary,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: start.Add(duration).Format(time.RFC3339)},
	}

	var updated *calendar.Event
	err := s.withRetry(ctx, "update", func() error {
		var err error
		updated, err = s.events.Update(ctx, eventID, ev)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("update event %s: %w", eventID, err)
	}
	return updated.HtmlLink, nil
}

// DeleteEvent removes one event.
func (s *Service) DeleteEvent(ctx context.Context, eventID string) error {
	err := s.withRetry(ctx, "delete", func() error {
		return s.events.Delete(ctx, eventID)
	})
	if err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}

// ListEvents returns upcoming events matching a free-text query, soonest first.
func (s *Service) ListEvents(ctx context.Context, query string, maxResults int64) ([]models.Event, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	items, err := s.events.List(ctx, query, s.now().UTC(), maxResults)
	if err != nil {
		return nil, fmt.Errorf("list events %q: %w", query, err)
	}
	return convertEvents(items), nil
}

// ListEventsInRange returns all events overlapping [start, end].
func (s *Service) ListEventsInRange(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	items, err := s.events.ListRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list events in range: %w", err)
	}
	return convertEvents(items), nil
}

// withRetry applies the gateway retry policy: bounded backoff on 5xx and
// transport errors, immediate failure otherwise.
func (s *Service) withRetry(ctx context.Context, op string, fn func() error) error {
	return retry.Do(
		func() error {
			err := fn()
			if err == nil {
				return nil
			}
			if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code < http.StatusInternalServerError {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[gcal] %s attempt %d failed: %v", op, n+1, err)
		}),
	)
}

func convertEvents(items []*calendar.Event) []models.Event {
	events := make([]models.Event, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		events = append(events, models.Event{
			ID:          item.Id,
			Summary:     item.Summary,
			Description: item.Description,
			Start:       parseEventTime(item.Start),
			End:         parseEventTime(item.End),
			Link:        item.HtmlLink,
		})
	}
	return events
}

// parseEventTime handles both timed events (DateTime) and all-day events (Date).
func parseEventTime(edt *calendar.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// googleEvents adapts the generated Google client to eventsAPI.
type googleEvents struct {
	srv        *calendar.Service
	calendarID string
}

func (g *googleEvents) Insert(ctx context.Context, ev *calendar.Event) (*calendar.Event, error) {
	return g.srv.Events.Insert(g.calendarID, ev).Context(ctx).Do()
}

func (g *googleEvents) Update(ctx context.Context, id string, ev *calendar.Event) (*calendar.Event, error) {
	return g.srv.Events.Update(g.calendarID, id, ev).Context(ctx).Do()
}

func (g *googleEvents) Delete(ctx context.Context, id string) error {
	return g.srv.Events.Delete(g.calendarID, id).Context(ctx).Do()
}

func (g *googleEvents) List(ctx context.Context, query string, timeMin time.Time, maxResults int64) ([]*calendar.Event, error) {
	res, err := g.srv.Events.List(g.calendarID).
		Q(query).
		TimeMin(timeMin.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (g *googleEvents) ListRange(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	res, err := g.srv.Events.List(g.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}
