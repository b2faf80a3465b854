// Package scheduling creates, moves, and bulk-cancels individual watch
// events on the calendar. Range cancellations resolve natural-language date
// expressions into absolute windows and delete everything inside them.
package scheduling

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cinetrack/internal/faults"
	"cinetrack/models"
)

// MetadataService resolves titles against the provider.
type MetadataService interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// CalendarService is the slice of the event store the scheduler needs.
type CalendarService interface {
	CreateEvent(ctx context.Context, summary, description string, start time.Time, duration time.Duration) (string, error)
	UpdateEvent(ctx context.Context, eventID, summary, description string, start time.Time, duration time.Duration) (string, error)
	DeleteEvent(ctx context.Context, eventID string) error
	ListEvents(ctx context.Context, query string, maxResults int64) ([]models.Event, error)
	ListEventsInRange(ctx context.Context, start, end time.Time) ([]models.Event, error)
}

// TimeParser resolves free-form date and time expressions.
type TimeParser interface {
	Parse(expr string) (time.Time, error)
	ParseDate(expr string) (time.Time, error)
}

const (
	defaultWatchDuration = 2 * time.Hour
	rescheduleQueryLimit = 5
)

// Service schedules single watch events and resolves cancellation windows.
type Service struct {
	metadata MetadataService
	calendar CalendarService
	parser   TimeParser
}

// NewService creates a scheduling service.
func NewService(metadata MetadataService, calendar CalendarService, parser TimeParser) *Service {
	return &Service{
		metadata: metadata,
		calendar: calendar,
		parser:   parser,
	}
}

// Schedule resolves a title and creates a single watch event at the given
// time expression.
func (s *Service) Schedule(ctx context.Context, title, timeExpr string) (string, error) {
	results, err := s.metadata.Search(ctx, title)
	if err != nil {
		return "", fmt.Errorf("%w: search %q: %v", faults.ErrUpstream, title, err)
	}
	item := models.PickBest(results, title)
	if item == nil {
		return "", fmt.Errorf("%w: could not find %q", faults.ErrNotFound, title)
	}

	start, err := s.parser.Parse(timeExpr)
	if err != nil {
		return "", fmt.Errorf("%w: time %q", faults.ErrUnparseableTime, timeExpr)
	}

	name := item.DisplayName()
	description := fmt.Sprintf("Watching %s (%s).\nOverview: %s", name, item.MediaType, item.Overview)
	link, err := s.calendar.CreateEvent(ctx, "Watch "+name, description, start, defaultWatchDuration)
	if err != nil {
		return "", fmt.Errorf("%w: create event for %q: %v", faults.ErrUpstream, name, err)
	}

	return fmt.Sprintf("Scheduled %q for %s. Event link: %s", name, start.Format("2006-01-02 15:04"), link), nil
}

// Reschedule moves the first upcoming event matching the title to a new
// time, keeping its summary and description.
func (s *Service) Reschedule(ctx context.Context, title, newTimeExpr string) (string, error) {
	events, err := s.calendar.ListEvents(ctx, title, rescheduleQueryLimit)
	if err != nil {
		return "", fmt.Errorf("%w: list events for %q: %v", faults.ErrUpstream, title, err)
	}
	if len(events) == 0 {
		return "", fmt.Errorf("%w: no upcoming calendar events for %q", faults.ErrNotFound, title)
	}
	event := events[0]

	start, err := s.parser.Parse(newTimeExpr)
	if err != nil {
		return "", fmt.Errorf("%w: time %q", faults.ErrUnparseableTime, newTimeExpr)
	}

	duration := defaultWatchDuration
	if event.End.After(event.Start) {
		duration = event.End.Sub(event.Start)
	}
	link, err := s.calendar.UpdateEvent(ctx, event.ID, event.Summary, event.Description, start, duration)
	if err != nil {
		return "", fmt.Errorf("%w: update event %q: %v", faults.ErrUpstream, event.Summary, err)
	}

	return fmt.Sprintf("Rescheduled %q to %s. Link: %s", event.Summary, start.Format("2006-01-02 15:04"), link), nil
}

// CancelTitles cancels the first upcoming event for each comma-separated
// title. Every title gets a status line in the report; one miss never aborts
// the rest of the batch.
func (s *Service) CancelTitles(ctx context.Context, titles string) (string, error) {
	var lines []string
	for _, title := range strings.Split(titles, ",") {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		events, err := s.calendar.ListEvents(ctx, title, rescheduleQueryLimit)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%q: lookup failed: %v", title, err))
			continue
		}
		if len(events) == 0 {
			lines = append(lines, fmt.Sprintf("%q: no upcoming event found.", title))
			continue
		}

		event := events[0]
		if err := s.calendar.DeleteEvent(ctx, event.ID); err != nil {
			lines = append(lines, fmt.Sprintf("%q: delete failed: %v", title, err))
			continue
		}
		lines = append(lines, fmt.Sprintf("Cancelled %q.", event.Summary))
	}

	if len(lines) == 0 {
		return "", fmt.Errorf("%w: no titles given", faults.ErrInvalidArgument)
	}
	return strings.Join(lines, "\n"), nil
}

// CancelOnDate deletes every event on the calendar day the expression
// resolves to.
func (s *Service) CancelOnDate(ctx context.Context, dateExpr string) (string, error) {
	day, err := s.parser.ParseDate(dateExpr)
	if err != nil {
		return "", fmt.Errorf("%w: date %q", faults.ErrUnparseableTime, dateExpr)
	}

	window := DayWindow(day)
	count, titles, err := s.clearWindow(ctx, window)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return fmt.Sprintf("No events found on %s.", window.Start.Format("2006-01-02")), nil
	}
	return fmt.Sprintf("Cancelled %d events on %s:\n- %s",
		count, window.Start.Format("2006-01-02"), strings.Join(titles, "\n- ")), nil
}

// CancelInRange deletes every event between two dates inclusive. An end date
// before the start date is rejected rather than silently swapped.
func (s *Service) CancelInRange(ctx context.Context, startExpr, endExpr string) (string, error) {
	start, err := s.parser.ParseDate(startExpr)
	if err != nil {
		return "", fmt.Errorf("%w: date %q", faults.ErrUnparseableTime, startExpr)
	}
	end, err := s.parser.ParseDate(endExpr)
	if err != nil {
		return "", fmt.Errorf("%w: date %q", faults.ErrUnparseableTime, endExpr)
	}
	if floorDay(end).Before(floorDay(start)) {
		return "", fmt.Errorf("%w: end date %s is before start date %s",
			faults.ErrInvalidArgument, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	window := RangeWindow(start, end)
	count, titles, err := s.clearWindow(ctx, window)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return fmt.Sprintf("No events found between %s and %s.",
			window.Start.Format("2006-01-02"), window.End.Format("2006-01-02")), nil
	}
	return fmt.Sprintf("Cancelled %d events from %s to %s:\n- %s",
		count, window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"),
		strings.Join(titles, "\n- ")), nil
}

// CancelFrom deletes every event from the given date onward, bounded to a
// 365-day horizon.
func (s *Service) CancelFrom(ctx context.Context, startExpr string) (string, error) {
	start, err := s.parser.ParseDate(startExpr)
	if err != nil {
		return "", fmt.Errorf("%w: date %q", faults.ErrUnparseableTime, startExpr)
	}

	window := OnwardWindow(start)
	count, titles, err := s.clearWindow(ctx, window)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return fmt.Sprintf("No events found starting from %s.", window.Start.Format("2006-01-02")), nil
	}
	return fmt.Sprintf("Cancelled %d events starting from %s:\n- %s",
		count, window.Start.Format("2006-01-02"), strings.Join(titles, "\n- ")), nil
}

// clearWindow deletes all events inside a window. Every event in range is in
// scope; there is no name filtering here. Individual delete failures are
// logged and skipped so the rest of the window still gets cleared.
func (s *Service) clearWindow(ctx context.Context, window Window) (int, []string, error) {
	events, err := s.calendar.ListEventsInRange(ctx, window.Start, window.End)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: list events in window: %v", faults.ErrUpstream, err)
	}

	count := 0
	var titles []string
	for _, event := range events {
		if err := s.calendar.DeleteEvent(ctx, event.ID); err != nil {
			log.Printf("[scheduling] failed to delete event %s (%q): %v", event.ID, event.Summary, err)
			continue
		}
		count++
		title := event.Summary
		if title == "" {
			title = "Unknown"
		}
		titles = append(titles, title)
	}
	return count, titles, nil
}
