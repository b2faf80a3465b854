// Package binge turns a series' episode count and a daily cadence into a
// bounded run of calendar sessions, and later finds and removes exactly those
// sessions again by their naming convention.
package binge

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cinetrack/internal/faults"
	"cinetrack/models"
)

// MetadataService resolves titles and series details.
type MetadataService interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Details(ctx context.Context, id int64, mediaType models.MediaType) (*models.Details, error)
}

// CalendarService is the slice of the event store the planner needs.
type CalendarService interface {
	CreateEvent(ctx context.Context, summary, description string, start time.Time, duration time.Duration) (string, error)
	ListEvents(ctx context.Context, query string, maxResults int64) ([]models.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// TimeParser resolves free-form start time expressions.
type TimeParser interface {
	Parse(expr string) (time.Time, error)
}

// reconcileQueryLimit bounds how many candidate events a cancellation pulls.
const reconcileQueryLimit = 50

// Service plans and reconciles binge schedules.
type Service struct {
	metadata MetadataService
	calendar CalendarService
	parser   TimeParser
}

// NewService creates a binge service.
func NewService(metadata MetadataService, calendar CalendarService, parser TimeParser) *Service {
	return &Service{
		metadata: metadata,
		calendar: calendar,
		parser:   parser,
	}
}

// BuildPlan computes the session sequence for a show. Sessions cover
// consecutive days from start; episode ranges partition [1, totalEpisodes]
// except for days dropped beyond the session cap.
func BuildPlan(showID int64, showName string, totalEpisodes, runtimeMinutes, episodesPerDay int, start time.Time) models.BingePlan {
	daysNeeded := (totalEpisodes + episodesPerDay - 1) / episodesPerDay
	sessionCount := daysNeeded
	if sessionCount > models.MaxBingeSessions {
		sessionCount = models.MaxBingeSessions
	}

	plan := models.BingePlan{
		ShowID:         showID,
		ShowName:       showName,
		TotalEpisodes:  totalEpisodes,
		EpisodeRuntime: runtimeMinutes,
		EpisodesPerDay: episodesPerDay,
		DaysNeeded:     daysNeeded,
		Sessions:       make([]models.BingeSession, 0, sessionCount),
	}

	for day := 0; day < sessionCount; day++ {
		episodeStart := 1 + day*episodesPerDay
		episodeEnd := episodeStart + episodesPerDay - 1
		if episodeEnd > totalEpisodes {
			episodeEnd = totalEpisodes
		}
		plan.Sessions = append(plan.Sessions, models.BingeSession{
			DayIndex:        day + 1,
			EpisodeStart:    episodeStart,
			EpisodeEnd:      episodeEnd,
			ScheduledStart:  start.AddDate(0, 0, day),
			DurationMinutes: runtimeMinutes * episodesPerDay,
		})
	}
	return plan
}

// Schedule resolves a series, computes its binge plan, and creates one
// calendar event per session. Event creation is best-effort: a failed session
// is logged and skipped, later sessions still go out. Returns the plan
// summary text.
func (s *Service) Schedule(ctx context.Context, title string, episodesPerDay int, startExpr string) (string, error) {
	if episodesPerDay <= 0 {
		return "", fmt.Errorf("%w: episodes per day must be at least 1, got %d", faults.ErrInvalidArgument, episodesPerDay)
	}

	results, err := s.metadata.Search(ctx, title)
	if err != nil {
		return "", fmt.Errorf("%w: search %q: %v", faults.ErrUpstream, title, err)
	}
	show := models.PickSeries(results, title)
	if show == nil {
		// Be explicit when the query matched a movie so the caller
		// doesn't think the show simply doesn't exist.
		if best := models.PickBest(results, title); best != nil {
			return "", fmt.Errorf("%w: found %q but it is a movie, not a series", faults.ErrNotFound, best.DisplayName())
		}
		return "", fmt.Errorf("%w: could not find series %q", faults.ErrNotFound, title)
	}

	details, err := s.metadata.Details(ctx, show.ID, models.MediaTypeTV)
	if err != nil {
		return "", fmt.Errorf("%w: details for %q: %v", faults.ErrUpstream, show.Name, err)
	}
	totalEpisodes := details.NumberOfEpisodes
	if totalEpisodes <= 0 {
		return "", fmt.Errorf("%w: episode count unknown for %q", faults.ErrIncompleteMetadata, show.Name)
	}
	runtime := models.DefaultEpisodeRuntime
	if len(details.EpisodeRunTime) > 0 && details.EpisodeRunTime[0] > 0 {
		runtime = details.EpisodeRunTime[0]
	}

	start, err := s.parser.Parse(startExpr)
	if err != nil {
		return "", fmt.Errorf("%w: start time %q", faults.ErrUnparseableTime, startExpr)
	}

	plan := BuildPlan(show.ID, show.Name, totalEpisodes, runtime, episodesPerDay, start)

	created := 0
	for _, session := range plan.Sessions {
		summary := sessionSummary(plan, session)
		description := fmt.Sprintf("Watching episodes %d-%d.\nTotal progress: %d/%d episodes.",
			session.EpisodeStart, session.EpisodeEnd, session.EpisodeEnd, plan.TotalEpisodes)
		duration := time.Duration(session.DurationMinutes) * time.Minute

		if _, err := s.calendar.CreateEvent(ctx, summary, description, session.ScheduledStart, duration); err != nil {
			log.Printf("[binge] failed to create session day %d for %q: %v", session.DayIndex, plan.ShowName, err)
			continue
		}
		created++
	}

	return renderPlanReport(plan, created, start), nil
}

// Cancel deletes every binge session previously created for a show and
// returns a report of how many were removed. If the show cannot be resolved
// upstream, the raw input is used as the name to match; a missed lookup must
// not block cleanup.
func (s *Service) Cancel(ctx context.Context, title string) (string, error) {
	showName := title
	if results, err := s.metadata.Search(ctx, title); err == nil {
		if show := models.PickSeries(results, title); show != nil {
			showName = show.Name
		}
	} else {
		log.Printf("[binge] search failed during cancel, matching on raw input %q: %v", title, err)
	}

	query, matches := CorrelationKey(showName)
	events, err := s.calendar.ListEvents(ctx, query, reconcileQueryLimit)
	if err != nil {
		return "", fmt.Errorf("%w: list binge sessions for %q: %v", faults.ErrUpstream, showName, err)
	}

	// The query is a loose substring search and may over-return; keep only
	// events whose summary actually names the show.
	count := 0
	for _, event := range events {
		if !matches(event.Summary) {
			continue
		}
		if err := s.calendar.DeleteEvent(ctx, event.ID); err != nil {
			log.Printf("[binge] failed to delete session %s: %v", event.ID, err)
			continue
		}
		count++
	}

	if count == 0 {
		return fmt.Sprintf("Could not find any binge sessions for %q.", showName), nil
	}
	return fmt.Sprintf("Cancelled %d binge sessions for %q.", count, showName), nil
}

func sessionSummary(plan models.BingePlan, session models.BingeSession) string {
	return fmt.Sprintf("Binge %s (Day %d/%d)", plan.ShowName, session.DayIndex, plan.DaysNeeded)
}

func renderPlanReport(plan models.BingePlan, created int, start time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Binge plan for %s\n", plan.ShowName)
	fmt.Fprintf(&b, "- Total episodes: %d\n", plan.TotalEpisodes)
	fmt.Fprintf(&b, "- Estimated time: %d days (@ %d eps/day, ~%d min/day)\n",
		plan.DaysNeeded, plan.EpisodesPerDay, plan.EpisodeRuntime*plan.EpisodesPerDay)
	fmt.Fprintf(&b, "- Scheduled: %d of %d sessions starting %s.",
		created, len(plan.Sessions), start.Format("2006-01-02 15:04"))
	if plan.Truncated() {
		fmt.Fprintf(&b, "\n(Note: only the first %d days were scheduled to avoid flooding the calendar.)",
			models.MaxBingeSessions)
	}
	return b.String()
}
