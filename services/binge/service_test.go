package binge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetrack/internal/faults"
	"cinetrack/models"
)

type fakeMetadata struct {
	results    []models.SearchResult
	details    *models.Details
	searchErr  error
	detailsErr error
}

func (f *fakeMetadata) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeMetadata) Details(ctx context.Context, id int64, mediaType models.MediaType) (*models.Details, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return f.details, nil
}

type createdEvent struct {
	summary     string
	description string
	start       time.Time
	duration    time.Duration
}

type fakeCalendar struct {
	created    []createdEvent
	failOnCall map[int]error // 1-based create call index
	listResult []models.Event
	listErr    error
	lastQuery  string
	lastMax    int64
	deleted    []string
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, summary, description string, start time.Time, duration time.Duration) (string, error) {
	call := len(f.created) + 1
	if err, ok := f.failOnCall[call]; ok {
		// Count the call so later indices still line up with day order.
		f.created = append(f.created, createdEvent{summary: "FAILED: " + summary})
		return "", err
	}
	f.created = append(f.created, createdEvent{summary: summary, description: description, start: start, duration: duration})
	return "https://cal/link", nil
}

func (f *fakeCalendar) ListEvents(ctx context.Context, query string, maxResults int64) ([]models.Event, error) {
	f.lastQuery = query
	f.lastMax = maxResults
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResult, nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

type fakeParser struct {
	t   time.Time
	err error
}

func (f *fakeParser) Parse(expr string) (time.Time, error) {
	return f.t, f.err
}

func seriesResult(id int64, name string) models.SearchResult {
	return models.SearchResult{ID: id, MediaType: models.MediaTypeTV, Name: name}
}

func seriesDetails(episodes int, runtimes ...int) *models.Details {
	return &models.Details{
		MediaType:        models.MediaTypeTV,
		NumberOfEpisodes: episodes,
		EpisodeRunTime:   runtimes,
	}
}

var testStart = time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)

func TestBuildPlanPartitionsEpisodes(t *testing.T) {
	tests := []struct {
		name          string
		totalEpisodes int
		perDay        int
		wantDays      int
		wantSessions  int
	}{
		{"even split", 24, 2, 12, 12},
		{"uneven tail", 10, 3, 4, 4},
		{"one per day capped", 50, 1, 50, 14},
		{"single day", 3, 5, 1, 1},
		{"exactly at cap", 14, 1, 14, 14},
		{"one over cap", 15, 1, 15, 14},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan := BuildPlan(1, "Show", tc.totalEpisodes, 45, tc.perDay, testStart)
			require.Equal(t, tc.wantDays, plan.DaysNeeded)
			require.Len(t, plan.Sessions, tc.wantSessions)

			// Episode ranges are contiguous from 1 with no gaps or overlaps.
			next := 1
			covered := 0
			for _, s := range plan.Sessions {
				assert.Equal(t, next, s.EpisodeStart)
				assert.GreaterOrEqual(t, s.EpisodeEnd, s.EpisodeStart)
				assert.LessOrEqual(t, s.EpisodeEnd, tc.totalEpisodes)
				covered += s.EpisodeEnd - s.EpisodeStart + 1
				next = s.EpisodeEnd + 1
			}

			expectCovered := tc.totalEpisodes
			if tc.wantDays > models.MaxBingeSessions {
				expectCovered = models.MaxBingeSessions * tc.perDay
			}
			assert.Equal(t, expectCovered, covered)
		})
	}
}

func TestBuildPlanConsecutiveDays(t *testing.T) {
	plan := BuildPlan(1, "Show", 20, 40, 2, testStart)
	for i, s := range plan.Sessions {
		want := testStart.AddDate(0, 0, i)
		assert.True(t, s.ScheduledStart.Equal(want), "session %d start = %v, want %v", i, s.ScheduledStart, want)
		assert.Equal(t, 80, s.DurationMinutes)
	}
}

func TestBuildPlanLastSessionEndsEarly(t *testing.T) {
	// 24 episodes at 2/day: 12 days, last session covers 23-24.
	plan := BuildPlan(1, "Show", 24, 45, 2, testStart)
	require.Len(t, plan.Sessions, 12)
	last := plan.Sessions[11]
	assert.Equal(t, 23, last.EpisodeStart)
	assert.Equal(t, 24, last.EpisodeEnd)
	assert.False(t, plan.Truncated())
}

func TestScheduleCreatesSessionEvents(t *testing.T) {
	metadata := &fakeMetadata{
		results: []models.SearchResult{seriesResult(1396, "Breaking Bad")},
		details: seriesDetails(62, 47),
	}
	cal := &fakeCalendar{}
	svc := NewService(metadata, cal, &fakeParser{t: testStart})

	report, err := svc.Schedule(context.Background(), "breaking bad", 5, "tonight")
	require.NoError(t, err)

	// ceil(62/5) = 13 days, under the cap.
	require.Len(t, cal.created, 13)
	assert.Equal(t, "Binge Breaking Bad (Day 1/13)", cal.created[0].summary)
	assert.Equal(t, "Binge Breaking Bad (Day 13/13)", cal.created[12].summary)
	assert.Contains(t, cal.created[0].description, "episodes 1-5")
	assert.Contains(t, cal.created[12].description, "episodes 61-62")
	assert.Contains(t, cal.created[12].description, "62/62 episodes")
	assert.Equal(t, time.Duration(47*5)*time.Minute, cal.created[0].duration)

	assert.Contains(t, report, "Total episodes: 62")
	assert.Contains(t, report, "13 days")
	assert.NotContains(t, report, "avoid flooding")
}

func TestScheduleTruncatesLongShows(t *testing.T) {
	metadata := &fakeMetadata{
		results: []models.SearchResult{seriesResult(456, "One Piece")},
		details: seriesDetails(50),
	}
	cal := &fakeCalendar{}
	svc := NewService(metadata, cal, &fakeParser{t: testStart})

	report, err := svc.Schedule(context.Background(), "one piece", 1, "tomorrow")
	require.NoError(t, err)
	assert.Len(t, cal.created, models.MaxBingeSessions)
	assert.Contains(t, report, "50 days")
	assert.Contains(t, report, "avoid flooding the calendar")
}

func TestScheduleDefaultsRuntime(t *testing.T) {
	metadata := &fakeMetadata{
		results: []models.SearchResult{seriesResult(2, "Mystery Show")},
		details: seriesDetails(4), // no runtime provided
	}
	cal := &fakeCalendar{}
	svc := NewService(metadata, cal, &fakeParser{t: testStart})

	_, err := svc.Schedule(context.Background(), "mystery show", 2, "friday")
	require.NoError(t, err)
	require.NotEmpty(t, cal.created)
	assert.Equal(t, time.Duration(models.DefaultEpisodeRuntime*2)*time.Minute, cal.created[0].duration)
}

func TestScheduleMovieOnlyMatch(t *testing.T) {
	metadata := &fakeMetadata{
		results: []models.SearchResult{{ID: 9, MediaType: models.MediaTypeMovie, Title: "Heat"}},
	}
	svc := NewService(metadata, &fakeCalendar{}, &fakeParser{t: testStart})

	_, err := svc.Schedule(context.Background(), "heat", 2, "tonight")
	require.Error(t, err)
	assert.True(t, errors.Is(err, faults.ErrNotFound))
	assert.Contains(t, err.Error(), `"Heat"`)
	assert.Contains(t, err.Error(), "not a series")
}

func TestScheduleFailures(t *testing.T) {
	tests := []struct {
		name     string
		metadata *fakeMetadata
		parser   *fakeParser
		perDay   int
		wantErr  error
	}{
		{
			name:     "nothing found",
			metadata: &fakeMetadata{},
			parser:   &fakeParser{t: testStart},
			perDay:   2,
			wantErr:  faults.ErrNotFound,
		},
		{
			name: "zero cadence",
			metadata: &fakeMetadata{
				results: []models.SearchResult{seriesResult(1, "Show")},
				details: seriesDetails(10, 30),
			},
			parser:  &fakeParser{t: testStart},
			perDay:  0,
			wantErr: faults.ErrInvalidArgument,
		},
		{
			name: "unknown episode count",
			metadata: &fakeMetadata{
				results: []models.SearchResult{seriesResult(1, "Show")},
				details: seriesDetails(0),
			},
			parser:  &fakeParser{t: testStart},
			perDay:  2,
			wantErr: faults.ErrIncompleteMetadata,
		},
		{
			name: "bad start time",
			metadata: &fakeMetadata{
				results: []models.SearchResult{seriesResult(1, "Show")},
				details: seriesDetails(10, 30),
			},
			parser:  &fakeParser{err: fmt.Errorf("no parse")},
			perDay:  2,
			wantErr: faults.ErrUnparseableTime,
		},
		{
			name:     "search upstream failure",
			metadata: &fakeMetadata{searchErr: fmt.Errorf("boom")},
			parser:   &fakeParser{t: testStart},
			perDay:   2,
			wantErr:  faults.ErrUpstream,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(tc.metadata, &fakeCalendar{}, tc.parser)
			_, err := svc.Schedule(context.Background(), "show", tc.perDay, "tonight")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v, want %v", err, tc.wantErr)
		})
	}
}

func TestScheduleBestEffortOnCreateFailure(t *testing.T) {
	metadata := &fakeMetadata{
		results: []models.SearchResult{seriesResult(1, "Show")},
		details: seriesDetails(6, 30),
	}
	cal := &fakeCalendar{failOnCall: map[int]error{2: fmt.Errorf("quota")}}
	svc := NewService(metadata, cal, &fakeParser{t: testStart})

	report, err := svc.Schedule(context.Background(), "show", 2, "tonight")
	require.NoError(t, err, "one failed session must not fail the plan")
	assert.Contains(t, report, "2 of 3 sessions")

	// Day 3 was still attempted after day 2 failed.
	assert.True(t, strings.HasSuffix(cal.created[2].summary, "(Day 3/3)"))
}

func TestCancelDeletesOnlyMatchingSessions(t *testing.T) {
	metadata := &fakeMetadata{
		results: []models.SearchResult{seriesResult(1396, "Breaking Bad")},
	}
	cal := &fakeCalendar{
		listResult: []models.Event{
			{ID: "a", Summary: "Binge Breaking Bad (Day 1/5)"},
			{ID: "b", Summary: "Binge Breaking Bad (Day 2/5)"},
			{ID: "c", Summary: "Binge Breaking Bad (Day 3/5)"},
			{ID: "d", Summary: "Binge Better Call Saul (Day 1/4)"}, // loose query over-return
		},
	}
	svc := NewService(metadata, cal, &fakeParser{})

	report, err := svc.Cancel(context.Background(), "breaking bad")
	require.NoError(t, err)
	assert.Equal(t, "Binge Breaking Bad", cal.lastQuery)
	assert.Equal(t, int64(reconcileQueryLimit), cal.lastMax)
	assert.Equal(t, []string{"a", "b", "c"}, cal.deleted)
	assert.Contains(t, report, "Cancelled 3 binge sessions")
}

func TestCancelFallsBackToRawInput(t *testing.T) {
	metadata := &fakeMetadata{searchErr: fmt.Errorf("tmdb down")}
	cal := &fakeCalendar{
		listResult: []models.Event{
			{ID: "x", Summary: "Binge The Wire (Day 1/10)"},
		},
	}
	svc := NewService(metadata, cal, &fakeParser{})

	report, err := svc.Cancel(context.Background(), "The Wire")
	require.NoError(t, err, "metadata miss must not block cleanup")
	assert.Equal(t, []string{"x"}, cal.deleted)
	assert.Contains(t, report, "Cancelled 1 binge sessions")
}

func TestCancelNothingFound(t *testing.T) {
	metadata := &fakeMetadata{
		results: []models.SearchResult{seriesResult(1, "Dark")},
	}
	svc := NewService(metadata, &fakeCalendar{}, &fakeParser{})

	report, err := svc.Cancel(context.Background(), "dark")
	require.NoError(t, err)
	assert.Contains(t, report, "Could not find any binge sessions")
}

func TestCorrelationKeyCaseInsensitive(t *testing.T) {
	query, matches := CorrelationKey("Breaking Bad")
	assert.Equal(t, "Binge Breaking Bad", query)
	assert.True(t, matches("binge BREAKING bad (Day 1/5)"))
	assert.False(t, matches("Binge Better Call Saul (Day 1/4)"))
}
