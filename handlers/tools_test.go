package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"cinetrack/handlers"
	"cinetrack/models"

	"github.com/gorilla/mux"
)

// stubLibrary records the last call and returns canned text.
type stubLibrary struct {
	lastQuery   string
	lastTitles  string
	lastRating  float64
	lastReview  string
	lastCountry string
	err         error
}

func (s *stubLibrary) text(name string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return name + " ok", nil
}

func (s *stubLibrary) Search(ctx context.Context, query string) (string, error) {
	s.lastQuery = query
	return s.text("search")
}

func (s *stubLibrary) Details(ctx context.Context, title string) (string, error) {
	s.lastTitles = title
	return s.text("details")
}

func (s *stubLibrary) LogTitles(ctx context.Context, titles string, rating float64, review string) (string, error) {
	s.lastTitles, s.lastRating, s.lastReview = titles, rating, review
	return s.text("log")
}

func (s *stubLibrary) DeleteFromHistory(ctx context.Context, title string) (string, error) {
	s.lastTitles = title
	return s.text("history delete")
}

func (s *stubLibrary) AddToWatchlist(ctx context.Context, titles string) (string, error) {
	s.lastTitles = titles
	return s.text("watchlist add")
}

func (s *stubLibrary) RemoveFromWatchlist(ctx context.Context, title string) (string, error) {
	s.lastTitles = title
	return s.text("watchlist remove")
}

func (s *stubLibrary) History(ctx context.Context) (string, error)   { return s.text("history") }
func (s *stubLibrary) Watchlist(ctx context.Context) (string, error) { return s.text("watchlist") }
func (s *stubLibrary) ClearHistory(ctx context.Context) (string, error) {
	return s.text("history clear")
}
func (s *stubLibrary) ClearWatchlist(ctx context.Context) (string, error) {
	return s.text("watchlist clear")
}
func (s *stubLibrary) Stats(ctx context.Context) (string, error) { return s.text("stats") }

func (s *stubLibrary) WhereToWatch(ctx context.Context, title, country string) (string, error) {
	s.lastTitles, s.lastCountry = title, country
	return s.text("where")
}

type stubBinge struct {
	lastTitle   string
	lastCadence int
	lastStart   string
}

func (s *stubBinge) Schedule(ctx context.Context, title string, episodesPerDay int, startExpr string) (string, error) {
	s.lastTitle, s.lastCadence, s.lastStart = title, episodesPerDay, startExpr
	return "binge ok", nil
}

func (s *stubBinge) Cancel(ctx context.Context, title string) (string, error) {
	s.lastTitle = title
	return "binge cancel ok", nil
}

type stubScheduler struct {
	lastArgs []string
	err      error
}

func (s *stubScheduler) call(name string, args ...string) (string, error) {
	s.lastArgs = args
	if s.err != nil {
		return "", s.err
	}
	return name + " ok", nil
}

func (s *stubScheduler) Schedule(ctx context.Context, title, timeExpr string) (string, error) {
	return s.call("schedule", title, timeExpr)
}

func (s *stubScheduler) Reschedule(ctx context.Context, title, newTimeExpr string) (string, error) {
	return s.call("reschedule", title, newTimeExpr)
}

func (s *stubScheduler) CancelTitles(ctx context.Context, titles string) (string, error) {
	return s.call("cancel", titles)
}

func (s *stubScheduler) CancelOnDate(ctx context.Context, dateExpr string) (string, error) {
	return s.call("cancel on date", dateExpr)
}

func (s *stubScheduler) CancelInRange(ctx context.Context, startExpr, endExpr string) (string, error) {
	return s.call("cancel range", startExpr, endExpr)
}

func (s *stubScheduler) CancelFrom(ctx context.Context, startExpr string) (string, error) {
	return s.call("cancel from", startExpr)
}

func setupToolsRouter(t *testing.T) (*mux.Router, *stubLibrary, *stubBinge, *stubScheduler) {
	t.Helper()
	lib := &stubLibrary{}
	bingeSvc := &stubBinge{}
	scheduler := &stubScheduler{}
	h := handlers.NewToolsHandler(lib, bingeSvc, scheduler)

	r := mux.NewRouter()
	h.Register(r)
	return r, lib, bingeSvc, scheduler
}

func postForm(t *testing.T, r *mux.Router, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	r, lib, _, _ := setupToolsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/tools/search?query=inception", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if lib.lastQuery != "inception" {
		t.Errorf("query = %q", lib.lastQuery)
	}
	if rec.Body.String() != "search ok" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestLogEndpointParsesRating(t *testing.T) {
	r, lib, _, _ := setupToolsRouter(t)

	rec := postForm(t, r, "/tools/history/log", url.Values{
		"titles": {"Inception, Heat"},
		"rating": {"8.5"},
		"review": {"solid"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if lib.lastTitles != "Inception, Heat" || lib.lastRating != 8.5 || lib.lastReview != "solid" {
		t.Errorf("got titles=%q rating=%v review=%q", lib.lastTitles, lib.lastRating, lib.lastReview)
	}
}

func TestLogEndpointBadRating(t *testing.T) {
	r, lib, _, _ := setupToolsRouter(t)

	rec := postForm(t, r, "/tools/history/log", url.Values{
		"titles": {"Inception"},
		"rating": {"lots"},
	})

	// Failures are flattened into the body, never a non-200 status.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"lots" is not a number`) {
		t.Errorf("body = %q", rec.Body.String())
	}
	if lib.lastTitles != "" {
		t.Error("service must not be called on a bad rating")
	}
}

func TestBingeEndpoint(t *testing.T) {
	r, _, bingeSvc, _ := setupToolsRouter(t)

	rec := postForm(t, r, "/tools/binge", url.Values{
		"title":            {"Breaking Bad"},
		"episodes_per_day": {"3"},
		"start_time":       {"tomorrow 8pm"},
	})

	if rec.Body.String() != "binge ok" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if bingeSvc.lastTitle != "Breaking Bad" || bingeSvc.lastCadence != 3 || bingeSvc.lastStart != "tomorrow 8pm" {
		t.Errorf("binge called with %q %d %q", bingeSvc.lastTitle, bingeSvc.lastCadence, bingeSvc.lastStart)
	}
}

func TestServiceErrorsFlattenedToText(t *testing.T) {
	lib := &stubLibrary{err: fmt.Errorf("not found: could not find \"x\"")}
	h := handlers.NewToolsHandler(lib, &stubBinge{}, &stubScheduler{})
	r := mux.NewRouter()
	h.Register(r)

	req := httptest.NewRequest(http.MethodGet, "/tools/details?title=x", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != `Error: not found: could not find "x"` {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCancelRangeEndpoint(t *testing.T) {
	r, _, _, scheduler := setupToolsRouter(t)

	rec := postForm(t, r, "/tools/cancel/range", url.Values{
		"start": {"jan 1"},
		"end":   {"jan 3"},
	})

	if rec.Body.String() != "cancel range ok" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if len(scheduler.lastArgs) != 2 || scheduler.lastArgs[0] != "jan 1" || scheduler.lastArgs[1] != "jan 3" {
		t.Errorf("args = %v", scheduler.lastArgs)
	}
}

func TestWhereToWatchDefaultCountry(t *testing.T) {
	r, lib, _, _ := setupToolsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/tools/where-to-watch?title=Dune", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if lib.lastCountry != "India" {
		t.Errorf("country = %q", lib.lastCountry)
	}
}

func TestMethodsEnforced(t *testing.T) {
	r, _, _, _ := setupToolsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/tools/history/clear", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET on a mutating route: status = %d", rec.Code)
	}
}

type stubFeedCalendar struct {
	events    []models.Event
	err       error
	gotWindow time.Duration
}

func (s *stubFeedCalendar) ListEventsInRange(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	s.gotWindow = end.Sub(start)
	return s.events, s.err
}

func TestFeedServesICS(t *testing.T) {
	start := time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC)
	cal := &stubFeedCalendar{events: []models.Event{
		{ID: "ev1", Summary: "Binge Dark (Day 1/3)", Description: "Watching episodes 1-3.", Start: start, End: start.Add(2 * time.Hour)},
		{ID: "ev2", Summary: "Watch Inception", Start: start.AddDate(0, 0, 1)},
	}}
	h := handlers.NewFeedHandler(cal)

	req := httptest.NewRequest(http.MethodGet, "/calendar.ics", nil)
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "BEGIN:VEVENT", "Binge Dark (Day 1/3)", "Watch Inception", "ev1@cinetrack"} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in feed:\n%s", want, body)
		}
	}
	if cal.gotWindow != 90*24*time.Hour {
		t.Errorf("window = %v, want 90 days", cal.gotWindow)
	}
}

func TestFeedUpstreamFailure(t *testing.T) {
	h := handlers.NewFeedHandler(&stubFeedCalendar{err: fmt.Errorf("api down")})

	req := httptest.NewRequest(http.MethodGet, "/calendar.ics", nil)
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rec.Code)
	}
}
