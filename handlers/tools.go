package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"cinetrack/services/binge"
	"cinetrack/services/library"
	"cinetrack/services/scheduling"

	"github.com/gorilla/mux"
)

type libraryService interface {
	Search(ctx context.Context, query string) (string, error)
	Details(ctx context.Context, title string) (string, error)
	LogTitles(ctx context.Context, titles string, rating float64, review string) (string, error)
	DeleteFromHistory(ctx context.Context, title string) (string, error)
	AddToWatchlist(ctx context.Context, titles string) (string, error)
	RemoveFromWatchlist(ctx context.Context, title string) (string, error)
	History(ctx context.Context) (string, error)
	Watchlist(ctx context.Context) (string, error)
	ClearHistory(ctx context.Context) (string, error)
	ClearWatchlist(ctx context.Context) (string, error)
	WhereToWatch(ctx context.Context, title, country string) (string, error)
	Stats(ctx context.Context) (string, error)
}

var _ libraryService = (*library.Service)(nil)

type bingeService interface {
	Schedule(ctx context.Context, title string, episodesPerDay int, startExpr string) (string, error)
	Cancel(ctx context.Context, title string) (string, error)
}

var _ bingeService = (*binge.Service)(nil)

type schedulingService interface {
	Schedule(ctx context.Context, title, timeExpr string) (string, error)
	Reschedule(ctx context.Context, title, newTimeExpr string) (string, error)
	CancelTitles(ctx context.Context, titles string) (string, error)
	CancelOnDate(ctx context.Context, dateExpr string) (string, error)
	CancelInRange(ctx context.Context, startExpr, endExpr string) (string, error)
	CancelFrom(ctx context.Context, startExpr string) (string, error)
}

var _ schedulingService = (*scheduling.Service)(nil)

// ToolsHandler exposes every tool as a plain-text endpoint. Failures are
// flattened into the response body so a calling agent always gets a readable
// report instead of a bare status code.
type ToolsHandler struct {
	Library   libraryService
	Binge     bingeService
	Scheduler schedulingService
}

func NewToolsHandler(lib libraryService, binge bingeService, scheduler schedulingService) *ToolsHandler {
	return &ToolsHandler{Library: lib, Binge: binge, Scheduler: scheduler}
}

// Register mounts all tool routes under /tools.
func (h *ToolsHandler) Register(r *mux.Router) {
	t := r.PathPrefix("/tools").Subrouter()

	t.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	t.HandleFunc("/details", h.Details).Methods(http.MethodGet)
	t.HandleFunc("/where-to-watch", h.WhereToWatch).Methods(http.MethodGet)
	t.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)

	t.HandleFunc("/history", h.History).Methods(http.MethodGet)
	t.HandleFunc("/history/log", h.LogTitles).Methods(http.MethodPost)
	t.HandleFunc("/history/delete", h.DeleteFromHistory).Methods(http.MethodPost)
	t.HandleFunc("/history/clear", h.ClearHistory).Methods(http.MethodPost)

	t.HandleFunc("/watchlist", h.Watchlist).Methods(http.MethodGet)
	t.HandleFunc("/watchlist/add", h.AddToWatchlist).Methods(http.MethodPost)
	t.HandleFunc("/watchlist/remove", h.RemoveFromWatchlist).Methods(http.MethodPost)
	t.HandleFunc("/watchlist/clear", h.ClearWatchlist).Methods(http.MethodPost)

	t.HandleFunc("/schedule", h.ScheduleWatch).Methods(http.MethodPost)
	t.HandleFunc("/reschedule", h.RescheduleWatch).Methods(http.MethodPost)
	t.HandleFunc("/binge", h.ScheduleBinge).Methods(http.MethodPost)
	t.HandleFunc("/binge/cancel", h.CancelBinge).Methods(http.MethodPost)

	t.HandleFunc("/cancel", h.CancelTitles).Methods(http.MethodPost)
	t.HandleFunc("/cancel/on-date", h.CancelOnDate).Methods(http.MethodPost)
	t.HandleFunc("/cancel/range", h.CancelInRange).Methods(http.MethodPost)
	t.HandleFunc("/cancel/from", h.CancelFrom).Methods(http.MethodPost)
}

// respond writes the tool result as plain text. Errors become part of the
// body, never a non-200 status.
func respond(w http.ResponseWriter, text string, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		fmt.Fprintf(w, "Error: %s", err.Error())
		return
	}
	fmt.Fprint(w, text)
}

func (h *ToolsHandler) Search(w http.ResponseWriter, r *http.Request) {
	text, err := h.Library.Search(r.Context(), r.FormValue("query"))
	respond(w, text, err)
}

func (h *ToolsHandler) Details(w http.ResponseWriter, r *http.Request) {
	text, err := h.Library.Details(r.Context(), r.FormValue("title"))
	respond(w, text, err)
}

func (h *ToolsHandler) WhereToWatch(w http.ResponseWriter, r *http.Request) {
	country := r.FormValue("country")
	if country == "" {
		country = "India"
	}
	text, err := h.Library.WhereToWatch(r.Context(), r.FormValue("title"), country)
	respond(w, text, err)
}

func (h *ToolsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	text, err := h.Library.Stats(r.Context())
	respond(w, text, err)
}

func (h *ToolsHandler) History(w http.ResponseWriter, r *http.Request) {
	text, err := h.Library.History(r.Context())
	respond(w, text, err)
}

func (h *ToolsHandler) LogTitles(w http.ResponseWriter, r *http.Request) {
	ratingStr := r.FormValue("rating")
	rating, err := strconv.ParseFloat(ratingStr, 64)
	if err != nil {
		respond(w, "", fmt.Errorf("rating %q is not a number", ratingStr))
		return
	}
	text, err := h.Library.LogTitles(r.Context(), r.FormValue("titles"), rating, r.FormValue("review"))
	respond(w, text, err)
}

func (h *ToolsHandler) DeleteFromHistory(w http.ResponseWriter, r *http.Request) {
	text, err := h.Library.DeleteFromHistory(r.Context(), r.FormValue("title"))
	respond(w, text, err)
}

func (h *ToolsHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	text, err := h.Library.ClearHistory(r.Context())
	respond(w, text, err)
}

func (h *ToolsHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	text, err := h.Library.Watchlist(r.Context())
	respond(w, text, err)
}

func (h *ToolsHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	text, err := h.Library.AddToWatchlist(r.Context(), r.FormValue("titles"))
	respond(w, text, err)
}

func (h *ToolsHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	text, err := h.Library.RemoveFromWatchlist(r.Context(), r.FormValue("title"))
	respond(w, text, err)
}

func (h *ToolsHandler) ClearWatchlist(w http.ResponseWriter, r *http.Request) {
	text, err := h.Library.ClearWatchlist(r.Context())
	respond(w, text, err)
}

func (h *ToolsHandler) ScheduleWatch(w http.ResponseWriter, r *http.Request) {
	text, err := h.Scheduler.Schedule(r.Context(), r.FormValue("title"), r.FormValue("time"))
	respond(w, text, err)
}

func (h *ToolsHandler) RescheduleWatch(w http.ResponseWriter, r *http.Request) {
	text, err := h.Scheduler.Reschedule(r.Context(), r.FormValue("title"), r.FormValue("time"))
	respond(w, text, err)
}

func (h *ToolsHandler) ScheduleBinge(w http.ResponseWriter, r *http.Request) {
	cadenceStr := r.FormValue("episodes_per_day")
	cadence, err := strconv.Atoi(cadenceStr)
	if err != nil {
		respond(w, "", fmt.Errorf("episodes_per_day %q is not a number", cadenceStr))
		return
	}
	text, err := h.Binge.Schedule(r.Context(), r.FormValue("title"), cadence, r.FormValue("start_time"))
	respond(w, text, err)
}

func (h *ToolsHandler) CancelBinge(w http.ResponseWriter, r *http.Request) {
	text, err := h.Binge.Cancel(r.Context(), r.FormValue("title"))
	respond(w, text, err)
}

func (h *ToolsHandler) CancelTitles(w http.ResponseWriter, r *http.Request) {
	text, err := h.Scheduler.CancelTitles(r.Context(), r.FormValue("titles"))
	respond(w, text, err)
}

func (h *ToolsHandler) CancelOnDate(w http.ResponseWriter, r *http.Request) {
	text, err := h.Scheduler.CancelOnDate(r.Context(), r.FormValue("date"))
	respond(w, text, err)
}

func (h *ToolsHandler) CancelInRange(w http.ResponseWriter, r *http.Request) {
	text, err := h.Scheduler.CancelInRange(r.Context(), r.FormValue("start"), r.FormValue("end"))
	respond(w, text, err)
}

func (h *ToolsHandler) CancelFrom(w http.ResponseWriter, r *http.Request) {
	text, err := h.Scheduler.CancelFrom(r.Context(), r.FormValue("start"))
	respond(w, text, err)
}
