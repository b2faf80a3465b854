package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"cinetrack/models"
	"cinetrack/services/gcal"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

// feedHorizon is how far ahead the exported feed looks.
const feedHorizon = 90 * 24 * time.Hour

type calendarFeed interface {
	ListEventsInRange(ctx context.Context, start, end time.Time) ([]models.Event, error)
}

var _ calendarFeed = (*gcal.Service)(nil)

// FeedHandler serves the upcoming watch schedule as an iCalendar feed so it
// can be subscribed to from other calendar apps.
type FeedHandler struct {
	Calendar calendarFeed
	now      func() time.Time
}

func NewFeedHandler(calendar calendarFeed) *FeedHandler {
	return &FeedHandler{Calendar: calendar, now: time.Now}
}

func (h *FeedHandler) Serve(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	events, err := h.Calendar.ListEventsInRange(r.Context(), start, start.Add(feedHorizon))
	if err != nil {
		log.Printf("[feed] list events: %v", err)
		http.Error(w, "calendar unavailable", http.StatusBadGateway)
		return
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//cinetrack//watch schedule//EN")

	for _, event := range events {
		uid := event.ID
		if uid == "" {
			uid = uuid.NewString()
		}
		ve := cal.AddEvent(fmt.Sprintf("%s@cinetrack", uid))
		ve.SetSummary(event.Summary)
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		ve.SetStartAt(event.Start)
		end := event.End
		if !end.After(event.Start) {
			end = event.Start.Add(gcal.DefaultEventDuration)
		}
		ve.SetEndAt(end)
		ve.SetDtStampTime(start)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if err := cal.SerializeTo(w); err != nil {
		log.Printf("[feed] serialize: %v", err)
	}
}
