package models

import "time"

// Event is the transient handle we hold on a calendar event. The calendar
// service owns the event; we only ever correlate by summary text.
type Event struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Link        string    `json:"link,omitempty"`
}
