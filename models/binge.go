package models

import "time"

// MaxBingeSessions caps how many daily sessions a single plan will put on the
// calendar, however long the show runs.
const MaxBingeSessions = 14

// DefaultEpisodeRuntime is assumed when the provider has no per-episode
// runtime for a series.
const DefaultEpisodeRuntime = 45

// BingeSession is one planned day of a binge: an inclusive episode range and
// its calendar placement. Sessions are computed in memory and immediately
// turned into calendar events; they are never persisted.
type BingeSession struct {
	DayIndex        int       `json:"dayIndex"` // 1-based
	EpisodeStart    int       `json:"episodeStart"`
	EpisodeEnd      int       `json:"episodeEnd"` // inclusive
	ScheduledStart  time.Time `json:"scheduledStart"`
	DurationMinutes int       `json:"durationMinutes"`
}

// BingePlan is the computed schedule for watching a series at a fixed cadence.
type BingePlan struct {
	ShowID         int64          `json:"showId"`
	ShowName       string         `json:"showName"`
	TotalEpisodes  int            `json:"totalEpisodes"`
	EpisodeRuntime int            `json:"episodeRuntime"` // minutes per episode
	EpisodesPerDay int            `json:"episodesPerDay"`
	DaysNeeded     int            `json:"daysNeeded"`
	Sessions       []BingeSession `json:"sessions"`
}

// Truncated reports whether the plan had to drop trailing days to stay under
// the session cap.
func (p BingePlan) Truncated() bool {
	return p.DaysNeeded > len(p.Sessions)
}
