package models

import "time"

// HistoryEntry is one watched title joined with its cached metadata.
type HistoryEntry struct {
	MediaID   int64     `json:"mediaId"`
	MediaType MediaType `json:"mediaType"`
	Title     string    `json:"title"`
	Rating    float64   `json:"rating"`
	Review    string    `json:"review,omitempty"`
	WatchedAt time.Time `json:"watchedAt"`
}

// WatchlistEntry is one saved title joined with its cached metadata.
type WatchlistEntry struct {
	MediaID     int64     `json:"mediaId"`
	MediaType   MediaType `json:"mediaType"`
	Title       string    `json:"title"`
	GenreIDs    string    `json:"genreIds,omitempty"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
	AddedAt     time.Time `json:"addedAt"`
}

// GenreCount pairs a TMDB genre id with how often it appears in history.
type GenreCount struct {
	GenreID int `json:"genreId"`
	Count   int `json:"count"`
}

// Stats aggregates the viewing history.
type Stats struct {
	TotalWatched  int          `json:"totalWatched"`
	AverageRating float64      `json:"averageRating"`
	TopGenres     []GenreCount `json:"topGenres,omitempty"`
}
