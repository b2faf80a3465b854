package models

import "strings"

// MediaType distinguishes movies from series in TMDB responses and the ledger.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

func (t MediaType) String() string {
	return string(t)
}

// IsValid reports whether the value is one of the two media types we track.
func (t MediaType) IsValid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// SearchResult is one hit from the multi-search endpoint. Movies carry
// Title/ReleaseDate, series carry Name/FirstAirDate; DisplayName and
// DisplayDate normalize the two.
type SearchResult struct {
	ID           int64     `json:"id"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	GenreIDs     []int     `json:"genre_ids,omitempty"`
}

// DisplayName returns the title for movies or the name for series.
func (r SearchResult) DisplayName() string {
	if r.MediaType == MediaTypeTV {
		return r.Name
	}
	return r.Title
}

// DisplayDate returns the release date for movies or the first air date for series.
func (r SearchResult) DisplayDate() string {
	if r.MediaType == MediaTypeTV {
		return r.FirstAirDate
	}
	return r.ReleaseDate
}

// Year extracts the 4-digit year from the display date, or "N/A".
func (r SearchResult) Year() string {
	d := r.DisplayDate()
	if len(d) >= 4 {
		return d[:4]
	}
	return "N/A"
}

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Details holds the detail payload for a movie or series. Movie-only and
// series-only fields are both present; callers pick by media type.
type Details struct {
	ID           int64     `json:"id"`
	MediaType    MediaType `json:"-"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	Genres       []Genre   `json:"genres,omitempty"`
	VoteAverage  float64   `json:"vote_average,omitempty"`

	// Movie only
	Runtime int `json:"runtime,omitempty"`

	// Series only
	NumberOfSeasons  int   `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int   `json:"number_of_episodes,omitempty"`
	EpisodeRunTime   []int `json:"episode_run_time,omitempty"`
}

// DisplayName returns the title for movies or the name for series.
func (d Details) DisplayName() string {
	if d.MediaType == MediaTypeTV {
		return d.Name
	}
	return d.Title
}

// GenreNames returns the genre names joined for display.
func (d Details) GenreNames() string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

// Provider is one streaming/rental provider entry.
type Provider struct {
	ProviderName string `json:"provider_name"`
}

// WatchProviders groups the availability of a title in one country.
type WatchProviders struct {
	Link     string     `json:"link,omitempty"`
	Flatrate []Provider `json:"flatrate,omitempty"`
	Rent     []Provider `json:"rent,omitempty"`
	Buy      []Provider `json:"buy,omitempty"`
}

// Empty reports whether no availability information was returned.
func (w WatchProviders) Empty() bool {
	return len(w.Flatrate) == 0 && len(w.Rent) == 0 && len(w.Buy) == 0 && w.Link == ""
}

// MediaItem is a cached metadata row in the ledger. GenreIDs is the
// comma-joined TMDB genre id list as returned by search.
type MediaItem struct {
	ID          int64     `json:"id"`
	MediaType   MediaType `json:"mediaType"`
	Title       string    `json:"title"`
	GenreIDs    string    `json:"genreIds,omitempty"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
	Overview    string    `json:"overview,omitempty"`
}
