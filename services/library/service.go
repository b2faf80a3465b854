// Package library implements the personal catalog tools: search and detail
// formatting, watch history and watchlist upkeep, streaming availability, and
// viewing stats. All operations return display-ready text.
package library

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cinetrack/internal/faults"
	"cinetrack/models"
)

// searchResultLimit caps how many hits a formatted search shows.
const searchResultLimit = 5

// MetadataService is the provider surface the library tools consume.
type MetadataService interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Details(ctx context.Context, id int64, mediaType models.MediaType) (*models.Details, error)
	Genres(ctx context.Context) (map[int]string, error)
	WatchProviders(ctx context.Context, id int64, countryCode string, mediaType models.MediaType) (*models.WatchProviders, error)
}

// HistoryStore persists watched titles.
type HistoryStore interface {
	Log(mediaID int64, mediaType models.MediaType, rating float64, review string) error
	Delete(mediaID int64, mediaType models.MediaType) (bool, error)
	List() ([]models.HistoryEntry, error)
	Clear() error
	Stats(topGenres int) (*models.Stats, error)
}

// WatchlistStore persists titles saved for later.
type WatchlistStore interface {
	Add(mediaID int64, mediaType models.MediaType) (bool, error)
	Remove(mediaID int64, mediaType models.MediaType) (bool, error)
	List() ([]models.WatchlistEntry, error)
	Clear() error
}

// Service wires the provider gateway to the local ledger.
type Service struct {
	metadata  MetadataService
	history   HistoryStore
	watchlist WatchlistStore
}

// NewService creates a library service.
func NewService(metadata MetadataService, history HistoryStore, watchlist WatchlistStore) *Service {
	return &Service{
		metadata:  metadata,
		history:   history,
		watchlist: watchlist,
	}
}

// resolve finds the best match for a title, or a not-found failure.
func (s *Service) resolve(ctx context.Context, title string) (*models.SearchResult, error) {
	results, err := s.metadata.Search(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %v", faults.ErrUpstream, title, err)
	}
	item := models.PickBest(results, title)
	if item == nil {
		return nil, fmt.Errorf("%w: could not find %q", faults.ErrNotFound, title)
	}
	return item, nil
}

// Search returns the top hits for a query, one line per result.
func (s *Service) Search(ctx context.Context, query string) (string, error) {
	results, err := s.metadata.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: search %q: %v", faults.ErrUpstream, query, err)
	}
	if len(results) == 0 {
		return "No movies or TV shows found.", nil
	}

	var b strings.Builder
	b.WriteString("Found results:\n")
	for i, r := range results {
		if i == searchResultLimit {
			break
		}
		fmt.Fprintf(&b, "- [%s] %s (ID: %d, Year: %s)\n",
			strings.ToUpper(r.MediaType.String()), r.DisplayName(), r.ID, r.Year())
	}
	return b.String(), nil
}

// Details returns a text block describing the best match for a title.
func (s *Service) Details(ctx context.Context, title string) (string, error) {
	item, err := s.resolve(ctx, title)
	if err != nil {
		return "", err
	}
	details, err := s.metadata.Details(ctx, item.ID, item.MediaType)
	if err != nil {
		return "", fmt.Errorf("%w: details for %q: %v", faults.ErrUpstream, item.DisplayName(), err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s (%s)\n", details.DisplayName(), strings.ToUpper(details.MediaType.String()))
	date := details.ReleaseDate
	if details.MediaType == models.MediaTypeTV {
		date = details.FirstAirDate
	}
	if date == "" {
		date = "N/A"
	}
	fmt.Fprintf(&b, "Year: %s\n", date)
	fmt.Fprintf(&b, "Genres: %s\n", details.GenreNames())
	fmt.Fprintf(&b, "Rating: %.1f\n", details.VoteAverage)
	if details.MediaType == models.MediaTypeMovie {
		fmt.Fprintf(&b, "Runtime: %d minutes\n", details.Runtime)
	} else {
		fmt.Fprintf(&b, "Seasons: %d, Episodes: %d\n", details.NumberOfSeasons, details.NumberOfEpisodes)
	}
	fmt.Fprintf(&b, "Overview: %s\n", details.Overview)
	return b.String(), nil
}

// LogTitles records each comma-separated title as watched with the given
// rating and review, and drops it from the watchlist. Each title gets its own
// status line; one failure never aborts the batch.
func (s *Service) LogTitles(ctx context.Context, titles string, rating float64, review string) (string, error) {
	return s.forEachTitle(titles, func(title string) string {
		item, err := s.resolve(ctx, title)
		if err != nil {
			return fmt.Sprintf("%q: not found.", title)
		}
		name := item.DisplayName()
		if err := s.history.Log(item.ID, item.MediaType, rating, review); err != nil {
			return fmt.Sprintf("%q: %v", title, err)
		}
		if _, err := s.watchlist.Remove(item.ID, item.MediaType); err != nil {
			return fmt.Sprintf("Logged %q, but watchlist cleanup failed: %v", name, err)
		}
		return fmt.Sprintf("Logged %q.", name)
	})
}

// DeleteFromHistory removes the best match for a title from the history.
func (s *Service) DeleteFromHistory(ctx context.Context, title string) (string, error) {
	item, err := s.resolve(ctx, title)
	if err != nil {
		return "", err
	}
	removed, err := s.history.Delete(item.ID, item.MediaType)
	if err != nil {
		return "", fmt.Errorf("delete from history: %w", err)
	}
	if !removed {
		return fmt.Sprintf("%q was not in your history.", item.DisplayName()), nil
	}
	return fmt.Sprintf("Removed %q from history.", item.DisplayName()), nil
}

// AddToWatchlist saves each comma-separated title for later, reporting
// duplicates per item.
func (s *Service) AddToWatchlist(ctx context.Context, titles string) (string, error) {
	return s.forEachTitle(titles, func(title string) string {
		item, err := s.resolve(ctx, title)
		if err != nil {
			return fmt.Sprintf("%q: not found.", title)
		}
		name := item.DisplayName()
		added, err := s.watchlist.Add(item.ID, item.MediaType)
		if err != nil {
			return fmt.Sprintf("%q: %v", title, err)
		}
		if !added {
			return fmt.Sprintf("%q already in watchlist.", name)
		}
		return fmt.Sprintf("Added %q.", name)
	})
}

// RemoveFromWatchlist drops the best match for a title from the watchlist.
func (s *Service) RemoveFromWatchlist(ctx context.Context, title string) (string, error) {
	item, err := s.resolve(ctx, title)
	if err != nil {
		return "", err
	}
	removed, err := s.watchlist.Remove(item.ID, item.MediaType)
	if err != nil {
		return "", fmt.Errorf("remove from watchlist: %w", err)
	}
	if !removed {
		return fmt.Sprintf("%q was not on your watchlist.", item.DisplayName()), nil
	}
	return fmt.Sprintf("Removed %q from watchlist.", item.DisplayName()), nil
}

// History lists every watched title, most recent first.
func (s *Service) History(ctx context.Context) (string, error) {
	entries, err := s.history.List()
	if err != nil {
		return "", fmt.Errorf("list history: %w", err)
	}
	if len(entries) == 0 {
		return "History is empty.", nil
	}

	var b strings.Builder
	b.WriteString("Watch History:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- [%s] %s (%.1f/10)", strings.ToUpper(e.MediaType.String()), e.Title, e.Rating)
		if e.Review != "" {
			fmt.Fprintf(&b, ": %s", e.Review)
		}
		fmt.Fprintf(&b, " [Watched: %s]\n", e.WatchedAt.Format("2006-01-02"))
	}
	return b.String(), nil
}

// Watchlist lists every saved title with its genres resolved to names.
func (s *Service) Watchlist(ctx context.Context) (string, error) {
	entries, err := s.watchlist.List()
	if err != nil {
		return "", fmt.Errorf("list watchlist: %w", err)
	}
	if len(entries) == 0 {
		return "Watchlist is empty.", nil
	}

	// Genre names are cosmetic here; fall back to raw ids on a miss.
	genres, err := s.metadata.Genres(ctx)
	if err != nil {
		genres = nil
	}

	var b strings.Builder
	b.WriteString("Watchlist:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- [%s] %s (%s) [Added: %s]\n",
			strings.ToUpper(e.MediaType.String()), e.Title,
			genreLabel(e.GenreIDs, genres), e.AddedAt.Format("2006-01-02"))
	}
	return b.String(), nil
}

// ClearHistory wipes the watch history.
func (s *Service) ClearHistory(ctx context.Context) (string, error) {
	if err := s.history.Clear(); err != nil {
		return "", fmt.Errorf("clear history: %w", err)
	}
	return "Watch history cleared.", nil
}

// ClearWatchlist wipes the watchlist.
func (s *Service) ClearWatchlist(ctx context.Context) (string, error) {
	if err := s.watchlist.Clear(); err != nil {
		return "", fmt.Errorf("clear watchlist: %w", err)
	}
	return "Watchlist cleared.", nil
}

// WhereToWatch reports streaming availability for a title in a country.
func (s *Service) WhereToWatch(ctx context.Context, title, country string) (string, error) {
	code := NormalizeCountry(country)

	item, err := s.resolve(ctx, title)
	if err != nil {
		return "", err
	}
	name := item.DisplayName()

	providers, err := s.metadata.WatchProviders(ctx, item.ID, code, item.MediaType)
	if err != nil {
		return "", fmt.Errorf("%w: watch providers for %q: %v", faults.ErrUpstream, name, err)
	}
	if providers == nil || providers.Empty() {
		return fmt.Sprintf("No streaming information found for %q in %s (%s).", name, country, code), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Where to watch %q (%s):\n", name, code)
	writeProviderGroup(&b, "Stream", providers.Flatrate)
	writeProviderGroup(&b, "Rent", providers.Rent)
	writeProviderGroup(&b, "Buy", providers.Buy)
	if providers.Link != "" {
		fmt.Fprintf(&b, "\nMore info: %s", providers.Link)
	}
	return b.String(), nil
}

// Stats summarizes the viewing history with genre names resolved.
func (s *Service) Stats(ctx context.Context) (string, error) {
	stats, err := s.history.Stats(5)
	if err != nil {
		return "", fmt.Errorf("load stats: %w", err)
	}
	if stats.TotalWatched == 0 {
		return "No stats available yet. Log some movies!", nil
	}

	genres, err := s.metadata.Genres(ctx)
	if err != nil {
		genres = nil
	}
	topGenres := make([]string, 0, len(stats.TopGenres))
	for _, g := range stats.TopGenres {
		name, ok := genres[g.GenreID]
		if !ok {
			name = "Unknown"
		}
		topGenres = append(topGenres, fmt.Sprintf("%s (%d)", name, g.Count))
	}

	var b strings.Builder
	b.WriteString("Your Movie DNA\n")
	fmt.Fprintf(&b, "- Total Watched: %d\n", stats.TotalWatched)
	fmt.Fprintf(&b, "- Average Rating: %.1f/10\n", stats.AverageRating)
	fmt.Fprintf(&b, "- Top Genres: %s\n", strings.Join(topGenres, ", "))
	return b.String(), nil
}

// forEachTitle runs one status-producing step per comma-separated title and
// joins the lines into a batch report.
func (s *Service) forEachTitle(titles string, step func(title string) string) (string, error) {
	var lines []string
	for _, title := range strings.Split(titles, ",") {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		lines = append(lines, step(title))
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: no titles given", faults.ErrInvalidArgument)
	}
	return strings.Join(lines, "\n"), nil
}

func writeProviderGroup(b *strings.Builder, label string, providers []models.Provider) {
	if len(providers) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", label)
	for _, p := range providers {
		fmt.Fprintf(b, "- %s\n", p.ProviderName)
	}
}

func genreLabel(genreIDs string, genres map[int]string) string {
	if genreIDs == "" {
		return "N/A"
	}
	if genres == nil {
		return genreIDs
	}
	parts := strings.Split(genreIDs, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if name, ok := genres[id]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return genreIDs
	}
	return strings.Join(names, ", ")
}
