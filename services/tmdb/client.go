package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"cinetrack/models"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// MediaCache receives every search hit for write-through caching into the
// local ledger.
type MediaCache interface {
	Upsert(item models.MediaItem) error
}

// Client talks to the TMDB v3 API.
type Client struct {
	apiKey     string
	language   string
	baseURL    string
	httpClient *http.Client
	responses  *FileCache
	media      MediaCache
}

// NewClient creates a TMDB client. responses may be nil to disable the
// short-lived response cache; media may be nil to disable write-through.
func NewClient(apiKey, language string, httpClient *http.Client, responses *FileCache, media MediaCache) *Client {
	if language == "" {
		language = "en-US"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:     apiKey,
		language:   language,
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		responses:  responses,
		media:      media,
	}
}

// get performs a GET against the API with bounded retries on transient failures.
func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	if c.apiKey == "" {
		return fmt.Errorf("tmdb api key not configured")
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	reqURL := c.baseURL + path + "?" + params.Encode()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("tmdb request %s: %w", path, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return fmt.Errorf("tmdb %s: %s", path, resp.Status)
			}
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				return retry.Unrecoverable(fmt.Errorf("tmdb %s: %s - %s", path, resp.Status, strings.TrimSpace(string(body))))
			}
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode tmdb response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

type searchResponse struct {
	Results []models.SearchResult `json:"results"`
}

// Search runs a multi-search and returns movie/tv hits only. Results are
// cached: the raw response briefly on disk, each hit written through to the
// media ledger.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	cacheKey := cacheKeyFor("search", c.language, query)
	if c.responses != nil {
		var cached []models.SearchResult
		if ok, _ := c.responses.get(cacheKey, &cached); ok {
			return cached, nil
		}
	}

	var resp searchResponse
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", c.language)
	params.Set("page", "1")
	if err := c.get(ctx, "/search/multi", params, &resp); err != nil {
		return nil, err
	}

	// Multi-search also returns people; keep movies and series only.
	filtered := make([]models.SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		if !r.MediaType.IsValid() {
			continue
		}
		filtered = append(filtered, r)
	}

	if c.media != nil {
		for _, r := range filtered {
			item := models.MediaItem{
				ID:          r.ID,
				MediaType:   r.MediaType,
				Title:       r.DisplayName(),
				GenreIDs:    joinGenreIDs(r.GenreIDs),
				ReleaseDate: r.DisplayDate(),
				Overview:    r.Overview,
			}
			if item.Title == "" {
				item.Title = "Unknown"
			}
			if err := c.media.Upsert(item); err != nil {
				log.Printf("[tmdb] cache write-through failed for %d/%s: %v", r.ID, r.MediaType, err)
			}
		}
	}

	if c.responses != nil {
		if err := c.responses.set(cacheKey, filtered); err != nil {
			log.Printf("[tmdb] response cache write failed: %v", err)
		}
	}
	return filtered, nil
}

// Details fetches the detail payload for one title.
func (c *Client) Details(ctx context.Context, id int64, mediaType models.MediaType) (*models.Details, error) {
	if !mediaType.IsValid() {
		return nil, fmt.Errorf("invalid media type %q", mediaType)
	}
	var details models.Details
	params := url.Values{}
	params.Set("language", c.language)
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", mediaType, id), params, &details); err != nil {
		return nil, err
	}
	details.MediaType = mediaType
	return &details, nil
}

type genreListResponse struct {
	Genres []models.Genre `json:"genres"`
}

// Genres returns the merged movie and tv genre id to name mapping.
func (c *Client) Genres(ctx context.Context) (map[int]string, error) {
	cacheKey := cacheKeyFor("genres", c.language, "")
	if c.responses != nil {
		var cached map[int]string
		if ok, _ := c.responses.get(cacheKey, &cached); ok {
			return cached, nil
		}
	}

	genres := make(map[int]string)
	params := url.Values{}
	params.Set("language", c.language)
	for _, path := range []string{"/genre/movie/list", "/genre/tv/list"} {
		var resp genreListResponse
		if err := c.get(ctx, path, cloneValues(params), &resp); err != nil {
			return nil, err
		}
		for _, g := range resp.Genres {
			genres[g.ID] = g.Name
		}
	}

	if c.responses != nil {
		if err := c.responses.set(cacheKey, genres); err != nil {
			log.Printf("[tmdb] response cache write failed: %v", err)
		}
	}
	return genres, nil
}

type watchProvidersResponse struct {
	Results map[string]models.WatchProviders `json:"results"`
}

// WatchProviders returns streaming/rent/buy availability for one country.
// Returns nil when the provider has no data for that country.
func (c *Client) WatchProviders(ctx context.Context, id int64, countryCode string, mediaType models.MediaType) (*models.WatchProviders, error) {
	if !mediaType.IsValid() {
		return nil, fmt.Errorf("invalid media type %q", mediaType)
	}
	var resp watchProvidersResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/watch/providers", mediaType, id), url.Values{}, &resp); err != nil {
		return nil, err
	}
	providers, ok := resp.Results[countryCode]
	if !ok {
		return nil, nil
	}
	return &providers, nil
}

func joinGenreIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return strings.Join(parts, ", ")
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		for _, val := range vals {
			out.Add(k, val)
		}
	}
	return out
}
