package models

import "strings"

// PickBest chooses the result to act on for a query. An exact
// case-insensitive title match beats positional order; with no exact match
// the provider's first result stands. Returns nil for an empty slice.
func PickBest(results []SearchResult, query string) *SearchResult {
	if len(results) == 0 {
		return nil
	}
	want := strings.ToLower(strings.TrimSpace(query))
	for i := range results {
		if strings.ToLower(results[i].DisplayName()) == want {
			return &results[i]
		}
	}
	return &results[0]
}

// PickSeries is PickBest restricted to series-type results. Returns nil when
// no series is present, so callers can report a movie-only match explicitly.
func PickSeries(results []SearchResult, query string) *SearchResult {
	series := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if r.MediaType == MediaTypeTV {
			series = append(series, r)
		}
	}
	return PickBest(series, query)
}
