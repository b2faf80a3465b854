package binge

import "strings"

// CorrelationKey derives how a show's binge sessions are identified on the
// calendar: the free-text query sent to the event store, and the matcher that
// confirms membership on the returned candidates. There is no persisted
// mapping from show to event IDs; summary text is the only correlation.
// Keeping the heuristic behind this function means it can be swapped for a
// persisted id tag without touching the reconciler.
func CorrelationKey(showName string) (query string, matches func(summary string) bool) {
	query = "Binge " + showName
	lower := strings.ToLower(showName)
	matches = func(summary string) bool {
		return strings.Contains(strings.ToLower(summary), lower)
	}
	return query, matches
}
