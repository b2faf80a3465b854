package database

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"cinetrack/models"
)

// HistoryRepository stores the watch history ledger.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a history repository on the given connection.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Log records a watched title. An existing entry for the same
// (media_id, media_type) is replaced so the history never holds duplicates.
func (r *HistoryRepository) Log(mediaID int64, mediaType models.MediaType, rating float64, review string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin history log: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM history WHERE media_id = ? AND media_type = ?`,
		mediaID, string(mediaType)); err != nil {
		return fmt.Errorf("replace history entry: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO history (media_id, media_type, rating, review) VALUES (?, ?, ?, ?)`,
		mediaID, string(mediaType), rating, review); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return tx.Commit()
}

// Delete removes the history entry for (media_id, media_type).
// Returns whether a row was removed.
func (r *HistoryRepository) Delete(mediaID int64, mediaType models.MediaType) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM history WHERE media_id = ? AND media_type = ?`,
		mediaID, string(mediaType))
	if err != nil {
		return false, fmt.Errorf("delete history entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// List returns all history entries joined with cached metadata, most recent
// first. Entries whose metadata was never cached get an empty title.
func (r *HistoryRepository) List() ([]models.HistoryEntry, error) {
	rows, err := r.db.Query(`
		SELECT h.media_id, h.media_type, COALESCE(m.title, ''), h.rating, COALESCE(h.review, ''), h.watched_at
		FROM history h
		LEFT JOIN media m ON h.media_id = m.id AND h.media_type = m.media_type
		ORDER BY h.watched_at DESC, h.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var mt string
		if err := rows.Scan(&e.MediaID, &mt, &e.Title, &e.Rating, &e.Review, &e.WatchedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.MediaType = models.MediaType(mt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every history entry.
func (r *HistoryRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Stats aggregates the ledger: watched count, average rating, and genre id
// frequency taken from the comma-joined genre_ids of cached metadata.
func (r *HistoryRepository) Stats(topGenres int) (*models.Stats, error) {
	stats := &models.Stats{}

	row := r.db.QueryRow(`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM history`)
	if err := row.Scan(&stats.TotalWatched, &stats.AverageRating); err != nil {
		return nil, fmt.Errorf("aggregate history: %w", err)
	}
	if stats.TotalWatched == 0 {
		return stats, nil
	}

	rows, err := r.db.Query(`
		SELECT m.genre_ids
		FROM history h
		JOIN media m ON h.media_id = m.id AND h.media_type = m.media_type
		WHERE m.genre_ids IS NOT NULL AND m.genre_ids != ''`)
	if err != nil {
		return nil, fmt.Errorf("collect history genres: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var joined string
		if err := rows.Scan(&joined); err != nil {
			return nil, fmt.Errorf("scan genre row: %w", err)
		}
		for _, part := range strings.Split(joined, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			var id int
			if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
				counts[id]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for id, n := range counts {
		stats.TopGenres = append(stats.TopGenres, models.GenreCount{GenreID: id, Count: n})
	}
	sort.Slice(stats.TopGenres, func(i, j int) bool {
		if stats.TopGenres[i].Count != stats.TopGenres[j].Count {
			return stats.TopGenres[i].Count > stats.TopGenres[j].Count
		}
		return stats.TopGenres[i].GenreID < stats.TopGenres[j].GenreID
	})
	if topGenres > 0 && len(stats.TopGenres) > topGenres {
		stats.TopGenres = stats.TopGenres[:topGenres]
	}
	return stats, nil
}
