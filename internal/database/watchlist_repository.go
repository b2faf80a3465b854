package database

import (
	"database/sql"
	"fmt"

	"cinetrack/models"
)

// WatchlistRepository stores titles saved for later watching.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a watchlist repository on the given connection.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add saves a title on the watchlist. Returns false without modifying
// anything if the title is already present.
func (r *WatchlistRepository) Add(mediaID int64, mediaType models.MediaType) (bool, error) {
	var existing int64
	err := r.db.QueryRow(`SELECT id FROM watchlist WHERE media_id = ? AND media_type = ?`,
		mediaID, string(mediaType)).Scan(&existing)
	if err == nil {
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("check watchlist entry: %w", err)
	}

	if _, err := r.db.Exec(`INSERT INTO watchlist (media_id, media_type) VALUES (?, ?)`,
		mediaID, string(mediaType)); err != nil {
		return false, fmt.Errorf("insert watchlist entry: %w", err)
	}
	return true, nil
}

// Remove deletes a title from the watchlist. Returns whether a row was removed.
func (r *WatchlistRepository) Remove(mediaID int64, mediaType models.MediaType) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM watchlist WHERE media_id = ? AND media_type = ?`,
		mediaID, string(mediaType))
	if err != nil {
		return false, fmt.Errorf("delete watchlist entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// List returns all watchlist entries joined with cached metadata, most
// recently added first.
func (r *WatchlistRepository) List() ([]models.WatchlistEntry, error) {
	rows, err := r.db.Query(`
		SELECT w.media_id, w.media_type, COALESCE(m.title, ''), COALESCE(m.genre_ids, ''), COALESCE(m.release_date, ''), w.added_at
		FROM watchlist w
		LEFT JOIN media m ON w.media_id = m.id AND w.media_type = m.media_type
		ORDER BY w.added_at DESC, w.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	var entries []models.WatchlistEntry
	for rows.Next() {
		var e models.WatchlistEntry
		var mt string
		if err := rows.Scan(&e.MediaID, &mt, &e.Title, &e.GenreIDs, &e.ReleaseDate, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist row: %w", err)
		}
		e.MediaType = models.MediaType(mt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every watchlist entry.
func (r *WatchlistRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM watchlist`); err != nil {
		return fmt.Errorf("clear watchlist: %w", err)
	}
	return nil
}
