package database

import (
	"database/sql"
	"fmt"

	"cinetrack/models"
)

// MediaRepository caches provider metadata so listings and stats do not need
// another round-trip to the provider.
type MediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a media repository on the given connection.
func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Upsert inserts or replaces the cached metadata row for (id, media_type).
func (r *MediaRepository) Upsert(item models.MediaItem) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO media (id, media_type, title, genre_ids, release_date, overview)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, string(item.MediaType), item.Title, item.GenreIDs, item.ReleaseDate, item.Overview)
	if err != nil {
		return fmt.Errorf("upsert media %d/%s: %w", item.ID, item.MediaType, err)
	}
	return nil
}

// Get returns the cached row for (id, media_type), or nil if absent.
func (r *MediaRepository) Get(id int64, mediaType models.MediaType) (*models.MediaItem, error) {
	row := r.db.QueryRow(`
		SELECT id, media_type, title, COALESCE(genre_ids, ''), COALESCE(release_date, ''), COALESCE(overview, '')
		FROM media WHERE id = ? AND media_type = ?`, id, string(mediaType))

	var item models.MediaItem
	var mt string
	err := row.Scan(&item.ID, &mt, &item.Title, &item.GenreIDs, &item.ReleaseDate, &item.Overview)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media %d/%s: %w", id, mediaType, err)
	}
	item.MediaType = models.MediaType(mt)
	return &item, nil
}
