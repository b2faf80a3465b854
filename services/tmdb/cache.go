package tmdb

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// FileCache stores JSON-encoded API responses on a filesystem with a TTL.
// The filesystem is abstracted so tests run against an in-memory one.
type FileCache struct {
	fs  afero.Fs
	dir string
	ttl time.Duration
}

// NewFileCache creates a response cache rooted at dir.
func NewFileCache(fs afero.Fs, dir string, ttl time.Duration) *FileCache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileCache{fs: fs, dir: dir, ttl: ttl}
}

func cacheKeyFor(kind, language, query string) string {
	h := sha1.Sum([]byte(kind + "|" + language + "|" + query))
	return kind + "-" + hex.EncodeToString(h[:8])
}

func (c *FileCache) get(key string, v any) (bool, error) {
	if key == "" {
		return false, errors.New("empty key")
	}
	path := filepath.Join(c.dir, key+".json")
	fi, err := c.fs.Stat(path)
	if err != nil {
		return false, nil
	}
	if time.Since(fi.ModTime()) > c.ttl {
		_ = c.fs.Remove(path)
		return false, nil
	}
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *FileCache) set(key string, v any) error {
	if key == "" {
		return errors.New("empty key")
	}
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return afero.WriteFile(c.fs, filepath.Join(c.dir, key+".json"), data, 0o644)
}

// Prune removes expired entries and returns how many were deleted.
func (c *FileCache) Prune() (int, error) {
	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		return 0, nil // cache dir not created yet
	}
	removed := 0
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		if time.Since(fi.ModTime()) > c.ttl {
			if err := c.fs.Remove(filepath.Join(c.dir, fi.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
