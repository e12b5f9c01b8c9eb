// Package cache is the local on-disk image cache fronting the remote
// storage provider. Entries are keyed by logo ID and filled lazily on the
// first read; they are only invalidated explicitly, on logo deletion or a
// bulk clear.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache stores normalized logo images under dir, one file per logo ID.
// When maxBytes is positive, the oldest entries are evicted after each
// fill until the cache fits the bound again.
type Cache struct {
	dir      string
	maxBytes int64
	group    singleflight.Group
}

// New creates the cache directory if needed and returns a Cache.
func New(dir string, maxBytes int64) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir, maxBytes: maxBytes}, nil
}

// EntryPath returns the on-disk location of the cache entry for id. The
// file may or may not exist.
func (c *Cache) EntryPath(id int) string {
	return filepath.Join(c.dir, strconv.Itoa(id)+".png")
}

// Get returns the cached bytes for id and whether an entry exists.
func (c *Cache) Get(id int) ([]byte, bool) {
	data, err := os.ReadFile(c.EntryPath(id))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Fetch returns the image for id, filling the cache from origin on a
// miss. Concurrent misses for the same id share a single origin call.
// The hit return value reports whether the bytes came from the cache.
func (c *Cache) Fetch(id int, origin func() ([]byte, error)) (data []byte, hit bool, err error) {
	if data, ok := c.Get(id); ok {
		return data, true, nil
	}

	v, err, _ := c.group.Do(strconv.Itoa(id), func() (any, error) {
		// A concurrent fill may have won the race meanwhile.
		if data, ok := c.Get(id); ok {
			return data, nil
		}

		data, err := origin()
		if err != nil {
			return nil, err
		}

		if err := c.Fill(id, data); err != nil {
			// Serving still works without the cache entry.
			slog.Warn("Unable to persist cache entry", "id", id, "err", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

// Fill persists data verbatim as the entry for id and enforces the size
// bound.
func (c *Cache) Fill(id int, data []byte) error {
	if err := os.WriteFile(c.EntryPath(id), data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}

	c.evict()
	return nil
}

// Remove deletes the entry for id. A missing entry is not an error.
func (c *Cache) Remove(id int) error {
	err := os.Remove(c.EntryPath(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache entry: %w", err)
	}
	return nil
}

// Clear deletes every entry in the cache directory and returns how many
// files were removed. Individual deletion failures are logged and
// skipped.
func (c *Cache) Clear() int {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		slog.Error("Unable to list cache dir", "dir", c.dir, "err", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Error("Unable to delete cache file", "path", path, "err", err)
			continue
		}
		removed++
	}
	return removed
}

type cacheEntry struct {
	path    string
	size    int64
	modTime time.Time
}

// evict removes oldest-modified entries until the cache fits maxBytes.
func (c *Cache) evict() {
	if c.maxBytes <= 0 {
		return
	}

	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		slog.Error("Unable to list cache dir for eviction", "dir", c.dir, "err", err)
		return
	}

	var (
		entries []cacheEntry
		total   int64
	)
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		entries = append(entries, cacheEntry{
			path:    filepath.Join(c.dir, entry.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
		total += info.Size()
	}

	if total <= c.maxBytes {
		return
	}

	slices.SortFunc(entries, func(a, b cacheEntry) int { return a.modTime.Compare(b.modTime) })

	for _, entry := range entries {
		if total <= c.maxBytes {
			break
		}

		if err := os.Remove(entry.path); err != nil {
			slog.Error("Unable to evict cache file", "path", entry.path, "err", err)
			continue
		}

		slog.Debug("Evicted cache file", "path", entry.path, "size", entry.size)
		total -= entry.size
	}
}
