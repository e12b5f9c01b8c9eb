package cache_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"logodepot/internal/cache"
)

func TestFetchFillsOnMissAndServesFromDisk(t *testing.T) {
	t.Parallel()

	c, err := cache.New(t.TempDir(), 0)
	require.NoError(t, err, "New error")

	calls := 0
	origin := func() ([]byte, error) {
		calls++
		return []byte("image bytes"), nil
	}

	data, hit, err := c.Fetch(7, origin)
	require.NoError(t, err, "first Fetch error")
	require.False(t, hit, "first read is a miss")
	require.Equal(t, []byte("image bytes"), data, "payload")
	require.Equal(t, 1, calls, "origin called once")
	require.FileExists(t, c.EntryPath(7), "entry persisted")

	data, hit, err = c.Fetch(7, origin)
	require.NoError(t, err, "second Fetch error")
	require.True(t, hit, "second read is a hit")
	require.Equal(t, []byte("image bytes"), data, "payload")
	require.Equal(t, 1, calls, "cache hit must not call the origin")
}

func TestFetchOriginFailure(t *testing.T) {
	t.Parallel()

	c, err := cache.New(t.TempDir(), 0)
	require.NoError(t, err, "New error")

	wantErr := errors.New("provider unreachable")
	_, _, err = c.Fetch(3, func() ([]byte, error) { return nil, wantErr })
	require.ErrorIs(t, err, wantErr, "origin error surfaces")

	_, ok := c.Get(3)
	require.False(t, ok, "failed fetch must not create an entry")
}

func TestRemove(t *testing.T) {
	t.Parallel()

	c, err := cache.New(t.TempDir(), 0)
	require.NoError(t, err, "New error")

	require.NoError(t, c.Fill(1, []byte("data")), "Fill error")
	require.NoError(t, c.Remove(1), "Remove error")

	_, ok := c.Get(1)
	require.False(t, ok, "removed entry should be gone")

	require.NoError(t, c.Remove(1), "removing a missing entry should not error")
}

func TestClear(t *testing.T) {
	t.Parallel()

	c, err := cache.New(t.TempDir(), 0)
	require.NoError(t, err, "New error")

	for id := 1; id <= 4; id++ {
		require.NoError(t, c.Fill(id, []byte("data")), "Fill error")
	}

	require.Equal(t, 4, c.Clear(), "all entries removed")

	for id := 1; id <= 4; id++ {
		_, ok := c.Get(id)
		require.Falsef(t, ok, "entry %d should be gone after Clear", id)
	}
}

func TestEvictionDropsOldestEntries(t *testing.T) {
	t.Parallel()

	// Three 6-byte entries against a 15-byte bound: the third fill must
	// push the oldest entry out.
	c, err := cache.New(t.TempDir(), 15)
	require.NoError(t, err, "New error")

	require.NoError(t, c.Fill(1, []byte("aaaaaa")), "Fill 1 error")
	require.NoError(t, c.Fill(2, []byte("bbbbbb")), "Fill 2 error")

	// Force a strict mtime ordering; filesystem timestamps can be too
	// coarse to rely on write order.
	now := time.Now()
	require.NoError(t, os.Chtimes(c.EntryPath(1), now.Add(-2*time.Hour), now.Add(-2*time.Hour)), "aging entry 1")
	require.NoError(t, os.Chtimes(c.EntryPath(2), now.Add(-time.Hour), now.Add(-time.Hour)), "aging entry 2")

	require.NoError(t, c.Fill(3, []byte("cccccc")), "Fill 3 error")

	_, ok := c.Get(1)
	require.False(t, ok, "oldest entry should be evicted")
	_, ok = c.Get(2)
	require.True(t, ok, "newer entry should survive")
	_, ok = c.Get(3)
	require.True(t, ok, "just-filled entry should survive")
}
