package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"logodepot/internal/catalog"
)

func newTestStore(t *testing.T) (*catalog.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "logos.json")
	return catalog.Open(path), path
}

func TestEmptyStoreAssignsOne(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	records, err := store.List()
	require.NoError(t, err, "List error")
	require.Empty(t, records, "fresh store should be empty")

	rec, err := store.Insert(catalog.Record{OriginalName: "first.png", URL: "https://img.example.com/1"})
	require.NoError(t, err, "Insert error")
	require.Equal(t, 1, rec.ID, "first record gets ID 1")
}

func TestInsertUsesMaxIDPlusOne(t *testing.T) {
	t.Parallel()

	store, path := newTestStore(t)

	// Gaps in the ID sequence must not be reused.
	seed := `[
        {"id": 3, "original_name": "c.png", "url": "u3"},
        {"id": 7, "original_name": "g.png", "url": "u7"},
        {"id": 2, "original_name": "b.png", "url": "u2"}
    ]`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644), "seeding catalog file")

	rec, err := store.Insert(catalog.Record{OriginalName: "h.png", URL: "u8"})
	require.NoError(t, err, "Insert error")
	require.Equal(t, 8, rec.ID, "ID should be max(existing)+1")
}

func TestListSortedByID(t *testing.T) {
	t.Parallel()

	store, path := newTestStore(t)

	seed := `[{"id": 5, "original_name": "e"}, {"id": 1, "original_name": "a"}, {"id": 3, "original_name": "c"}]`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644), "seeding catalog file")

	records, err := store.List()
	require.NoError(t, err, "List error")
	require.Len(t, records, 3, "record count")
	require.Equal(t, []int{1, 3, 5}, []int{records[0].ID, records[1].ID, records[2].ID}, "ascending order")
}

func TestCorruptFileLoadsEmpty(t *testing.T) {
	t.Parallel()

	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644), "writing corrupt file")

	records, err := store.List()
	require.NoError(t, err, "List should not fail on corrupt file")
	require.Empty(t, records, "corrupt file loads as empty collection")

	rec, err := store.Insert(catalog.Record{OriginalName: "fresh.png"})
	require.NoError(t, err, "Insert error")
	require.Equal(t, 1, rec.ID, "IDs restart after corrupt file")
}

func TestRemove(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	first, err := store.Insert(catalog.Record{OriginalName: "a.png"})
	require.NoError(t, err, "Insert a error")
	second, err := store.Insert(catalog.Record{OriginalName: "b.png"})
	require.NoError(t, err, "Insert b error")

	removed, err := store.Remove(first.ID)
	require.NoError(t, err, "Remove error")
	require.True(t, removed, "existing record should be removed")

	_, ok := store.Get(first.ID)
	require.False(t, ok, "removed record should be gone")
	_, ok = store.Get(second.ID)
	require.True(t, ok, "other record should survive")
}

func TestRemoveMissingLeavesStoreUnchanged(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	_, err := store.Insert(catalog.Record{OriginalName: "a.png"})
	require.NoError(t, err, "Insert error")

	removed, err := store.Remove(42)
	require.NoError(t, err, "Remove error")
	require.False(t, removed, "missing record cannot be removed")

	records, err := store.List()
	require.NoError(t, err, "List error")
	require.Len(t, records, 1, "cardinality must be unchanged")
}

func TestPersistenceAcrossReopen(t *testing.T) {
	t.Parallel()

	store, path := newTestStore(t)

	rec, err := store.Insert(catalog.Record{OriginalName: "persist.png", URL: "u", PublicID: "p"})
	require.NoError(t, err, "Insert error")

	reopened := catalog.Open(path)
	got, ok := reopened.Get(rec.ID)
	require.True(t, ok, "record should survive reopen")
	require.Equal(t, rec, got, "record round-trip")
}
