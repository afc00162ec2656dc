package clipcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reprocess.json")
	return NewCache(path, DefaultTTL, nil)
}

func TestStoreAndLookup(t *testing.T) {
	cache := newTestCache(t)
	entry := Entry{JobID: "job-1", ClipID: "clip-1", Start: 10, End: 40, Title: "Opening"}
	if err := cache.Store(entry); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, found := cache.Lookup("job-1", "clip-1")
	if !found {
		t.Fatal("expected entry to be found")
	}
	if got.Start != 10 || got.End != 40 || got.Title != "Opening" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.CachedAt.IsZero() {
		t.Fatal("expected CachedAt to be stamped")
	}
}

func TestLookupMissingIsNotError(t *testing.T) {
	cache := newTestCache(t)
	if _, found := cache.Lookup("job-1", "nope"); found {
		t.Fatal("expected absent entry")
	}
}

func TestLookupExpired(t *testing.T) {
	cache := newTestCache(t)
	entry := Entry{
		JobID:    "job-1",
		ClipID:   "clip-1",
		CachedAt: time.Now().Add(-31 * 24 * time.Hour),
	}
	if err := cache.Store(entry); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, found := cache.Lookup("job-1", "clip-1"); found {
		t.Fatal("expected expired entry to read as absent")
	}
}

func TestStoreUpserts(t *testing.T) {
	cache := newTestCache(t)
	base := Entry{JobID: "job-1", ClipID: "clip-1", Title: "first"}
	if err := cache.Store(base); err != nil {
		t.Fatalf("Store: %v", err)
	}
	base.Title = "second"
	if err := cache.Store(base); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if cache.Count() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Count())
	}
	got, _ := cache.Lookup("job-1", "clip-1")
	if got.Title != "second" {
		t.Fatalf("expected upsert, got %+v", got)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reprocess.json")
	first := NewCache(path, DefaultTTL, nil)
	if err := first.Store(Entry{JobID: "job-1", ClipID: "clip-1", Title: "kept"}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	second := NewCache(path, DefaultTTL, nil)
	got, found := second.Lookup("job-1", "clip-1")
	if !found || got.Title != "kept" {
		t.Fatalf("entry not persisted: %+v found=%v", got, found)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reprocess.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cache := NewCache(path, DefaultTTL, nil)
	if cache.Count() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Count())
	}
}

func TestRemoveDropsAllJobEntries(t *testing.T) {
	cache := newTestCache(t)
	for _, clipID := range []string{"clip-1", "clip-2"} {
		if err := cache.Store(Entry{JobID: "job-1", ClipID: clipID}); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
	if err := cache.Store(Entry{JobID: "job-2", ClipID: "clip-1"}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := cache.Remove("job-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if cache.Count() != 1 {
		t.Fatalf("expected only job-2 entry, got %d", cache.Count())
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	cache := newTestCache(t)
	if err := cache.Store(Entry{JobID: "job-1", ClipID: "old", CachedAt: time.Now().Add(-40 * 24 * time.Hour)}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := cache.Store(Entry{JobID: "job-1", ClipID: "new"}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	removed, err := cache.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 || cache.Count() != 1 {
		t.Fatalf("removed=%d count=%d", removed, cache.Count())
	}
}

func TestDisabledCacheNoops(t *testing.T) {
	cache := NewCache("", DefaultTTL, nil)
	if err := cache.Store(Entry{JobID: "job-1", ClipID: "clip-1"}); err != nil {
		t.Fatalf("Store on disabled cache: %v", err)
	}
	if _, found := cache.Lookup("job-1", "clip-1"); found {
		t.Fatal("disabled cache should never return entries")
	}
}
