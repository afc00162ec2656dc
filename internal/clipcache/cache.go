package clipcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"clipforge/internal/logging"
)

// DefaultTTL bounds how long a clip stays reprocessable without rerunning
// the full pipeline.
const DefaultTTL = 30 * 24 * time.Hour

// Entry is the minimal clip descriptor kept for single-clip regeneration.
type Entry struct {
	JobID    string    `json:"job_id"`
	ClipID   string    `json:"id"`
	Start    float64   `json:"start"`
	End      float64   `json:"end"`
	Title    string    `json:"title"`
	CachedAt time.Time `json:"cached_at"`
}

// Cache provides thread-safe access to the reprocess cache. Entries expire
// after the configured TTL; an expired or missing entry reads as absent, not
// as an error.
type Cache struct {
	path    string
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]Entry // keyed by jobID + clipID
}

// NewCache creates a cache backed by the given file. An empty path makes the
// cache non-functional (all operations become no-ops). The file is created
// lazily on first Store call.
func NewCache(path string, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "clipcache")
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &Cache{
		path:    path,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]Entry),
	}

	if path == "" {
		return c
	}

	if err := c.load(); err != nil {
		logger.Warn("failed to load reprocess cache",
			logging.String(logging.FieldEventType, "clipcache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "cache will start empty; affected clips need full reprocessing"))
	}

	return c
}

func cacheKey(jobID, clipID string) string {
	return jobID + "/" + clipID
}

// Lookup returns the entry for the given job and clip if present and not
// expired.
func (c *Cache) Lookup(jobID, clipID string) (Entry, bool) {
	jobID = strings.TrimSpace(jobID)
	clipID = strings.TrimSpace(clipID)
	if jobID == "" || clipID == "" || c.path == "" {
		return Entry{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[cacheKey(jobID, clipID)]
	if !found || c.expired(entry) {
		return Entry{}, false
	}
	return entry, true
}

// Store upserts an entry and persists to disk.
func (c *Cache) Store(entry Entry) error {
	entry.JobID = strings.TrimSpace(entry.JobID)
	entry.ClipID = strings.TrimSpace(entry.ClipID)
	if entry.JobID == "" {
		return errors.New("job ID cannot be empty")
	}
	if entry.ClipID == "" {
		return errors.New("clip ID cannot be empty")
	}
	if c.path == "" {
		return nil
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(entry.JobID, entry.ClipID)] = entry

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cached clip descriptor",
		logging.String(logging.FieldJobID, entry.JobID),
		logging.String("clip_id", entry.ClipID),
		logging.String("title", entry.Title))

	return nil
}

// Remove deletes all entries belonging to the given job.
func (c *Cache) Remove(jobID string) error {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return errors.New("job ID cannot be empty")
	}
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if entry.JobID == jobID {
			delete(c.entries, key)
			removed++
		}
	}
	if removed == 0 {
		return nil
	}

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("removed job from reprocess cache",
		logging.String(logging.FieldJobID, jobID),
		logging.Int("entry_count", removed))
	return nil
}

// Sweep drops expired entries and persists the result when anything changed.
func (c *Cache) Sweep() (int, error) {
	if c.path == "" {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if c.expired(entry) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	if err := c.save(); err != nil {
		return removed, fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("swept expired reprocess entries", logging.Int("entry_count", removed))
	return removed, nil
}

// List returns the live entries for a job sorted by clip ID.
func (c *Cache) List(jobID string) []Entry {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var entries []Entry
	for _, entry := range c.entries {
		if entry.JobID == jobID && !c.expired(entry) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ClipID < entries[j].ClipID
	})
	return entries
}

// Count returns the number of entries, including expired ones not yet swept.
func (c *Cache) Count() int {
	if c.path == "" {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *Cache) expired(entry Entry) bool {
	return c.now().Sub(entry.CachedAt) > c.ttl
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.JobID) == "" || strings.TrimSpace(entry.ClipID) == "" {
			continue
		}
		c.entries[cacheKey(entry.JobID, entry.ClipID)] = entry
	}

	c.logger.Debug("loaded reprocess cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))

	return nil
}

// save writes the cache to disk atomically.
func (c *Cache) save() error {
	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].JobID != entries[j].JobID {
			return entries[i].JobID < entries[j].JobID
		}
		return entries[i].ClipID < entries[j].ClipID
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
