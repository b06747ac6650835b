package core

// cache.go keeps the validated snapshot of each data file in memory.
//
// A snapshot is reused while the file's modification time and size are
// unchanged. Concurrent misses for the same path share one load through
// singleflight. Failed loads are never cached so a fixed file is picked up
// on the next request.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// SnapshotCache loads and memoizes validated snapshots keyed by path.
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]*Snapshot
	group   singleflight.Group

	// load is swappable in tests.
	load func(path string) (*Table, error)
}

// NewSnapshotCache creates an empty cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[string]*Snapshot),
		load:    Load,
	}
}

// Get returns the snapshot for path, loading it if the file changed since
// the cached copy was built.
func (c *SnapshotCache) Get(ctx context.Context, path string) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	if snap := c.lookup(path, info); snap != nil {
		return snap, nil
	}

	key := fmt.Sprintf("%s|%d|%d", path, info.ModTime().UnixNano(), info.Size())
	ch := c.group.DoChan(key, func() (any, error) {
		return c.build(path, info)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (c *SnapshotCache) lookup(path string, info os.FileInfo) *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.entries[path]
	if !ok {
		return nil
	}
	if !snap.ModTime.Equal(info.ModTime()) || snap.Size != info.Size() {
		return nil
	}
	return snap
}

func (c *SnapshotCache) build(path string, info os.FileInfo) (*Snapshot, error) {
	start := time.Now()

	raw, err := c.load(path)
	if err != nil {
		return nil, err
	}
	snap, err := NewSnapshot(raw, path)
	if err != nil {
		return nil, err
	}
	snap.ModTime = info.ModTime()
	snap.Size = info.Size()

	c.mu.Lock()
	c.entries[path] = snap
	c.mu.Unlock()

	slog.Info("data file loaded",
		"path", path,
		"snapshot_id", snap.ID,
		"rows", snap.Table.Len(),
		"year_columns", len(snap.YearColumns),
		"duration", time.Since(start))

	return snap, nil
}

// NewSnapshot validates raw and wraps it as a snapshot of source. Use it for
// tables that do not come from a file on disk, such as CSV piped on stdin.
func NewSnapshot(raw *Table, source string) (*Snapshot, error) {
	table, years, err := Validate(raw)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:          uuid.New(),
		Path:        source,
		LoadedAt:    time.Now(),
		Table:       table,
		YearColumns: years,
		Areas:       distinct(table, ColArea),
		Indicators:  distinct(table, ColIndicator),
	}, nil
}

// Invalidate drops the cached snapshot for path.
func (c *SnapshotCache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Len returns the number of cached snapshots.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// distinct returns the sorted non-blank values of column, verbatim.
func distinct(t *Table, column string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Rows {
		v := r[column]
		if strings.TrimSpace(v) == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
