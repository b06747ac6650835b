package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ErrEmptySelection is returned when no rows match a selection. It is a
// warning for the current selection, not a failure of the dashboard.
var ErrEmptySelection = errors.New("no data found for this selection")

// Options lists what a user can select from the current snapshot.
type Options struct {
	SnapshotID  uuid.UUID `json:"snapshot_id"`
	Areas       []string  `json:"areas"`
	Indicators  []string  `json:"indicators"`
	YearColumns []string  `json:"year_columns"`
	Mode        Mode      `json:"mode"`
	MaxAreas    int       `json:"max_areas"`
}

// Service runs the trend pipeline for one configured data file.
// It is safe for concurrent use.
type Service struct {
	path  string
	mode  Mode
	cache *SnapshotCache

	// fixed, when set, replaces the file-backed cache.
	fixed *Snapshot
}

// NewService creates a Service over the data file at path. A nil cache gets
// a private one.
func NewService(path string, mode Mode, cache *SnapshotCache) *Service {
	if cache == nil {
		cache = NewSnapshotCache()
	}
	return &Service{path: path, mode: mode, cache: cache}
}

// NewSnapshotService creates a Service over an already loaded snapshot.
// Reload returns the same snapshot.
func NewSnapshotService(snap *Snapshot, mode Mode) *Service {
	return &Service{path: snap.Path, mode: mode, fixed: snap}
}

// Path returns the resolved data file path.
func (s *Service) Path() string { return s.path }

// Mode returns the selection mode.
func (s *Service) Mode() Mode { return s.mode }

// Snapshot returns the current validated snapshot of the data file.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s.fixed != nil {
		return s.fixed, nil
	}
	return s.cache.Get(ctx, s.path)
}

// Options returns the sorted areas and indicators of the current snapshot.
func (s *Service) Options(ctx context.Context) (*Options, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Options{
		SnapshotID:  snap.ID,
		Areas:       snap.Areas,
		Indicators:  snap.Indicators,
		YearColumns: snap.YearColumns,
		Mode:        s.mode,
		MaxAreas:    s.maxAreas(),
	}, nil
}

func (s *Service) maxAreas() int {
	if s.mode == ModeSingle {
		return 1
	}
	return MaxAreas
}

// Preview returns a copy of the first n rows of the data file.
func (s *Service) Preview(ctx context.Context, n int) (*Table, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Table.Head(n), nil
}

// Render filters the snapshot by sel, reshapes the matching rows and
// summarizes the trend. It returns an error wrapping ErrEmptySelection when
// nothing matches.
func (s *Service) Render(ctx context.Context, sel Selection) (*Result, error) {
	sel = sel.Normalize()
	if err := sel.Validate(s.mode); err != nil {
		return nil, err
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	filtered := Filter(snap.Table, sel.Areas, sel.Indicator)
	if filtered.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptySelection, sel)
	}

	records := BuildTrend(filtered, snap.YearColumns)
	stats := Summarize(records)

	slog.DebugContext(ctx, "trend built",
		"snapshot_id", snap.ID,
		"indicator", sel.Indicator,
		"areas", len(sel.Areas),
		"rows", filtered.Len(),
		"records", len(records))

	return &Result{
		Selection:  sel,
		Mode:       s.mode,
		SnapshotID: snap.ID,
		Matched:    filtered.Len(),
		Records:    records,
		Stats:      stats,
	}, nil
}

// Export renders sel and serializes its trend as CSV. It also returns the
// download file name.
func (s *Service) Export(ctx context.Context, sel Selection) ([]byte, string, error) {
	res, err := s.Render(ctx, sel)
	if err != nil {
		return nil, "", err
	}
	data, err := ExportCSV(res.Records)
	if err != nil {
		return nil, "", fmt.Errorf("export trend: %w", err)
	}
	return data, ExportFileName(res.Selection, s.mode), nil
}

// Reload drops the cached snapshot and loads the data file again.
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	if s.fixed != nil {
		return s.fixed, nil
	}
	s.cache.Invalidate(s.path)
	return s.Snapshot(ctx)
}
