// Package cache persists the dataset as a local CSV snapshot so the dashboard
// does not re-download the archive on every run.
package cache

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"airtraffic-stats/domain/dataset"
)

// Store is a whole-snapshot cache: a refresh writes a complete new file and
// swaps it into place, so a reader never observes a half-written dataset.
type Store struct {
	Path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Exists reports whether a cached snapshot is present.
func (s *Store) Exists() bool {
	fi, err := os.Stat(s.Path)
	return err == nil && !fi.IsDir()
}

// Load reads the cached snapshot as a raw frame. Callers re-normalize it,
// which is deterministic, so the cache-hit path yields the same column types
// as a fresh download.
func (s *Store) Load() (*dataset.Frame, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read cache %s: %w", s.Path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("cache %s is empty", s.Path)
	}
	return dataset.FromRecords(records[0], records[1:]), nil
}

// Save writes the frame to a temporary file next to the target and renames it
// into place, replacing any previous snapshot atomically.
func (s *Store) Save(f *dataset.Frame) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	header, records := f.Records()
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to swap cache file: %w", err)
	}
	return nil
}

// GetOrRefresh returns the cached snapshot when present and readable, and
// otherwise calls fetch, saves its result and returns it. A failed save is
// logged but does not discard the fetched data.
func (s *Store) GetOrRefresh(fetch func() (*dataset.Frame, error)) (*dataset.Frame, error) {
	if s.Exists() {
		f, err := s.Load()
		if err == nil {
			slog.Info("cache.hit", "path", s.Path, "rows", f.Rows())
			return f, nil
		}
		slog.Warn("cache.read.error", "path", s.Path, "error", err)
	}
	f, err := fetch()
	if err != nil {
		return nil, err
	}
	if err := s.Save(f); err != nil {
		slog.Warn("cache.write.error", "path", s.Path, "error", err)
	} else {
		slog.Info("cache.refreshed", "path", s.Path, "rows", f.Rows())
	}
	return f, nil
}
