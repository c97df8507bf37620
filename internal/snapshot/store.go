// Package snapshot persists one JSON document per weekly run and hands
// the most recent one back to the following run as "prior". Snapshots
// are append-only: nothing here ever rewrites history.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/formcoach/trendwatch/internal/models"
)

// ErrDuplicateSnapshot is returned by Save when a snapshot for the run
// date already exists and overwrite was not requested. It is the guard
// against an accidental re-run silently clobbering a week of history.
var ErrDuplicateSnapshot = errors.New("snapshot already exists for run date")

const (
	filePrefix = "snapshot_"
	fileSuffix = ".json"
)

// Store reads and writes dated snapshot files under a single directory.
type Store struct {
	dir string
	log *logrus.Logger
}

func NewStore(dir string, log *logrus.Logger) *Store {
	return &Store{dir: dir, log: log}
}

func (s *Store) path(runDate string) string {
	return filepath.Join(s.dir, filePrefix+runDate+fileSuffix)
}

// Save persists the snapshot keyed by its run date. Without overwrite
// it fails with ErrDuplicateSnapshot if a file for that date exists.
func (s *Store) Save(snap *models.Snapshot, overwrite bool) (string, error) {
	if snap == nil || snap.RunDate == "" {
		return "", fmt.Errorf("snapshot run date is required")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := s.path(snap.RunDate)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w: %s", ErrDuplicateSnapshot, snap.RunDate)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"path":  filepath.Base(path),
		"brief": snap.BriefNumber,
	}).Info("snapshot saved")
	return path, nil
}

// LoadPrior returns the most recent snapshot strictly before the given
// run date, or nil when none exists. A snapshot that fails to parse is
// treated the same as no prior snapshot: losing one week of comparison
// is recoverable, crashing the run is not.
func (s *Store) LoadPrior(runDate string) (*models.Snapshot, error) {
	dates, err := s.List()
	if err != nil {
		return nil, err
	}

	// dates are sorted newest first
	for _, d := range dates {
		if d >= runDate {
			continue
		}
		snap, err := s.load(d)
		if err != nil {
			s.log.WithField("date", d).WithError(err).
				Warn("prior snapshot unreadable, falling back to baseline mode")
			return nil, nil
		}
		return snap, nil
	}
	return nil, nil
}

func (s *Store) load(runDate string) (*models.Snapshot, error) {
	data, err := os.ReadFile(s.path(runDate))
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}

// List returns all persisted run dates, newest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		dates = append(dates, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// NextBriefNumber numbers briefs by how many snapshots precede this
// run. A snapshot already stored for the run date itself is excluded,
// so an overwrite re-run keeps the number the original run carried.
func (s *Store) NextBriefNumber(runDate string) int {
	dates, err := s.List()
	if err != nil {
		return 1
	}
	n := 1
	for _, d := range dates {
		if d != runDate {
			n++
		}
	}
	return n
}

// SaveHTML writes the rendered brief next to the snapshots so a failed
// delivery still leaves an inspectable artifact.
func (s *Store) SaveHTML(html string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	path := filepath.Join(s.dir, "latest_brief.html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("write brief html: %w", err)
	}
	return path, nil
}
