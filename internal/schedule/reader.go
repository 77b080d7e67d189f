package schedule

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Snapshot classifies every schedule entry as of one instant.
type Snapshot struct {
	// Entries holds every parsed descriptor.
	Entries []Entry
	// Completed lists finished recordings whose output file still exists
	// locally, keyed for transfer by the backlog sweep.
	Completed []Entry
	// Stale lists finished recordings with no output file on disk and no
	// recorded errors: the file was presumably transferred already and the
	// schedule entry can be reconciled away.
	Stale []Entry
	// NextStart is the earliest upcoming start time, when HasNext is true.
	NextStart time.Time
	HasNext   bool
	// InProgress is true when any entry is currently recording.
	InProgress bool
}

// Reader lists and parses the DVR's schedule-log directory.
type Reader struct {
	dir string
}

// NewReader returns a Reader over the given schedule-log directory.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Path returns the descriptor file path for an entry ID.
func (r *Reader) Path(id string) string {
	return filepath.Join(r.dir, id)
}

// Read parses every descriptor in the directory and classifies it relative
// to now. A single malformed descriptor fails the whole read; skipping it
// could classify an active recording as absent and start a transfer under a
// live tuner.
func (r *Reader) Read(now time.Time) (Snapshot, error) {
	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list schedule directory %s: %w", r.dir, err)
	}

	var snap Snapshot
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		path := filepath.Join(r.dir, de.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return Snapshot{}, fmt.Errorf("read descriptor %s: %w", path, err)
		}
		entry, err := parseEntry(de.Name(), data)
		if err != nil {
			return Snapshot{}, err
		}
		snap.add(entry, now)
	}
	return snap, nil
}

func (s *Snapshot) add(entry Entry, now time.Time) {
	s.Entries = append(s.Entries, entry)

	if entry.InProgress(now) {
		s.InProgress = true
	}
	if entry.Upcoming(now) {
		if !s.HasNext || entry.Start.Before(s.NextStart) {
			s.NextStart = entry.Start
			s.HasNext = true
		}
	}
	if !entry.Finished(now) {
		return
	}

	if entry.OutputPath != "" {
		if _, err := os.Stat(entry.OutputPath); err == nil {
			s.Completed = append(s.Completed, entry)
			return
		}
	}
	if entry.CleanErrors() {
		s.Stale = append(s.Stale, entry)
	}
}
