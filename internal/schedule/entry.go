package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is one scheduled-recording descriptor from the DVR log directory.
// Entries are immutable snapshots; the DVR owns the underlying files.
type Entry struct {
	// ID is the descriptor's storage key (its file name).
	ID    string
	Start time.Time
	Stop  time.Time
	// OutputPath is set once the DVR knows the recording's output file.
	OutputPath string
	// ErrorCount and DataErrorCount are nil when the DVR has not recorded
	// the corresponding counter at all.
	ErrorCount     *int
	DataErrorCount *int
}

// InProgress reports whether the entry is recording at the given instant.
func (e Entry) InProgress(now time.Time) bool {
	return !e.Start.After(now) && !e.Stop.Before(now)
}

// Finished reports whether the entry's recording window has passed.
func (e Entry) Finished(now time.Time) bool {
	return e.Stop.Before(now)
}

// Upcoming reports whether the entry has not started yet.
func (e Entry) Upcoming(now time.Time) bool {
	return e.Start.After(now)
}

// CleanErrors reports whether both error counters are missing or zero.
// TVHeadend versions differ on whether the counters are written at all, so
// an absent counter counts as clean.
func (e Entry) CleanErrors() bool {
	if e.ErrorCount != nil && *e.ErrorCount != 0 {
		return false
	}
	if e.DataErrorCount != nil && *e.DataErrorCount != 0 {
		return false
	}
	return true
}

// descriptor is the on-disk JSON shape of a schedule entry.
type descriptor struct {
	Start      *int64 `json:"start"`
	Stop       *int64 `json:"stop"`
	Filename   string `json:"filename"`
	Errors     *int   `json:"errors"`
	DataErrors *int   `json:"data_errors"`
}

// parseEntry decodes one descriptor file's contents. Any unparseable
// descriptor is a hard error; the caller aborts the whole sweep rather than
// transferring against a schedule it cannot trust.
func parseEntry(id string, data []byte) (Entry, error) {
	var d descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Entry{}, fmt.Errorf("descriptor %s: %w", id, err)
	}
	if d.Start == nil || d.Stop == nil {
		return Entry{}, fmt.Errorf("descriptor %s: missing start or stop", id)
	}
	start := time.Unix(*d.Start, 0)
	stop := time.Unix(*d.Stop, 0)
	if stop.Before(start) {
		return Entry{}, fmt.Errorf("descriptor %s: stop %d precedes start %d", id, *d.Stop, *d.Start)
	}
	return Entry{
		ID:             id,
		Start:          start,
		Stop:           stop,
		OutputPath:     d.Filename,
		ErrorCount:     d.Errors,
		DataErrorCount: d.DataErrors,
	}, nil
}
