package schedule

import (
	"fmt"
	"time"
)

// Decision is the conflict-window verdict for a proposed transfer.
type Decision struct {
	Clear  bool
	Reason string
}

// Evaluate decides whether a transfer may run at the given instant. It fails
// closed: any in-progress recording, or any upcoming recording starting
// within the guard interval, vetoes the transfer. Moving a large file to the
// share is I/O-heavy and must never starve a live or imminent recording of
// disk bandwidth.
func Evaluate(now time.Time, entries []Entry, guard time.Duration) Decision {
	limit := now.Add(guard)
	for _, entry := range entries {
		if entry.InProgress(now) {
			return Decision{Reason: fmt.Sprintf("recording %s in progress until %s", entry.ID, entry.Stop.Format(time.RFC3339))}
		}
		if entry.Upcoming(now) && entry.Start.Before(limit) {
			return Decision{Reason: fmt.Sprintf("recording %s starts at %s, within the guard interval", entry.ID, entry.Start.Format(time.RFC3339))}
		}
	}
	return Decision{Clear: true}
}

// ClearToTransfer applies Evaluate to a snapshot's entries.
func (s Snapshot) ClearToTransfer(now time.Time, guard time.Duration) Decision {
	return Evaluate(now, s.Entries, guard)
}

// NextWithinGuard reports whether the snapshot's next upcoming recording
// starts before now+guard. Used for the per-item re-check during the backlog
// sweep, where time may have advanced since the snapshot was taken.
func (s Snapshot) NextWithinGuard(now time.Time, guard time.Duration) bool {
	return s.HasNext && s.NextStart.Before(now.Add(guard))
}
