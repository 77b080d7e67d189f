package transfer

import "errors"

// ErrDeferred reports that a recording is in progress or imminent, so the
// whole invocation backed off. Deferral is the normal quiet outcome, not a
// failure; callers exit zero on it.
var ErrDeferred = errors.New("transfer deferred: recording in progress or imminent")

// ErrShareUnavailable reports that the destination share is not in a state
// any transfer could succeed against. Callers exit nonzero so cron and
// systemd surface it.
var ErrShareUnavailable = errors.New("destination share unavailable")
