// Package logging builds the slog logger used across pvrsync.
//
// Two sinks are wired together: a console handler for interactive output and
// a tab-separated handler that appends one timestamped line per message to
// the run log under the configured log directory. The run-log format matches
// what operators already grep for: "2006-01-02 15:04:05<TAB>message".
package logging
