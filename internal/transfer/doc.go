// Package transfer orchestrates the recording-transfer workflow: gate on the
// DVR schedule's conflict window, verify the destination share, checksum and
// move finished recordings with their sidecars, sweep the backlog, and
// reconcile stale schedule entries.
package transfer
