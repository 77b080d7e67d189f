// Command pvrsync moves finished DVR recordings to a network share with
// checksum sidecars, defers around live and imminent recordings, sweeps the
// backlog, and reconciles stale schedule entries.
//
// It is designed to be called from the DVR's post-recording hook
// ("pvrsync process %f %e") and from cron ("pvrsync sweep").
package main
