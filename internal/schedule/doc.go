// Package schedule reads TVHeadend scheduled-recording descriptors and
// decides when it is safe to run a transfer.
//
// The DVR keeps one JSON file per timer in its dvr/log directory. This
// package parses those descriptors, classifies them against the current time
// (completed, stale, upcoming, in progress), and evaluates the conflict
// window that protects live and imminent recordings from transfer I/O.
package schedule
