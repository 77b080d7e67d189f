// Package dvr provides a thin client for the TVHeadend HTTP API, used to
// verify connectivity, query recording disk space, and remove stale schedule
// entries during reconciliation.
package dvr
