// Package preflight provides readiness checks for the paths, mounts, and
// services the transfer workflow depends on.
//
// The checks run in two contexts:
//   - The "pvrsync doctor" command runs RunAll and emails a consolidated
//     report. Failures are reported, never fatal.
//   - The "pvrsync health" command uses CheckFreeSpace and CheckService to
//     decide whether a warning email is due.
package preflight
