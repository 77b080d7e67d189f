package preflight

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"pvrsync/internal/config"
	"pvrsync/internal/schedule"
	"pvrsync/internal/share"
)

const (
	selfTestInput  = "pvrsync checksum self-test\n"
	selfTestDigest = "56ddb68d878e944c1c0d783487d838d2784e413e7a358446033acef91fdac759"
)

// CheckChecksum runs the hash implementation against a known vector.
func CheckChecksum() Result {
	const name = "Checksum self-test"
	sum := sha256.Sum256([]byte(selfTestInput))
	if hex.EncodeToString(sum[:]) != selfTestDigest {
		return Result{Name: name, Detail: "sha-256 produced an unexpected digest"}
	}
	return Result{Name: name, Passed: true, Detail: "sha-256 ok"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckShare probes the destination share without treating failure as fatal.
func CheckShare(ctx context.Context, cfg *config.Config) Result {
	const name = "Destination share"

	prober := share.NewProber(cfg.Paths.ShareDir, cfg.ProbeTimeout())
	state, err := prober.Probe(ctx)
	switch {
	case errors.Is(err, share.ErrProbeTimeout):
		return Result{Name: name, Detail: fmt.Sprintf("%s (probe timed out, stale mount?)", cfg.Paths.ShareDir)}
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Paths.ShareDir, err)}
	case !state.Mounted:
		return Result{Name: name, Detail: fmt.Sprintf("%s (not mounted)", cfg.Paths.ShareDir)}
	case !state.Writable:
		return Result{Name: name, Detail: fmt.Sprintf("%s (mounted but not writable)", cfg.Paths.ShareDir)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (mounted, writable)", cfg.Paths.ShareDir)}
}

// CheckSchedule parses the schedule and summarizes its classification
// without aborting on conflicts.
func CheckSchedule(cfg *config.Config, now time.Time) Result {
	const name = "Recording schedule"

	snap, err := schedule.NewReader(cfg.Paths.DVRLogDir).Read(now)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreadable (%v)", err)}
	}

	detail := fmt.Sprintf("%d entries, %d ready to transfer, %d stale",
		len(snap.Entries), len(snap.Completed), len(snap.Stale))
	if snap.InProgress {
		detail += ", recording in progress"
	}
	if snap.HasNext {
		detail += fmt.Sprintf(", next start %s", snap.NextStart.Format(time.RFC3339))
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
