// Package share verifies that the destination network share is mounted and
// writable before any transfer touches it.
package share

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// SentinelName is the throwaway file created at the share root to test
// writability.
const SentinelName = ".pvrsync"

// ErrProbeTimeout reports that the mount-presence test did not finish within
// the probe deadline, the signature of a stale NFS mount.
var ErrProbeTimeout = errors.New("share probe timed out (stale mount)")

// State is the transient result of one availability probe.
type State struct {
	Mounted  bool
	Writable bool
}

// Prober checks a share directory with a hard deadline around the mount test.
type Prober struct {
	dir     string
	timeout time.Duration

	// isMount is swapped out in tests to simulate mounted and hanging shares.
	isMount func(string) (bool, error)
}

// NewProber returns a Prober for the share root with the given probe timeout.
func NewProber(dir string, timeout time.Duration) *Prober {
	return &Prober{dir: dir, timeout: timeout, isMount: isMountPoint}
}

// Probe reports the share's mount and writability state.
//
// The mount test runs under a deadline: a stale NFS mount blocks stat
// indefinitely, and without the deadline the whole invocation would hang. On
// timeout the result is ErrProbeTimeout; the blocked goroutine is abandoned
// to finish whenever the kernel lets go of it. A mounted share is then
// write-tested by creating and removing a sentinel file at its root.
func (p *Prober) Probe(ctx context.Context) (State, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type mountResult struct {
		mounted bool
		err     error
	}
	resultCh := make(chan mountResult, 1)
	go func() {
		mounted, err := p.isMount(p.dir)
		resultCh <- mountResult{mounted: mounted, err: err}
	}()

	var state State
	select {
	case <-probeCtx.Done():
		return state, ErrProbeTimeout
	case result := <-resultCh:
		if result.err != nil {
			return state, fmt.Errorf("mount test for %s: %w", p.dir, result.err)
		}
		state.Mounted = result.mounted
	}

	if !state.Mounted {
		return state, nil
	}

	sentinel := filepath.Join(p.dir, SentinelName)
	file, err := os.Create(sentinel)
	if err != nil {
		return state, fmt.Errorf("write test on %s: %w", p.dir, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(sentinel)
		return state, fmt.Errorf("write test on %s: %w", p.dir, err)
	}
	if err := os.Remove(sentinel); err != nil {
		return state, fmt.Errorf("remove sentinel %s: %w", sentinel, err)
	}
	state.Writable = true
	return state, nil
}

// isMountPoint reports whether path is a filesystem mount point, using the
// device-number comparison trick: a mount point lives on a different device
// than its parent directory (or is the filesystem root itself).
func isMountPoint(path string) (bool, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return false, nil
		}
		return false, err
	}

	var parent unix.Stat_t
	if err := unix.Lstat(filepath.Dir(filepath.Clean(path)), &parent); err != nil {
		return false, err
	}
	if st.Dev != parent.Dev {
		return true, nil
	}
	return st.Ino == parent.Ino, nil
}
