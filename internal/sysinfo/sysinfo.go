// Package sysinfo answers the host-level questions the health checks ask:
// how much disk is free, and whether the DVR service is running.
package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// FreeBytes reports the free space available to unprivileged users on the
// filesystem containing path.
func FreeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return st.Bavail * uint64(st.Bsize), nil
}

// ServiceRunner reports whether a named system service is active.
type ServiceRunner interface {
	IsActive(ctx context.Context, name string) (bool, error)
}

// SystemdRunner queries service state through systemctl.
type SystemdRunner struct {
	// Command overrides the systemctl binary, used by tests.
	Command string
}

// IsActive runs "systemctl is-active <name>". The command exits non-zero for
// any state other than active, so the exit code alone is not an error.
func (r SystemdRunner) IsActive(ctx context.Context, name string) (bool, error) {
	binary := r.Command
	if binary == "" {
		binary = "systemctl"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return false, fmt.Errorf("locate %s: %w", binary, err)
	}

	out, err := exec.CommandContext(ctx, binary, "is-active", name).Output()
	state := strings.TrimSpace(string(out))
	if state == "active" {
		return true, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("query service %s: %w", name, err)
	}
	return false, nil
}
