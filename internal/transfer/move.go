package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pvrsync/internal/checksum"
	"pvrsync/internal/fileutil"
	"pvrsync/internal/ledger"
)

// transferOne checksums and moves a single recording plus its sidecar to the
// share. The media file moves first; a recording without a sidecar on the
// share is detectable, a sidecar without its recording is just noise.
func (m *Manager) transferOne(ctx context.Context, src string) error {
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		m.log.Debug("recording already gone, skipping", "recording", src)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	started := m.now()
	sidecar, err := checksum.EnsureSidecar(src, m.cfg.ChecksumBlockSize(), m.cfg.Transfer.RecomputeChecksums)
	if err != nil {
		return m.fail(ctx, src, "", info.Size(), started, fmt.Errorf("checksum: %w", err))
	}
	digest, err := sidecarDigest(sidecar)
	if err != nil {
		return m.fail(ctx, src, "", info.Size(), started, err)
	}

	dstMedia := filepath.Join(m.cfg.Paths.ShareDir, filepath.Base(src))
	dstSidecar := filepath.Join(m.cfg.Paths.ShareDir, filepath.Base(sidecar))

	if err := fileutil.MoveFile(src, dstMedia); err != nil {
		return m.fail(ctx, src, digest, info.Size(), started, err)
	}
	if err := fileutil.MoveFile(sidecar, dstSidecar); err != nil {
		return m.fail(ctx, src, digest, info.Size(), started, fmt.Errorf("sidecar: %w", err))
	}

	finished := m.now()
	m.log.Info("recording transferred",
		"recording", src,
		"destination", dstMedia,
		"digest", digest,
		"bytes", info.Size(),
		"duration", finished.Sub(started).Round(10*time.Millisecond))
	m.record(ctx, ledger.Record{
		Source:      src,
		Destination: dstMedia,
		Digest:      digest,
		SizeBytes:   info.Size(),
		Outcome:     ledger.OutcomeTransferred,
		Duration:    finished.Sub(started),
		StartedAt:   started,
		FinishedAt:  finished,
	})
	return nil
}

// fail alerts, records the failed attempt, and passes the error back.
func (m *Manager) fail(ctx context.Context, src, digest string, size int64, started time.Time, cause error) error {
	m.alert(ctx, "transfer failed",
		fmt.Sprintf("Recording %s (checksum %s) could not be transferred to %s:\n%v\nThe source file has been left in place.",
			src, filepath.Base(checksum.SidecarPath(src)), m.cfg.Paths.ShareDir, cause))
	finished := m.now()
	m.record(ctx, ledger.Record{
		Source:      src,
		Destination: filepath.Join(m.cfg.Paths.ShareDir, filepath.Base(src)),
		Digest:      digest,
		SizeBytes:   size,
		Outcome:     ledger.OutcomeFailed,
		Error:       cause.Error(),
		Duration:    finished.Sub(started),
		StartedAt:   started,
		FinishedAt:  finished,
	})
	return cause
}

// sidecarDigest extracts the hex digest from a sidecar's
// "<digest> *<basename>" line.
func sidecarDigest(sidecar string) (string, error) {
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return "", fmt.Errorf("read sidecar %s: %w", sidecar, err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("sidecar %s is empty", sidecar)
	}
	return fields[0], nil
}
