// Package checksum computes SHA-256 digests for recordings and maintains the
// sidecar checksum files that travel with them to the share.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SidecarExt is the extension of the sidecar checksum file, replacing the
// recording's own extension.
const SidecarExt = ".sha2"

// DefaultBlockSize is used when the caller passes a non-positive block size.
// Performance knob only; 128 KiB reads suit slow single-board hardware.
const DefaultBlockSize = 128 * 1024

// ComputeDigest streams the file through SHA-256 in blockSize reads and
// returns the lowercase hex digest. The file is never loaded whole.
func ComputeDigest(path string, blockSize int) (string, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	buf := make([]byte, blockSize)
	if _, err := io.CopyBuffer(hasher, file, buf); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// SidecarPath derives the sidecar path for a recording by swapping its
// extension for SidecarExt.
func SidecarPath(recording string) string {
	ext := filepath.Ext(recording)
	return strings.TrimSuffix(recording, ext) + SidecarExt
}

// EnsureSidecar writes the sidecar checksum file for the recording and
// returns its path. When the sidecar already exists and force is false the
// existing file is kept untouched, which makes a retried transfer idempotent.
//
// Sidecar content is the conventional "<digest> *<basename>" line, the
// format sha256sum verifies in binary mode.
func EnsureSidecar(recording string, blockSize int, force bool) (string, error) {
	sidecar := SidecarPath(recording)

	if !force {
		if _, err := os.Stat(sidecar); err == nil {
			return sidecar, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat %s: %w", sidecar, err)
		}
	}

	digest, err := ComputeDigest(recording, blockSize)
	if err != nil {
		return "", err
	}

	content := fmt.Sprintf("%s *%s", digest, filepath.Base(recording))
	if err := os.WriteFile(sidecar, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", sidecar, err)
	}
	return sidecar, nil
}
