package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// Descriptor mirrors the JSON layout of a TVHeadend dvr/log entry. Pointer
// fields are omitted from the JSON when nil.
type Descriptor struct {
	Start      *int64 `json:"start,omitempty"`
	Stop       *int64 `json:"stop,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Errors     *int64 `json:"errors,omitempty"`
	DataErrors *int64 `json:"data_errors,omitempty"`
}

// WriteDescriptor writes a schedule descriptor named name into dir.
func WriteDescriptor(t testing.TB, dir, name string, desc Descriptor) string {
	t.Helper()

	data, err := json.Marshal(desc)
	if err != nil {
		t.Fatalf("marshal descriptor: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write descriptor %s: %v", path, err)
	}
	return path
}

// FinishedDescriptor returns a clean descriptor for a recording that finished
// before now and produced the given output file.
func FinishedDescriptor(now time.Time, filename string) Descriptor {
	start := now.Add(-2 * time.Hour).Unix()
	stop := now.Add(-time.Hour).Unix()
	zero := int64(0)
	return Descriptor{Start: &start, Stop: &stop, Filename: filename, Errors: &zero, DataErrors: &zero}
}
