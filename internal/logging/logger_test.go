package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestTabHandlerWritesTimestampTabMessage(t *testing.T) {
	var runlog bytes.Buffer
	logger, err := New(Options{Level: "info", RunLog: &runlog})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("transfer complete", slog.String("recording", "show.ts"))

	line := runlog.String()
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("expected trailing newline, got %q", line)
	}
	parts := strings.SplitN(strings.TrimSuffix(line, "\n"), "\t", 2)
	if len(parts) != 2 {
		t.Fatalf("expected timestamp<TAB>message, got %q", line)
	}
	if parts[1] != "transfer complete recording=show.ts" {
		t.Fatalf("unexpected message: %q", parts[1])
	}
}

func TestTabHandlerMarksWarningsAndErrors(t *testing.T) {
	var runlog bytes.Buffer
	logger, err := New(Options{Level: "info", RunLog: &runlog})
	if err != nil {
		t.Fatal(err)
	}

	logger.Error("stale NFS mount")
	if !strings.Contains(runlog.String(), "\tERROR: stale NFS mount") {
		t.Fatalf("expected error marker, got %q", runlog.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Options{Level: "warn", Console: &console})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("quiet")
	logger.Warn("loud")

	out := console.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info message should be suppressed: %q", out)
	}
	if !strings.Contains(out, "WARN loud") {
		t.Fatalf("warn message missing: %q", out)
	}
}

func TestFanoutWritesBothSinks(t *testing.T) {
	var console, runlog bytes.Buffer
	logger, err := New(Options{Console: &console, RunLog: &runlog})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("probe finished", slog.Bool("mounted", true))

	if !strings.Contains(console.String(), "probe finished mounted=true") {
		t.Fatalf("console missing message: %q", console.String())
	}
	if !strings.Contains(runlog.String(), "probe finished mounted=true") {
		t.Fatalf("run log missing message: %q", runlog.String())
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	var console bytes.Buffer
	if _, err := New(Options{Format: "xml", Console: &console}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
