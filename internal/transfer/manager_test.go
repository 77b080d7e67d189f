package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pvrsync/internal/checksum"
	"pvrsync/internal/config"
	"pvrsync/internal/dvr"
	"pvrsync/internal/ledger"
	"pvrsync/internal/share"
	"pvrsync/internal/testsupport"
)

type stubNotifier struct {
	subjects []string
	bodies   []string
}

func (s *stubNotifier) Send(_ context.Context, subject, textBody, _ string) error {
	s.subjects = append(s.subjects, subject)
	s.bodies = append(s.bodies, textBody)
	return nil
}

type stubProber struct {
	state share.State
	err   error
}

func (s stubProber) Probe(context.Context) (share.State, error) { return s.state, s.err }

type stubDVR struct {
	removed []string
}

func (s *stubDVR) Enabled() bool { return true }

func (s *stubDVR) Ping(context.Context) (dvr.ServerInfo, error) {
	return dvr.ServerInfo{}, nil
}

func (s *stubDVR) DiskSpace(context.Context) (dvr.DiskSpace, error) {
	return dvr.DiskSpace{}, nil
}

func (s *stubDVR) RemoveEntry(_ context.Context, uuid string) error {
	s.removed = append(s.removed, uuid)
	return nil
}

func newTestManager(t *testing.T, cfg *config.Config, notifier *stubNotifier, history *ledger.Store) *Manager {
	t.Helper()
	if err := os.MkdirAll(cfg.Paths.ShareDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.Paths.DVRLogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	m := NewManager(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), Deps{
		Notifier: notifier,
		History:  history,
		Prober:   stubProber{state: share.State{Mounted: true, Writable: true}},
	})
	return m
}

func TestSweepTransfersCompletedRecording(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &stubNotifier{}
	history := testsupport.MustOpenLedger(t, cfg)
	m := newTestManager(t, cfg, notifier, history)

	now := time.Now()
	recording := filepath.Join(testsupport.BaseDir(cfg), "recordings", "show.ts")
	testsupport.WriteFile(t, recording, 64*1024)
	testsupport.WriteDescriptor(t, cfg.Paths.DVRLogDir, "entry1",
		testsupport.FinishedDescriptor(now, recording))

	if err := m.SweepBacklog(context.Background()); err != nil {
		t.Fatalf("SweepBacklog: %v", err)
	}

	dstMedia := filepath.Join(cfg.Paths.ShareDir, "show.ts")
	dstSidecar := filepath.Join(cfg.Paths.ShareDir, "show.sha2")
	if _, err := os.Stat(dstMedia); err != nil {
		t.Fatalf("media not at destination: %v", err)
	}
	data, err := os.ReadFile(dstSidecar)
	if err != nil {
		t.Fatalf("sidecar not at destination: %v", err)
	}
	if !strings.Contains(string(data), " *show.ts") {
		t.Fatalf("unexpected sidecar content %q", data)
	}
	if _, err := os.Stat(recording); !os.IsNotExist(err) {
		t.Fatal("source recording should be gone")
	}
	if len(notifier.subjects) != 0 {
		t.Fatalf("no alerts expected, got %v", notifier.subjects)
	}

	records, err := history.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Outcome != ledger.OutcomeTransferred {
		t.Fatalf("expected one transferred record, got %+v", records)
	}
	if records[0].Digest == "" || records[0].SizeBytes != 64*1024 {
		t.Fatalf("record missing digest or size: %+v", records[0])
	}
}

func TestSweepDefersOnImminentRecording(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &stubNotifier{}
	m := newTestManager(t, cfg, notifier, nil)

	now := time.Now()
	recording := filepath.Join(testsupport.BaseDir(cfg), "show.ts")
	testsupport.WriteFile(t, recording, 1024)
	testsupport.WriteDescriptor(t, cfg.Paths.DVRLogDir, "done",
		testsupport.FinishedDescriptor(now, recording))

	upcoming := now.Add(30 * time.Minute).Unix()
	upcomingStop := now.Add(90 * time.Minute).Unix()
	testsupport.WriteDescriptor(t, cfg.Paths.DVRLogDir, "soon",
		testsupport.Descriptor{Start: &upcoming, Stop: &upcomingStop})

	if err := m.SweepBacklog(context.Background()); !errors.Is(err, ErrDeferred) {
		t.Fatalf("expected ErrDeferred, got %v", err)
	}
	if _, err := os.Stat(recording); err != nil {
		t.Fatal("recording must not move while a recording is imminent")
	}
	if len(notifier.subjects) != 0 {
		t.Fatalf("deferral must be quiet, got alerts %v", notifier.subjects)
	}
}

func TestSweepDefersOnInProgressRecording(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	m := newTestManager(t, cfg, &stubNotifier{}, nil)

	now := time.Now()
	start := now.Add(-10 * time.Minute).Unix()
	stop := now.Add(10 * time.Minute).Unix()
	testsupport.WriteDescriptor(t, cfg.Paths.DVRLogDir, "live",
		testsupport.Descriptor{Start: &start, Stop: &stop})

	if err := m.SweepBacklog(context.Background()); !errors.Is(err, ErrDeferred) {
		t.Fatalf("expected ErrDeferred, got %v", err)
	}
}

func writeBacklogEntry(t *testing.T, cfg *config.Config, id, name string) string {
	t.Helper()
	recording := filepath.Join(testsupport.BaseDir(cfg), name)
	testsupport.WriteFile(t, recording, 1024)
	testsupport.WriteDescriptor(t, cfg.Paths.DVRLogDir, id,
		testsupport.FinishedDescriptor(time.Now(), recording))
	return recording
}

func TestSweepFailsWhenShareUnavailable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &stubNotifier{}
	m := newTestManager(t, cfg, notifier, nil)
	m.prober = stubProber{state: share.State{}}
	writeBacklogEntry(t, cfg, "pending", "pending.ts")

	err := m.SweepBacklog(context.Background())
	if !errors.Is(err, ErrShareUnavailable) {
		t.Fatalf("expected ErrShareUnavailable, got %v", err)
	}
	if len(notifier.subjects) != 1 {
		t.Fatalf("expected one alert, got %v", notifier.subjects)
	}
}

func TestSweepFailsOnStaleMountTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &stubNotifier{}
	m := newTestManager(t, cfg, notifier, nil)
	m.prober = stubProber{err: share.ErrProbeTimeout}
	writeBacklogEntry(t, cfg, "pending", "pending.ts")

	err := m.SweepBacklog(context.Background())
	if !errors.Is(err, ErrShareUnavailable) {
		t.Fatalf("expected ErrShareUnavailable, got %v", err)
	}
	if len(notifier.bodies) != 1 || !strings.Contains(notifier.bodies[0], "timed out") {
		t.Fatalf("alert should mention the timeout, got %v", notifier.bodies)
	}
}

func TestSweepStaysQuietWithEmptyBacklogAndShareDown(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &stubNotifier{}
	m := newTestManager(t, cfg, notifier, nil)
	m.prober = stubProber{state: share.State{}}

	if err := m.SweepBacklog(context.Background()); err != nil {
		t.Fatalf("idle sweep must not touch the share: %v", err)
	}
	if len(notifier.subjects) != 0 {
		t.Fatalf("idle sweep must not alert, got %v", notifier.subjects)
	}
}

func TestProbeOutcomeLoggedWhenShareDown(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &stubNotifier{}
	var logs bytes.Buffer
	m := NewManager(cfg, slog.New(slog.NewTextHandler(&logs, nil)), Deps{
		Notifier: notifier,
		Prober:   stubProber{state: share.State{}},
	})
	writeBacklogEntry(t, cfg, "pending", "pending.ts")

	if err := m.SweepBacklog(context.Background()); !errors.Is(err, ErrShareUnavailable) {
		t.Fatalf("expected ErrShareUnavailable, got %v", err)
	}
	if !strings.Contains(logs.String(), "mounted=false") || !strings.Contains(logs.String(), "writable=false") {
		t.Fatalf("probe outcome pair missing from log: %q", logs.String())
	}
}

func TestProcessRecordingAlertsOnUpstreamFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &stubNotifier{}
	m := newTestManager(t, cfg, notifier, nil)

	now := time.Now()
	failed := filepath.Join(testsupport.BaseDir(cfg), "failed.ts")
	testsupport.WriteFile(t, failed, 1024)

	backlog := filepath.Join(testsupport.BaseDir(cfg), "backlog.ts")
	testsupport.WriteFile(t, backlog, 1024)
	testsupport.WriteDescriptor(t, cfg.Paths.DVRLogDir, "backlog",
		testsupport.FinishedDescriptor(now, backlog))

	if err := m.ProcessRecording(context.Background(), failed, "tuner failure"); err != nil {
		t.Fatalf("ProcessRecording: %v", err)
	}

	if len(notifier.subjects) != 1 || !strings.Contains(notifier.subjects[0], "recording failed") {
		t.Fatalf("expected one failure alert, got %v", notifier.subjects)
	}
	if _, err := os.Stat(failed); err != nil {
		t.Fatal("failed recording must not be transferred")
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.ShareDir, "backlog.ts")); err != nil {
		t.Fatal("backlog sweep should still run after an upstream failure")
	}
}

func TestProcessRecordingTransfersNamedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	m := newTestManager(t, cfg, &stubNotifier{}, nil)

	recording := filepath.Join(testsupport.BaseDir(cfg), "named.ts")
	testsupport.WriteFile(t, recording, 2048)

	if err := m.ProcessRecording(context.Background(), recording, "OK"); err != nil {
		t.Fatalf("ProcessRecording: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.ShareDir, "named.ts")); err != nil {
		t.Fatal("named recording not transferred")
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.ShareDir, "named.sha2")); err != nil {
		t.Fatal("sidecar not transferred")
	}
}

func TestProcessRecordingAcceptsPaddedStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &stubNotifier{}
	m := newTestManager(t, cfg, notifier, nil)

	recording := filepath.Join(testsupport.BaseDir(cfg), "padded.ts")
	testsupport.WriteFile(t, recording, 2048)

	// The hook hands the status over with the DVR's trailing newline intact.
	if err := m.ProcessRecording(context.Background(), recording, "OK\n"); err != nil {
		t.Fatalf("ProcessRecording: %v", err)
	}
	if len(notifier.subjects) != 0 {
		t.Fatalf("padded OK status must not alert, got %v", notifier.subjects)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.ShareDir, "padded.ts")); err != nil {
		t.Fatal("padded OK status must still transfer the recording")
	}
}

func TestTransferFailureLeavesSourceAndAlerts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	notifier := &stubNotifier{}
	history := testsupport.MustOpenLedger(t, cfg)
	m := newTestManager(t, cfg, notifier, history)

	now := time.Now()
	recording := filepath.Join(testsupport.BaseDir(cfg), "blocked.ts")
	testsupport.WriteFile(t, recording, 1024)
	testsupport.WriteDescriptor(t, cfg.Paths.DVRLogDir, "blocked",
		testsupport.FinishedDescriptor(now, recording))

	// A directory squatting on the destination name makes the move fail.
	if err := os.MkdirAll(filepath.Join(cfg.Paths.ShareDir, "blocked.ts"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := m.SweepBacklog(context.Background()); err != nil {
		t.Fatalf("per-item failures must not fail the sweep: %v", err)
	}
	if _, err := os.Stat(recording); err != nil {
		t.Fatal("source must remain after a failed move")
	}
	if len(notifier.subjects) != 1 || !strings.Contains(notifier.subjects[0], "transfer failed") {
		t.Fatalf("expected one transfer-failed alert, got %v", notifier.subjects)
	}

	records, err := history.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Outcome != ledger.OutcomeFailed {
		t.Fatalf("expected one failed record, got %+v", records)
	}
}

func TestSweepReconcilesStaleEntryLocally(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	m := newTestManager(t, cfg, &stubNotifier{}, nil)

	now := time.Now()
	gone := filepath.Join(testsupport.BaseDir(cfg), "gone.ts")
	path := testsupport.WriteDescriptor(t, cfg.Paths.DVRLogDir, "stale",
		testsupport.FinishedDescriptor(now, gone))

	if err := m.SweepBacklog(context.Background()); err != nil {
		t.Fatalf("SweepBacklog: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("stale descriptor should have been removed")
	}
}

func TestSweepReconcilesViaDVRAPI(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	m := newTestManager(t, cfg, &stubNotifier{}, nil)
	client := &stubDVR{}
	m.dvr = client

	now := time.Now()
	gone := filepath.Join(testsupport.BaseDir(cfg), "gone.ts")
	path := testsupport.WriteDescriptor(t, cfg.Paths.DVRLogDir, "uuid-42",
		testsupport.FinishedDescriptor(now, gone))

	if err := m.SweepBacklog(context.Background()); err != nil {
		t.Fatalf("SweepBacklog: %v", err)
	}
	if len(client.removed) != 1 || client.removed[0] != "uuid-42" {
		t.Fatalf("expected API removal of uuid-42, got %v", client.removed)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("API-side removal must not touch the local descriptor")
	}
}

func TestSweepKeepsStaleEntryWithErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	m := newTestManager(t, cfg, &stubNotifier{}, nil)

	now := time.Now()
	start := now.Add(-2 * time.Hour).Unix()
	stop := now.Add(-time.Hour).Unix()
	errCount := int64(3)
	path := testsupport.WriteDescriptor(t, cfg.Paths.DVRLogDir, "errored",
		testsupport.Descriptor{Start: &start, Stop: &stop, Filename: "/nonexistent/x.ts", Errors: &errCount})

	if err := m.SweepBacklog(context.Background()); err != nil {
		t.Fatalf("SweepBacklog: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("entries with recorded errors must never be reconciled away")
	}
}

func TestSweepFailsHardOnMalformedDescriptor(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	m := newTestManager(t, cfg, &stubNotifier{}, nil)

	if err := os.WriteFile(filepath.Join(cfg.Paths.DVRLogDir, "junk"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := m.SweepBacklog(context.Background()); err == nil {
		t.Fatal("malformed descriptor must fail the sweep")
	}
}

func TestTransferOneIsIdempotentOnMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	m := newTestManager(t, cfg, &stubNotifier{}, nil)

	if err := m.transferOne(context.Background(), filepath.Join(testsupport.BaseDir(cfg), "never.ts")); err != nil {
		t.Fatalf("missing source should be a quiet skip: %v", err)
	}
}

func TestTransferOnePreservesContent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	m := newTestManager(t, cfg, &stubNotifier{}, nil)

	recording := filepath.Join(testsupport.BaseDir(cfg), "verify.ts")
	testsupport.WriteFile(t, recording, 4096)
	wantDigest, err := checksum.ComputeDigest(recording, 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.transferOne(context.Background(), recording); err != nil {
		t.Fatalf("transferOne: %v", err)
	}
	gotDigest, err := checksum.ComputeDigest(filepath.Join(cfg.Paths.ShareDir, "verify.ts"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if gotDigest != wantDigest {
		t.Fatalf("content changed in flight: %s != %s", gotDigest, wantDigest)
	}
}
