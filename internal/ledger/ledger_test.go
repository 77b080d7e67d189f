package ledger_test

import (
	"context"
	"testing"
	"time"

	"pvrsync/internal/ledger"
	"pvrsync/internal/testsupport"
)

func TestInsertAssignsIDAndTimestamps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	rec, err := store.Insert(context.Background(), ledger.Record{
		Source:      "/recordings/show.ts",
		Destination: "/mnt/nas-pvr/show.ts",
		Digest:      "abc123",
		SizeBytes:   4096,
		Outcome:     ledger.OutcomeTransferred,
		Duration:    1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected generated id")
	}
	if rec.StartedAt.IsZero() || rec.FinishedAt.IsZero() {
		t.Fatal("expected timestamps to be defaulted")
	}
}

func TestInsertRequiresOutcome(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	if _, err := store.Insert(context.Background(), ledger.Record{Source: "x"}); err == nil {
		t.Fatal("expected error for missing outcome")
	}
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, outcome := range []string{ledger.OutcomeTransferred, ledger.OutcomeFailed, ledger.OutcomeReconciled} {
		_, err := store.Insert(ctx, ledger.Record{
			Source:     "/recordings/a.ts",
			Outcome:    outcome,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + 30*time.Second),
		})
		if err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}

	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Outcome != ledger.OutcomeReconciled || records[1].Outcome != ledger.OutcomeFailed {
		t.Fatalf("wrong ordering: %q then %q", records[0].Outcome, records[1].Outcome)
	}
}

func TestFindBySource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	for _, src := range []string{"/recordings/a.ts", "/recordings/b.ts", "/recordings/a.ts"} {
		if _, err := store.Insert(ctx, ledger.Record{Source: src, Outcome: ledger.OutcomeTransferred}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	records, err := store.FindBySource(ctx, "/recordings/a.ts")
	if err != nil {
		t.Fatalf("FindBySource: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for source, got %d", len(records))
	}
}

func TestOpenRejectsFutureSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	store.Close()

	// Reopening the same database is fine at the current version.
	again, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again.Close()
}
