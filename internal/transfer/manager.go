package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"pvrsync/internal/config"
	"pvrsync/internal/dvr"
	"pvrsync/internal/ledger"
	"pvrsync/internal/notify"
	"pvrsync/internal/schedule"
	"pvrsync/internal/share"
)

// Manager runs the checksum-then-move workflow against the DVR schedule and
// the destination share.
type Manager struct {
	cfg      *config.Config
	log      *slog.Logger
	notifier notify.Notifier
	dvr      dvr.Client
	history  *ledger.Store
	prober   Prober
	reader   *schedule.Reader

	// now is swapped out in tests to pin the conflict window.
	now func() time.Time
}

// Prober abstracts the share availability probe.
type Prober interface {
	Probe(ctx context.Context) (share.State, error)
}

// Deps carries optional collaborators for NewManager; zero fields fall back
// to config-driven defaults.
type Deps struct {
	Notifier notify.Notifier
	DVR      dvr.Client
	History  *ledger.Store
	Prober   Prober
}

// NewManager wires a Manager from configuration.
func NewManager(cfg *config.Config, logger *slog.Logger, deps Deps) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewFromConfig(cfg)
	}
	if deps.DVR == nil {
		deps.DVR = dvr.NewFromConfig(cfg)
	}
	if deps.Prober == nil {
		deps.Prober = share.NewProber(cfg.Paths.ShareDir, cfg.ProbeTimeout())
	}
	return &Manager{
		cfg:      cfg,
		log:      logger,
		notifier: deps.Notifier,
		dvr:      deps.DVR,
		history:  deps.History,
		prober:   deps.Prober,
		reader:   schedule.NewReader(cfg.Paths.DVRLogDir),
		now:      time.Now,
	}
}

// ProcessRecording handles one finished-recording callback from the DVR:
// gate on the schedule, verify the share, transfer the named recording, then
// sweep the backlog. An upstream status other than "OK" means the DVR already
// knows the recording failed; that raises an alert and skips the named file,
// but the backlog sweep still runs.
func (m *Manager) ProcessRecording(ctx context.Context, recording, upstreamStatus string) error {
	// The hook passes the status through from the DVR with whatever
	// whitespace the shell left on it.
	status := strings.TrimSpace(upstreamStatus)
	healthy := status == "" || status == "OK"
	if !healthy {
		m.log.Error("recording reported failed by dvr", "recording", recording, "status", status)
		m.alert(ctx, "recording failed",
			fmt.Sprintf("The DVR reported recording %s as failed: %s\nThe file will not be transferred.", recording, status))
	}

	snap, err := m.gate(ctx)
	if err != nil {
		return err
	}
	if err := m.probeShare(ctx); err != nil {
		return err
	}

	if healthy && recording != "" {
		if err := m.transferOne(ctx, recording); err != nil {
			m.log.Error("transfer failed", "recording", recording, "error", err)
		}
	}

	return m.sweep(ctx, snap)
}

// SweepBacklog runs the schedule gate and a full backlog pass with no named
// recording. Used by the standalone sweep command and by scheduled runs. An
// empty backlog ends the run before the share is probed, so an idle sweep
// with the share powered down stays quiet.
func (m *Manager) SweepBacklog(ctx context.Context) error {
	snap, err := m.gate(ctx)
	if err != nil {
		return err
	}
	if len(snap.Completed) == 0 && len(snap.Stale) == 0 {
		m.log.Info("nothing to transfer")
		return nil
	}
	if err := m.probeShare(ctx); err != nil {
		return err
	}
	return m.sweep(ctx, snap)
}

// gate reads the schedule and returns ErrDeferred when the conflict window
// vetoes the run.
func (m *Manager) gate(ctx context.Context) (schedule.Snapshot, error) {
	now := m.now()
	snap, err := m.reader.Read(now)
	if err != nil {
		return schedule.Snapshot{}, fmt.Errorf("read schedule: %w", err)
	}

	if decision := snap.ClearToTransfer(now, m.cfg.GuardInterval()); !decision.Clear {
		m.log.Info("deferring transfers", "reason", decision.Reason)
		return schedule.Snapshot{}, ErrDeferred
	}
	return snap, nil
}

// probeShare verifies the share can take transfers. The probed
// (mounted, writable) pair is logged whatever the outcome; on failure the
// alert goes out and ErrShareUnavailable comes back.
func (m *Manager) probeShare(ctx context.Context) error {
	state, err := m.prober.Probe(ctx)
	m.log.Info("share probe", "share", m.cfg.Paths.ShareDir, "mounted", state.Mounted, "writable", state.Writable)
	if err != nil || !state.Mounted || !state.Writable {
		detail := "share is not mounted"
		switch {
		case err != nil:
			detail = err.Error()
		case state.Mounted:
			detail = "share is mounted but not writable"
		}
		m.log.Error("share unavailable", "share", m.cfg.Paths.ShareDir, "detail", detail)
		m.alert(ctx, "share unavailable",
			fmt.Sprintf("No recordings can be transferred: %s\nShare: %s", detail, m.cfg.Paths.ShareDir))
		return fmt.Errorf("%w: %s", ErrShareUnavailable, detail)
	}
	return nil
}

// sweep transfers every completed backlog entry and reconciles stale ones.
// Per-item failures are alerted and recorded but never stop the sweep; an
// imminent recording stops it quietly.
func (m *Manager) sweep(ctx context.Context, snap schedule.Snapshot) error {
	for _, entry := range snap.Stale {
		m.reconcile(ctx, entry)
	}

	guard := m.cfg.GuardInterval()
	for _, entry := range snap.Completed {
		if snap.NextWithinGuard(m.now(), guard) {
			m.log.Info("stopping sweep, next recording is imminent", "next_start", snap.NextStart)
			return ErrDeferred
		}
		if err := m.transferOne(ctx, entry.OutputPath); err != nil {
			m.log.Error("backlog transfer failed", "recording", entry.OutputPath, "error", err)
		}
	}
	return nil
}

// reconcile removes a schedule entry whose recording is gone and clean.
// Failures are logged only; a leftover entry is retried on the next run.
func (m *Manager) reconcile(ctx context.Context, entry schedule.Entry) {
	var err error
	if m.dvr.Enabled() {
		err = m.dvr.RemoveEntry(ctx, entry.ID)
	} else {
		err = os.Remove(m.reader.Path(entry.ID))
	}
	if err != nil {
		m.log.Warn("reconcile failed", "entry", entry.ID, "error", err)
		return
	}
	m.log.Info("reconciled stale schedule entry", "entry", entry.ID, "recording", entry.OutputPath)
	m.record(ctx, ledger.Record{
		Source:  entry.OutputPath,
		Outcome: ledger.OutcomeReconciled,
	})
}

func (m *Manager) alert(ctx context.Context, subject, body string) {
	host, _ := os.Hostname()
	if host != "" {
		subject = fmt.Sprintf("pvrsync on %s: %s", host, subject)
	} else {
		subject = "pvrsync: " + subject
	}
	if err := m.notifier.Send(ctx, subject, body, ""); err != nil {
		m.log.Error("alert email failed", "subject", subject, "error", err)
	}
}

func (m *Manager) record(ctx context.Context, rec ledger.Record) {
	if m.history == nil {
		return
	}
	if _, err := m.history.Insert(ctx, rec); err != nil {
		m.log.Warn("history write failed", "source", rec.Source, "error", err)
	}
}
