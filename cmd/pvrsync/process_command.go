package main

import (
	"errors"

	"github.com/spf13/cobra"

	"pvrsync/internal/ledger"
	"pvrsync/internal/transfer"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <recording> [status]",
		Short: "Transfer one finished recording, then sweep the backlog",
		Long: "Invoked by the DVR's post-recording hook with the recording path and its\n" +
			"completion status. A status other than OK raises an alert instead of a\n" +
			"transfer. The backlog sweep runs either way.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := ""
			if len(args) > 1 {
				status = args[1]
			}
			return runTransfer(ctx, func(m *transfer.Manager) error {
				return m.ProcessRecording(cmd.Context(), args[0], status)
			})
		},
	}
}

func newSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Transfer every finished recording left behind by earlier runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransfer(ctx, func(m *transfer.Manager) error {
				return m.SweepBacklog(cmd.Context())
			})
		},
	}
}

// runTransfer builds the manager under the instance lock and maps deferral
// to a quiet success.
func runTransfer(ctx *commandContext, fn func(*transfer.Manager) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	log, err := ctx.logger()
	if err != nil {
		return err
	}

	return ctx.withLock(log, func() error {
		history, err := ledger.Open(cfg)
		if err != nil {
			return err
		}
		defer history.Close()

		m := transfer.NewManager(cfg, log, transfer.Deps{History: history})
		if err := fn(m); err != nil {
			if errors.Is(err, transfer.ErrDeferred) {
				return nil
			}
			log.Error("run failed", "error", err)
			return err
		}
		return nil
	})
}
