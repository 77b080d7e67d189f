package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"pvrsync/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transfer attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transfers recorded yet")
				return nil
			}

			headers := []string{"When", "Recording", "Outcome", "Size", "Duration", "Detail"}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				detail := rec.Error
				if detail == "" && rec.Digest != "" {
					detail = shortDigest(rec.Digest)
				}
				rows = append(rows, []string{
					rec.StartedAt.Local().Format(time.DateTime),
					rec.Source,
					rec.Outcome,
					sizeCell(rec),
					durationCell(rec),
					detail,
				})
			}

			if isatty.IsTerminal(os.Stdout.Fd()) {
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, 3, 4))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(headers, "\t"))
			for _, row := range rows {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(row, "\t"))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show")
	return cmd
}

func sizeCell(rec ledger.Record) string {
	if rec.SizeBytes <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(rec.SizeBytes))
}

func durationCell(rec ledger.Record) string {
	if rec.Duration <= 0 {
		return ""
	}
	return rec.Duration.Round(time.Second).String()
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
