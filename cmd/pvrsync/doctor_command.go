package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pvrsync/internal/notify"
	"pvrsync/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var email bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run every readiness check and report the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg, preflight.Deps{})

			rows := make([][]string, 0, len(results))
			failed := 0
			for _, res := range results {
				if !res.Passed {
					failed++
				}
				rows = append(rows, []string{res.Name, passFail(res.Passed), res.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Result", "Detail"}, rows))
			if failed > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d checks failed\n", failed, len(results))
			}

			if email {
				notifier := notify.NewFromConfig(cfg)
				host, _ := os.Hostname()
				subject := fmt.Sprintf("pvrsync on %s: diagnostics report", host)
				if err := notifier.Send(cmd.Context(), subject, doctorReport(results), ""); err != nil {
					log.Error("diagnostics email failed", "error", err)
				}
			}

			// Diagnostics report problems, they are not themselves a failure.
			return nil
		},
	}

	cmd.Flags().BoolVar(&email, "email", false, "Also email the report to the configured recipient")
	return cmd
}

func doctorReport(results []preflight.Result) string {
	var b strings.Builder
	for _, res := range results {
		fmt.Fprintf(&b, "[%s] %s: %s\n", passFail(res.Passed), res.Name, res.Detail)
	}
	return b.String()
}
