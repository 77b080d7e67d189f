package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pvrsync/internal/notify"
	"pvrsync/internal/preflight"
	"pvrsync/internal/sysinfo"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check free disk space and DVR service liveness, warning by email on failure",
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

			checks := []preflight.Result{
				preflight.CheckFreeSpace(cfg),
				preflight.CheckService(cmd.Context(), sysinfo.SystemdRunner{}, cfg.TVHeadend.ServiceName),
			}

			var failures []preflight.Result
			for _, res := range checks {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", passFail(res.Passed), res.Name, res.Detail)
				if !res.Passed {
					failures = append(failures, res)
				}
			}
			if len(failures) == 0 {
				return nil
			}

			for _, res := range failures {
				log.Warn("health check failed", "check", res.Name, "detail", res.Detail)
			}
			notifier := notify.NewFromConfig(cfg)
			host, _ := os.Hostname()
			subject := fmt.Sprintf("pvrsync on %s: health warning", host)
			if err := notifier.Send(cmd.Context(), subject, doctorReport(failures), ""); err != nil {
				log.Error("health warning email failed", "error", err)
			}
			return nil
		},
	}
}
