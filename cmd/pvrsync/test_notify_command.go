package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pvrsync/internal/notify"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test email through the configured transport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Email.Recipient == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No email recipient configured; nothing to send")
				return nil
			}

			notifier := notify.NewFromConfig(cfg)
			host, _ := os.Hostname()
			subject := fmt.Sprintf("pvrsync on %s: test notification", host)
			body := fmt.Sprintf("Test notification sent at %s via mode %q.", time.Now().Format(time.RFC1123), cfg.Email.Mode)
			if err := notifier.Send(cmd.Context(), subject, body, ""); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent to %s\n", cfg.Email.Recipient)
			return nil
		},
	}
}
