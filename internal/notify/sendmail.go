package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"pvrsync/internal/config"
)

// sendmailNotifier hands the rendered message to a local sendmail-compatible
// binary (ssmtp by default). The message is spooled to a temporary file and
// fed through stdin; ssmtp misbehaves when fed from a pipe that closes early,
// so a real file keeps the handoff deterministic.
type sendmailNotifier struct {
	email  config.Email
	binary string
}

func newSendmailNotifier(cfg *config.Config) Notifier {
	return &sendmailNotifier{email: cfg.Email, binary: cfg.Sendmail.Binary}
}

func (n *sendmailNotifier) Send(ctx context.Context, subject, textBody, htmlBody string) error {
	msg, err := buildMessage(n.email, subject, textBody, htmlBody)
	if err != nil {
		return err
	}

	spool, err := os.CreateTemp("", "pvrsync-mail-*.eml")
	if err != nil {
		return fmt.Errorf("spool message: %w", err)
	}
	defer func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}()

	if _, err := msg.WriteTo(spool); err != nil {
		return fmt.Errorf("render message: %w", err)
	}
	if _, err := spool.Seek(0, 0); err != nil {
		return fmt.Errorf("rewind spool: %w", err)
	}

	cmd := exec.CommandContext(ctx, n.binary, n.email.Recipient)
	cmd.Stdin = spool
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w (output: %s)", n.binary, err, string(out))
	}
	return nil
}
