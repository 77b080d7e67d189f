package notify

import (
	"context"

	"pvrsync/internal/config"
)

// Notifier is the alert side-channel used by the transfer workflow. Sends are
// fire-and-forget from the caller's perspective; a failed send is logged by
// the caller but never fails a transfer.
type Notifier interface {
	Send(ctx context.Context, subject, textBody, htmlBody string) error
}

// NewFromConfig builds the notifier selected by email.mode. When alerts are
// not configured a noop implementation is returned so callers never have to
// nil-check.
func NewFromConfig(cfg *config.Config) Notifier {
	if cfg == nil || cfg.Email.Recipient == "" {
		return noopNotifier{}
	}
	switch cfg.Email.Mode {
	case "smtp":
		return newSMTPNotifier(cfg)
	case "gmail":
		return newGmailNotifier(cfg)
	case "sendmail":
		return newSendmailNotifier(cfg)
	default:
		return noopNotifier{}
	}
}

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, string, string, string) error { return nil }
