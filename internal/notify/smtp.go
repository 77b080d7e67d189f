package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"golang.org/x/oauth2"

	"pvrsync/internal/config"
)

const (
	gmailHost     = "smtp.gmail.com"
	gmailPort     = 587
	gmailTokenURL = "https://oauth2.googleapis.com/token"
	gmailScope    = "https://mail.google.com/"
)

type smtpNotifier struct {
	email config.Email
	smtp  config.SMTP
}

func newSMTPNotifier(cfg *config.Config) Notifier {
	return &smtpNotifier{email: cfg.Email, smtp: cfg.SMTP}
}

func (n *smtpNotifier) Send(ctx context.Context, subject, textBody, htmlBody string) error {
	msg, err := buildMessage(n.email, subject, textBody, htmlBody)
	if err != nil {
		return err
	}

	opts := []mail.Option{mail.WithPort(n.smtp.Port)}
	if n.smtp.StartTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if n.smtp.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(n.smtp.Username),
			mail.WithPassword(n.smtp.Password),
		)
	}

	client, err := mail.NewClient(n.smtp.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send via %s: %w", n.smtp.Host, err)
	}
	return nil
}

// gmailNotifier sends through Gmail with an XOAUTH2 access token minted from
// the configured refresh token on every send. Access tokens expire after an
// hour, so caching one across invocations of a run-to-completion process
// buys nothing.
type gmailNotifier struct {
	email config.Email
	gmail config.Gmail
}

func newGmailNotifier(cfg *config.Config) Notifier {
	return &gmailNotifier{email: cfg.Email, gmail: cfg.Gmail}
}

func (n *gmailNotifier) Send(ctx context.Context, subject, textBody, htmlBody string) error {
	msg, err := buildMessage(n.email, subject, textBody, htmlBody)
	if err != nil {
		return err
	}

	token, err := n.accessToken(ctx)
	if err != nil {
		return fmt.Errorf("refresh gmail token: %w", err)
	}

	client, err := mail.NewClient(gmailHost,
		mail.WithPort(gmailPort),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthXOAUTH2),
		mail.WithUsername(n.gmail.User),
		mail.WithPassword(token),
	)
	if err != nil {
		return fmt.Errorf("gmail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send via gmail: %w", err)
	}
	return nil
}

func (n *gmailNotifier) accessToken(ctx context.Context) (string, error) {
	conf := &oauth2.Config{
		ClientID:     n.gmail.ClientID,
		ClientSecret: n.gmail.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: gmailTokenURL},
		Scopes:       []string{gmailScope},
	}
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: n.gmail.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
