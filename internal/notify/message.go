package notify

import (
	"fmt"

	"github.com/wneessen/go-mail"

	"pvrsync/internal/config"
)

// buildMessage assembles a multipart/alternative message with whichever of
// the text and HTML bodies are present.
func buildMessage(email config.Email, subject, textBody, htmlBody string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if email.SenderName != "" {
		if err := msg.FromFormat(email.SenderName, email.Sender); err != nil {
			return nil, fmt.Errorf("sender address: %w", err)
		}
	} else if err := msg.From(email.Sender); err != nil {
		return nil, fmt.Errorf("sender address: %w", err)
	}
	if err := msg.To(email.Recipient); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	if email.ReplyTo != "" && email.ReplyTo != email.Sender {
		if email.ReplyToName != "" {
			if err := msg.ReplyToFormat(email.ReplyToName, email.ReplyTo); err != nil {
				return nil, fmt.Errorf("reply-to address: %w", err)
			}
		} else if err := msg.ReplyTo(email.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to address: %w", err)
		}
	}

	msg.Subject(subject)
	switch {
	case textBody != "" && htmlBody != "":
		msg.SetBodyString(mail.TypeTextPlain, textBody)
		msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)
	case htmlBody != "":
		msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	default:
		msg.SetBodyString(mail.TypeTextPlain, textBody)
	}
	return msg, nil
}
