package notifier

import (
	"fmt"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
	"umbrella-relay/internal/config"
)

// Mailer sends plain-text notifications over SMTP. Failures are returned to
// the caller for logging; there is no retry at this layer.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

func NewMailer(cfg config.SMTPConfig, logger zerolog.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (m *Mailer) Send(recipient, subject, body string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", recipient)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", recipient, err)
	}

	m.logger.Debug().
		Str("recipient", recipient).
		Str("subject", subject).
		Msg("successfully sent mail")

	return nil
}
