package mailer

import (
	"fmt"

	"github.com/rs/zerolog"

	"alx_travel/internal/domain"
	"alx_travel/internal/shared"
)

// FromConfig returns the MailSender named by MAIL_BACKEND.
func FromConfig(cfg shared.Config, l zerolog.Logger) (domain.MailSender, error) {
	switch cfg.MailBackend {
	case "smtp":
		return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailRatePerSec), nil
	case "console", "":
		return NewConsole(l), nil
	case "memory":
		return NewOutbox(), nil
	}
	return nil, fmt.Errorf("unknown MAIL_BACKEND %q", cfg.MailBackend)
}
