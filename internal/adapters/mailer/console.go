package mailer

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"alx_travel/internal/adapters/observability"
	"alx_travel/internal/domain"
)

// Console writes each message to the log instead of delivering it.
type Console struct{ l zerolog.Logger }

func NewConsole(l zerolog.Logger) *Console { return &Console{l: l} }

func (c *Console) Send(ctx context.Context, m domain.MailMessage) error {
	start := time.Now()
	c.l.Info().
		Str("from", m.From).
		Str("to", strings.Join(m.To, ",")).
		Str("subject", m.Subject).
		Str("body", m.Body).
		Msg("mail")
	observability.ObserveMail("console", nil, time.Since(start))
	return nil
}
