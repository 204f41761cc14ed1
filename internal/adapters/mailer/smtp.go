// Package mailer holds the MailSender backends: SMTP for production, a
// console logger for development and an in-memory outbox for tests.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"alx_travel/internal/adapters/observability"
	"alx_travel/internal/domain"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP delivers mail through a relay. Sends are throttled client side; a
// failed send is reported once and never retried here.
type SMTP struct {
	addr string
	auth smtp.Auth
	rl   *rate.Limiter
	send sendFunc
}

func NewSMTP(host string, port int, user, pass string, rps int) *SMTP {
	if rps <= 0 {
		rps = 5
	}
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTP{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		auth: auth,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
		send: smtp.SendMail,
	}
}

func (s *SMTP) Send(ctx context.Context, m domain.MailMessage) error {
	if err := s.rl.Wait(ctx); err != nil {
		return &domain.MailTransportError{Err: err}
	}
	start := time.Now()
	err := s.send(s.addr, s.auth, m.From, m.To, render(m, start))
	observability.ObserveMail("smtp", err, time.Since(start))
	if err != nil {
		return &domain.MailTransportError{Err: fmt.Errorf("smtp %s: %w", s.addr, err)}
	}
	return nil
}

// render builds a plain-text RFC 5322 message.
func render(m domain.MailMessage, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.From + "\r\n")
	b.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}
