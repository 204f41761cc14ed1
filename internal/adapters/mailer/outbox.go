package mailer

import (
	"context"
	"sync"

	"alx_travel/internal/adapters/observability"
	"alx_travel/internal/domain"
)

// Outbox keeps sent messages in memory. Fail makes every later send return
// a transport error.
type Outbox struct {
	mu   sync.Mutex
	sent []domain.MailMessage
	fail error
}

func NewOutbox() *Outbox { return &Outbox{} }

func (o *Outbox) Send(ctx context.Context, m domain.MailMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail != nil {
		observability.ObserveMail("memory", o.fail, 0)
		return &domain.MailTransportError{Err: o.fail}
	}
	m.To = append([]string(nil), m.To...)
	o.sent = append(o.sent, m)
	observability.ObserveMail("memory", nil, 0)
	return nil
}

func (o *Outbox) Fail(err error) {
	o.mu.Lock()
	o.fail = err
	o.mu.Unlock()
}

func (o *Outbox) Sent() []domain.MailMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.MailMessage(nil), o.sent...)
}
