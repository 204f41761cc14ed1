package app

import (
	"context"
	"errors"
	"fmt"

	"alx_travel/internal/domain"
)

const ConfirmationSubject = "Booking Confirmation - ALX Travel App"

const confirmationBody = `
Dear %s,

Thank you for your booking! Your reservation has been confirmed.

Booking Details:
- Property: %s
- Location: %s
- Check-in: %s
- Check-out: %s
- Total Price: $%s
- Status: %s

We look forward to hosting you!

Best regards,
ALX Travel App Team
`

// ConfirmationTask sends the booking confirmation email. It is best effort:
// a missing booking or a mail failure ends the task with a descriptive
// result and nothing is retried.
type ConfirmationTask struct {
	bookings domain.BookingRepository
	listings domain.ListingRepository
	mail     domain.MailSender
	from     string
}

func NewConfirmationTask(b domain.BookingRepository, l domain.ListingRepository, m domain.MailSender, from string) *ConfirmationTask {
	return &ConfirmationTask{bookings: b, listings: l, mail: m, from: from}
}

func (t *ConfirmationTask) Run(ctx context.Context, bookingID int64) domain.TaskResult {
	b, err := t.bookings.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TaskResult{
				Outcome: domain.OutcomeMissing,
				Message: fmt.Sprintf("Booking with id %d does not exist", bookingID),
			}
		}
		return domain.TaskResult{Outcome: domain.OutcomeFailed, Message: fmt.Sprintf("Failed to load booking: %v", err)}
	}
	l, err := t.listings.Get(ctx, b.ListingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TaskResult{
				Outcome: domain.OutcomeMissing,
				Message: fmt.Sprintf("Booking with id %d does not exist", bookingID),
			}
		}
		return domain.TaskResult{Outcome: domain.OutcomeFailed, Message: fmt.Sprintf("Failed to load listing: %v", err)}
	}

	if err := t.mail.Send(ctx, ComposeConfirmation(b, l, t.from)); err != nil {
		return domain.TaskResult{Outcome: domain.OutcomeFailed, Message: fmt.Sprintf("Failed to send email: %v", err)}
	}
	return domain.TaskResult{
		Outcome: domain.OutcomeSent,
		Message: fmt.Sprintf("Booking confirmation email sent to %s", b.GuestEmail),
	}
}

func ComposeConfirmation(b domain.Booking, l domain.Listing, from string) domain.MailMessage {
	return domain.MailMessage{
		Subject: ConfirmationSubject,
		Body: fmt.Sprintf(confirmationBody,
			b.GuestName,
			l.Title,
			l.Location,
			b.StartDate,
			b.EndDate,
			b.TotalPrice.StringFixed(2),
			b.Status.Label(),
		),
		From: from,
		To:   []string{b.GuestEmail},
	}
}
