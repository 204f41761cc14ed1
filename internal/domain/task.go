package domain

import "time"

const TaskSendBookingConfirmation = "send_booking_confirmation_email"

// Job is the message that crosses the queue boundary. Only ids travel; the
// task re-reads everything else from the store.
type Job struct {
	ID         string    `json:"id"`
	Task       string    `json:"task"`
	BookingID  int64     `json:"booking_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type TaskOutcome string

const (
	OutcomeSent    TaskOutcome = "sent"
	OutcomeMissing TaskOutcome = "missing"
	OutcomeFailed  TaskOutcome = "failed"
)

// TaskResult is the only record of what a task did.
type TaskResult struct {
	Outcome TaskOutcome
	Message string
}

func (r TaskResult) String() string { return r.Message }

type MailMessage struct {
	Subject string
	Body    string
	From    string
	To      []string
}
