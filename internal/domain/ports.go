package domain

import (
	"context"
	"time"
)

// Filter narrows list reads. Repositories ignore fields they do not own.
type Filter struct {
	ListingID *int64
}

// Repository is the CRUD capability set shared by every entity store.
// Lists come back newest first. Get, Update and Delete return ErrNotFound
// for unknown ids.
type Repository[T any] interface {
	List(ctx context.Context, f Filter) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, v T) (T, error)
	Delete(ctx context.Context, id int64) error
}

type (
	ListingRepository = Repository[Listing]
	BookingRepository = Repository[Booking]
	ReviewRepository  = Repository[Review]
)

// TaskQueue accepts jobs for out-of-band execution. Enqueue returns once the
// broker holds the job; it never waits for the job to run.
type TaskQueue interface {
	Enqueue(ctx context.Context, job Job) error
}

// JobSource is the consumer side of the queue.
type JobSource interface {
	// Dequeue blocks up to wait; ok is false when nothing arrived.
	Dequeue(ctx context.Context, wait time.Duration) (job Job, ok bool, err error)
}

type MailSender interface {
	Send(ctx context.Context, m MailMessage) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
