// internal/worker/worker.go
package worker

import (
	"context"
	crand "crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"alx_travel/internal/adapters/observability"
	"alx_travel/internal/app"
	"alx_travel/internal/domain"
)

// Handler executes one job. Failures are reported through the result, never
// by panicking or retrying.
type Handler func(ctx context.Context, job domain.Job) domain.TaskResult

type Options struct {
	Concurrency int
	PollTimeout time.Duration
	JobTimeout  time.Duration
}

// Worker pulls jobs off a JobSource and runs them with bounded concurrency.
type Worker struct {
	src      domain.JobSource
	handlers map[string]Handler
	sem      *semaphore.Weighted
	opts     Options
	wg       sync.WaitGroup
}

func New(src domain.JobSource, opts Options) *Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 5 * time.Second
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 30 * time.Second
	}
	return &Worker{
		src:      src,
		handlers: map[string]Handler{},
		sem:      semaphore.NewWeighted(int64(opts.Concurrency)),
		opts:     opts,
	}
}

// Handle registers h for jobs named task. Call before Run.
func (w *Worker) Handle(task string, h Handler) { w.handlers[task] = h }

// Run consumes until ctx is cancelled, then waits for in-flight jobs.
func (w *Worker) Run(ctx context.Context) error {
	defer w.wg.Wait()
	fails := 0
	for {
		// acquire before polling so a popped job always has a slot
		if err := w.sem.Acquire(ctx, 1); err != nil {
			return nil
		}
		job, ok, err := w.src.Dequeue(ctx, w.opts.PollTimeout)
		if err != nil {
			w.sem.Release(1)
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			observability.ObserveQueue("", "error")
			log.Warn().Err(err).Int("attempt", fails).Msg("dequeue failed")
			if !sleepCtx(ctx, backoff(min(fails, 5))) {
				return nil
			}
			fails++
			continue
		}
		fails = 0
		if !ok {
			w.sem.Release(1)
			continue
		}

		w.wg.Add(1)
		go func(job domain.Job) {
			defer w.wg.Done()
			defer w.sem.Release(1)
			w.process(ctx, job)
		}(job)
	}
}

func (w *Worker) process(ctx context.Context, job domain.Job) {
	l := log.With().Str("job_id", job.ID).Str("task", job.Task).Int64("booking_id", job.BookingID).Logger()

	h, ok := w.handlers[job.Task]
	if !ok {
		observability.ObserveTask(job.Task, "unknown")
		l.Warn().Msg("no handler for task, dropping job")
		return
	}

	// a popped job is gone from the broker; shutdown must not cut it short
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.opts.JobTimeout)
	defer cancel()

	start := time.Now()
	res := h(jctx, job)
	observability.ObserveTask(job.Task, string(res.Outcome))

	ev := l.Info()
	if res.Outcome == domain.OutcomeFailed {
		ev = l.Warn()
	}
	ev.Str("outcome", string(res.Outcome)).Dur("duration", time.Since(start)).Msg(res.Message)
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

// Confirmation adapts the booking confirmation task to a Handler.
func Confirmation(t *app.ConfirmationTask) Handler {
	return func(ctx context.Context, job domain.Job) domain.TaskResult {
		return t.Run(ctx, job.BookingID)
	}
}
