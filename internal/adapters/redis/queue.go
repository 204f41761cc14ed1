package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"alx_travel/internal/adapters/observability"
	"alx_travel/internal/domain"
)

// Queue is a FIFO task broker on a Redis list: producers LPUSH, the worker
// BRPOPs. A popped job is gone; there is no ack or redelivery.
type Queue struct {
	c   *redis.Client
	key string
}

func NewQueue(c *redis.Client, key string) *Queue { return &Queue{c: c, key: key} }

func (q *Queue) Enqueue(ctx context.Context, job domain.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.c.LPush(ctx, q.key, b).Err(); err != nil {
		observability.ObserveQueue(job.Task, "error")
		return fmt.Errorf("enqueue %s: %w", job.Task, err)
	}
	observability.ObserveQueue(job.Task, "enqueue")
	return nil
}

func (q *Queue) Dequeue(ctx context.Context, wait time.Duration) (domain.Job, bool, error) {
	res, err := q.c.BRPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Job{}, false, nil
	}
	if err != nil {
		return domain.Job{}, false, err
	}
	// res is [key, value]
	var job domain.Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return domain.Job{}, false, fmt.Errorf("decode job: %w", err)
	}
	observability.ObserveQueue(job.Task, "dequeue")
	return job, true, nil
}

// Len reports the number of waiting jobs.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.c.LLen(ctx, q.key).Result()
}
