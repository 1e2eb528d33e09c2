package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const TypeCancellationNotice = "booking:cancellation_notice"

// CancellationPayload identifies the cancelled booking to notify about.
type CancellationPayload struct {
	TenantID  string `json:"tenantId"`
	BookingID string `json:"bookingId"`
}

func NewCancellationTask(payload CancellationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeCancellationNotice, b)
	opts := []asynq.Option{asynq.MaxRetry(3), asynq.Queue("default")}

	return task, opts, nil
}

// ParseCancellationPayload decodes a task payload.
func ParseCancellationPayload(task *asynq.Task) (CancellationPayload, error) {
	var p CancellationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid cancellation payload: %w", err)
	}
	if p.TenantID == "" || p.BookingID == "" {
		return p, fmt.Errorf("invalid cancellation payload: missing ids")
	}
	return p, nil
}

// Enqueuer schedules background notification work.
type Enqueuer interface {
	EnqueueCancellationNotice(ctx context.Context, payload CancellationPayload) error
}

// AsynqEnqueuer enqueues tasks on the Redis-backed asynq queue.
type AsynqEnqueuer struct {
	Client *asynq.Client
}

func NewAsynqEnqueuer(opt asynq.RedisConnOpt) *AsynqEnqueuer {
	return &AsynqEnqueuer{Client: asynq.NewClient(opt)}
}

func (e *AsynqEnqueuer) EnqueueCancellationNotice(ctx context.Context, payload CancellationPayload) error {
	task, opts, err := NewCancellationTask(payload)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue cancellation notice: %w", err)
	}
	return nil
}

func (e *AsynqEnqueuer) Close() error {
	return e.Client.Close()
}
