package cron

import (
	"context"
	"fmt"
	"time"

	"vetflow/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// CancellationNotifier sends the customer notice for a cancelled booking.
type CancellationNotifier interface {
	SendCancellationNotice(ctx context.Context, tenantID, bookingID string) error
}

// Worker consumes queued notification tasks.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	redis  *redis.Client
	logger *zap.Logger
}

// NewWorker builds the task worker on the queue database.
func NewWorker(opt asynq.RedisClientOpt, notifier CancellationNotifier, logger *zap.Logger) *Worker {
	srv := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeCancellationNotice, HandleCancellationTask(notifier, logger))

	return &Worker{
		srv: srv,
		mux: mux,
		redis: redis.NewClient(&redis.Options{
			Addr:     opt.Addr,
			Password: opt.Password,
			DB:       opt.DB,
		}),
		logger: logger,
	}
}

// Start runs the worker in the background, retrying startup with backoff.
func (w *Worker) Start(ctx context.Context) {
	go w.monitorRedisConnection(ctx)

	go func() {
		w.logger.Info("Starting task worker")
		const maxAttempts = 5

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Error("Task worker failed to start",
				zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempt == maxAttempts {
				w.logger.Error("Task worker gave up; cancellation notices will queue until restart")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt*2) * time.Second):
			}
		}
	}()
}

// Shutdown waits for in-flight tasks and stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
	if err := w.redis.Close(); err != nil {
		w.logger.Warn("Failed to close worker redis client", zap.Error(err))
	}
}

// HandleCancellationTask delivers one cancellation notice. Returning an error
// makes asynq retry the task.
func HandleCancellationTask(notifier CancellationNotifier, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseCancellationPayload(task)
		if err != nil {
			logger.Error("Invalid cancellation payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		logger.Info("Sending cancellation notice",
			zap.String("tenantID", p.TenantID), zap.String("bookingID", p.BookingID))
		if err := notifier.SendCancellationNotice(ctx, p.TenantID, p.BookingID); err != nil {
			logger.Warn("Cancellation notice failed",
				zap.String("bookingID", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue database to surface outages.
func (w *Worker) monitorRedisConnection(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.redis.Ping(ctx).Err(); err != nil {
				w.logger.Warn("Task queue redis unreachable", zap.Error(err))
			}
		}
	}
}
