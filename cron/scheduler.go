package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	ErrUnknownJob = errors.New("unknown job")
	ErrJobRunning = errors.New("job is already running")
	ErrStopped    = errors.New("scheduler is stopped")
)

// JobFunc is one unit of periodic work.
type JobFunc func(ctx context.Context) error

// Job binds a named JobFunc to a cron expression.
type Job struct {
	Name     string
	Schedule string
	Run      JobFunc
}

type registered struct {
	Job
	running atomic.Bool
}

// Scheduler owns the cron driver and the registered jobs. A job never runs
// concurrently with itself, whether fired by cron or by RunNow.
type Scheduler struct {
	cron    *robfig.Cron
	jobs    map[string]*registered
	order   []string
	locker  Locker
	timeout time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	stopping bool
	wg       sync.WaitGroup
}

// NewScheduler builds a scheduler. locker may be nil for single-replica
// deployments. timeout bounds each run and is also the lease TTL.
func NewScheduler(jobs []Job, locker Locker, timeout time.Duration, logger *zap.Logger) *Scheduler {
	cronLogger := NewZapCronLogger(logger)
	s := &Scheduler{
		cron: robfig.New(
			robfig.WithLocation(time.UTC),
			robfig.WithLogger(cronLogger),
			robfig.WithChain(robfig.Recover(cronLogger), robfig.SkipIfStillRunning(cronLogger)),
		),
		jobs:    make(map[string]*registered, len(jobs)),
		locker:  locker,
		timeout: timeout,
		logger:  logger,
	}
	for _, j := range jobs {
		s.jobs[j.Name] = &registered{Job: j}
		s.order = append(s.order, j.Name)
	}
	return s
}

// Start registers every job with cron and starts the driver. A job whose
// schedule does not parse is logged and left unscheduled.
func (s *Scheduler) Start() error {
	var errs []error
	for _, name := range s.order {
		job := s.jobs[name]
		if _, err := s.cron.AddFunc(job.Schedule, func() { s.fire(job) }); err != nil {
			s.logger.Error("Failed to schedule job",
				zap.String("job", name), zap.String("schedule", job.Schedule), zap.Error(err))
			errs = append(errs, fmt.Errorf("schedule %s: %w", name, err))
			continue
		}
		s.logger.Info("Scheduled job", zap.String("job", name), zap.String("schedule", job.Schedule))
	}
	s.cron.Start()
	return errors.Join(errs...)
}

// Stop halts the driver and rejects further runs with ErrStopped. The
// returned context is done once running jobs, including manual runs, have
// returned.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	cronCtx := s.cron.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronCtx.Done()
		s.wg.Wait()
		cancel()
	}()
	return ctx
}

// Jobs lists registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	return append([]string(nil), s.order...)
}

// RunNow runs the named job synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownJob)
	}
	return s.run(ctx, job)
}

func (s *Scheduler) fire(job *registered) {
	err := s.run(context.Background(), job)
	if err != nil && !errors.Is(err, ErrJobRunning) && !errors.Is(err, ErrStopped) {
		s.logger.Error("Job failed", zap.String("job", job.Name), zap.Error(err))
	}
}

// track registers a run with the WaitGroup unless Stop has been called, so
// Add never races with Stop's Wait.
func (s *Scheduler) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Scheduler) run(ctx context.Context, job *registered) error {
	if !s.track() {
		return ErrStopped
	}
	defer s.wg.Done()

	if !job.running.CompareAndSwap(false, true) {
		s.logger.Info("Job still running, skipping", zap.String("job", job.Name))
		return ErrJobRunning
	}
	defer job.running.Store(false)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if s.locker != nil {
		release, acquired, err := s.locker.Acquire(ctx, job.Name, s.timeout)
		if err != nil {
			return fmt.Errorf("acquire lease for %s: %w", job.Name, err)
		}
		if !acquired {
			s.logger.Info("Job leased by another replica, skipping", zap.String("job", job.Name))
			return ErrJobRunning
		}
		defer release()
	}

	start := time.Now()
	s.logger.Info("Job started", zap.String("job", job.Name))
	if err := job.Run(ctx); err != nil {
		return err
	}
	s.logger.Info("Job finished", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
	return nil
}

// zapCronLogger adapts zap to cron's logger interface.
type zapCronLogger struct {
	sugar *zap.SugaredLogger
}

func NewZapCronLogger(logger *zap.Logger) robfig.Logger {
	return zapCronLogger{sugar: logger.Sugar()}
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
