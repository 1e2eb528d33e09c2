package cron

import (
	"context"
	"time"

	"vetflow/config"
	"vetflow/services/quota"
	"vetflow/services/reminders"

	"go.uber.org/zap"
)

// Job names, also used by the admin run endpoint.
const (
	JobGenericReminders     = "generic_reminders"
	JobAppointmentReminders = "appointment_reminders"
	JobConsumableReminders  = "consumable_reminders"
	JobQuotaRollover        = "quota_rollover"
)

// Sweeps is the reminder work the driver fires.
type Sweeps interface {
	SweepGenericReminders(ctx context.Context, now time.Time) (reminders.SweepReport, error)
	SweepAppointments(ctx context.Context, now time.Time) (reminders.SweepReport, error)
	SweepConsumables(ctx context.Context, now time.Time) (reminders.SweepReport, error)
}

// Jobs holds the logic behind every scheduled task.
type Jobs struct {
	sweeps Sweeps
	ledger quota.Ledger
	logger *zap.Logger
	now    func() time.Time
}

func NewJobs(sweeps Sweeps, ledger quota.Ledger, logger *zap.Logger) *Jobs {
	return &Jobs{
		sweeps: sweeps,
		ledger: ledger,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Definitions binds each job to its configured schedule.
func (j *Jobs) Definitions(cfg config.Config) []Job {
	return []Job{
		{Name: JobGenericReminders, Schedule: cfg.ReminderJobSchedule, Run: j.sweep(JobGenericReminders, j.sweeps.SweepGenericReminders)},
		{Name: JobAppointmentReminders, Schedule: cfg.AppointmentJobSchedule, Run: j.sweep(JobAppointmentReminders, j.sweeps.SweepAppointments)},
		{Name: JobConsumableReminders, Schedule: cfg.ConsumableJobSchedule, Run: j.sweep(JobConsumableReminders, j.sweeps.SweepConsumables)},
		{Name: JobQuotaRollover, Schedule: cfg.QuotaResetJobSchedule, Run: j.RolloverQuotaPeriods},
	}
}

func (j *Jobs) sweep(name string, fn func(context.Context, time.Time) (reminders.SweepReport, error)) JobFunc {
	return func(ctx context.Context) error {
		report, err := fn(ctx, j.now())
		if err != nil {
			return err
		}
		j.logger.Info("Sweep finished",
			zap.String("job", name),
			zap.Int("scanned", report.Scanned),
			zap.Int("attempted", report.Attempted),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed))
		return nil
	}
}

// RolloverQuotaPeriods starts a fresh period for every tenant whose period ended.
func (j *Jobs) RolloverQuotaPeriods(ctx context.Context) error {
	n, err := j.ledger.ResetExpiredPeriods(ctx, j.now())
	if err != nil {
		return err
	}
	if n > 0 {
		j.logger.Info("Quota periods rolled over", zap.Int("tenants", n))
	}
	return nil
}
