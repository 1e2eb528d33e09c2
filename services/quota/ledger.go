package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vetflow/database/repository"
	quotaRepo "vetflow/database/repository/quota"
	"vetflow/models"

	"go.uber.org/zap"
)

// Ledger tracks the per-tenant message entitlement. Known contacts are
// never charged; unknown contacts draw from the period allowance first and
// the top-up balance second.
type Ledger interface {
	Check(ctx context.Context, tenantID string, contactIsKnown bool) (models.QuotaCheck, error)
	Consume(ctx context.Context, tenantID string, contactIsKnown bool, useFrom models.QuotaClass) error
	TopUp(ctx context.Context, tenantID string, count int) error
	TopUpPack(ctx context.Context, tenantID, packID string) (int, error)
	ResetPeriod(ctx context.Context, tenantID string) error
	OpenPeriod(ctx context.Context, tenantID, plan string) (*models.QuotaPeriod, error)
	Snapshot(ctx context.Context, tenantID string) (*models.QuotaPeriod, error)
	ResetExpiredPeriods(ctx context.Context, now time.Time) (int, error)
}

// DefaultLedger implements Ledger over a QuotaRepository.
type DefaultLedger struct {
	Repo   quotaRepo.QuotaRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewLedger(repo quotaRepo.QuotaRepository, logger *zap.Logger) *DefaultLedger {
	return &DefaultLedger{Repo: repo, Logger: logger, Now: time.Now}
}

func (l *DefaultLedger) now() time.Time {
	if l.Now == nil {
		return time.Now().UTC()
	}
	return l.Now().UTC()
}

// Check answers whether one more message may be sent. A tenant without a
// period is denied rather than given a default allowance.
func (l *DefaultLedger) Check(ctx context.Context, tenantID string, contactIsKnown bool) (models.QuotaCheck, error) {
	if contactIsKnown {
		return models.QuotaCheck{Allowed: true, Available: -1, UseFrom: models.QuotaUnmetered}, nil
	}

	period, err := l.Repo.GetPeriod(ctx, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.QuotaCheck{Allowed: false, Available: 0, UseFrom: models.QuotaMetered}, nil
	}
	if err != nil {
		return models.QuotaCheck{}, fmt.Errorf("quota check for tenant %s: %w", tenantID, err)
	}

	available := period.Available()
	if available < 0 {
		available = 0
	}
	useFrom := models.QuotaTopup
	if period.MeteredUsed < period.MeteredLimit {
		useFrom = models.QuotaMetered
	}
	return models.QuotaCheck{Allowed: available > 0, Available: available, UseFrom: useFrom}, nil
}

// Consume charges one message. The storage update is guarded so the
// balance cannot go negative; a guard miss yields ErrQuotaExhausted, or
// ErrNoActivePeriod when the tenant has no period row at all.
func (l *DefaultLedger) Consume(ctx context.Context, tenantID string, contactIsKnown bool, useFrom models.QuotaClass) error {
	if contactIsKnown || useFrom == models.QuotaUnmetered {
		return nil
	}

	var (
		ok  bool
		err error
	)
	switch useFrom {
	case models.QuotaMetered:
		ok, err = l.Repo.IncrementMetered(ctx, tenantID)
		if err == nil && !ok {
			// Allowance ran out between check and consume; fall through to top-up.
			ok, err = l.Repo.DecrementTopup(ctx, tenantID)
		}
	case models.QuotaTopup:
		ok, err = l.Repo.DecrementTopup(ctx, tenantID)
	default:
		return fmt.Errorf("unknown quota class %q", useFrom)
	}
	if err != nil {
		return fmt.Errorf("quota consume for tenant %s: %w", tenantID, err)
	}
	if !ok {
		if _, err := l.Repo.GetPeriod(ctx, tenantID); errors.Is(err, repository.ErrNotFound) {
			return ErrNoActivePeriod
		}
		l.Logger.Warn("Quota consume found nothing left",
			zap.String("tenantID", tenantID), zap.String("useFrom", string(useFrom)))
		return ErrQuotaExhausted
	}
	return nil
}

// TopUp adds count messages to the tenant's top-up balance.
func (l *DefaultLedger) TopUp(ctx context.Context, tenantID string, count int) error {
	if count <= 0 {
		return fmt.Errorf("top-up count must be positive, got %d", count)
	}
	ok, err := l.Repo.AddTopup(ctx, tenantID, count)
	if err != nil {
		return fmt.Errorf("quota top-up for tenant %s: %w", tenantID, err)
	}
	if !ok {
		return ErrNoActivePeriod
	}
	l.Logger.Info("Quota topped up", zap.String("tenantID", tenantID), zap.Int("count", count))
	return nil
}

// TopUpPack credits a purchased response pack and returns the amount added.
func (l *DefaultLedger) TopUpPack(ctx context.Context, tenantID, packID string) (int, error) {
	n, ok := PackSize(packID)
	if !ok {
		return 0, newPlanError("unknownPack", packID)
	}
	if err := l.TopUp(ctx, tenantID, n); err != nil {
		return 0, err
	}
	return n, nil
}

// ResetPeriod zeroes metered usage and starts a one-month period now.
// The top-up balance carries over.
func (l *DefaultLedger) ResetPeriod(ctx context.Context, tenantID string) error {
	start := l.now()
	ok, err := l.Repo.ResetPeriod(ctx, tenantID, start, oneMonth(start))
	if err != nil {
		return fmt.Errorf("quota reset for tenant %s: %w", tenantID, err)
	}
	if !ok {
		return ErrNoActivePeriod
	}
	return nil
}

// OpenPeriod creates or replaces the tenant's period for plan, keeping any
// existing top-up balance.
func (l *DefaultLedger) OpenPeriod(ctx context.Context, tenantID, planID string) (*models.QuotaPeriod, error) {
	plan, ok := LookupPlan(planID)
	if !ok {
		return nil, newPlanError("unknownPlan", planID)
	}

	topup := 0
	existing, err := l.Repo.GetPeriod(ctx, tenantID)
	switch {
	case err == nil:
		topup = existing.TopupBalance
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("quota open period for tenant %s: %w", tenantID, err)
	}

	start := l.now()
	period := &models.QuotaPeriod{
		TenantID:     tenantID,
		Plan:         plan.ID,
		PeriodStart:  start,
		PeriodEnd:    plan.Duration(start),
		MeteredUsed:  0,
		MeteredLimit: plan.MeteredLimit,
		TopupBalance: topup,
		UpdatedAt:    start,
	}
	if err := l.Repo.UpsertPeriod(ctx, period); err != nil {
		return nil, fmt.Errorf("quota open period for tenant %s: %w", tenantID, err)
	}
	return period, nil
}

// Snapshot returns the tenant's active period.
func (l *DefaultLedger) Snapshot(ctx context.Context, tenantID string) (*models.QuotaPeriod, error) {
	period, err := l.Repo.GetPeriod(ctx, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoActivePeriod
	}
	return period, err
}

// ResetExpiredPeriods rolls every period whose end has passed. Failures are
// logged per tenant and the rest continue.
func (l *DefaultLedger) ResetExpiredPeriods(ctx context.Context, now time.Time) (int, error) {
	expired, err := l.Repo.ListExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list expired quota periods: %w", err)
	}

	reset := 0
	for _, p := range expired {
		start := now.UTC()
		end := oneMonth(start)
		ok, err := l.Repo.ResetPeriod(ctx, p.TenantID, start, end)
		if err != nil || !ok {
			l.Logger.Error("Failed to roll quota period",
				zap.String("tenantID", p.TenantID), zap.Error(err))
			continue
		}
		reset++
	}
	return reset, nil
}
