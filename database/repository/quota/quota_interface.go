package quotaRepo

import (
	"context"
	"time"

	"vetflow/models"
)

// QuotaRepository stores one active QuotaPeriod per tenant. Every mutation is
// a single guarded update; the bool results report whether the guard matched.
type QuotaRepository interface {
	GetPeriod(ctx context.Context, tenantID string) (*models.QuotaPeriod, error)
	UpsertPeriod(ctx context.Context, period *models.QuotaPeriod) error
	// IncrementMetered adds one to metered_used while metered_used < metered_limit.
	IncrementMetered(ctx context.Context, tenantID string) (bool, error)
	// DecrementTopup removes one from topup_balance while it is positive.
	DecrementTopup(ctx context.Context, tenantID string) (bool, error)
	AddTopup(ctx context.Context, tenantID string, count int) (bool, error)
	ResetPeriod(ctx context.Context, tenantID string, start, end time.Time) (bool, error)
	ListExpired(ctx context.Context, now time.Time) ([]models.QuotaPeriod, error)
	EnsureIndexes(ctx context.Context) error
}
