package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vetflow/database/repository"
	bookingRepo "vetflow/database/repository/booking"
	directoryRepo "vetflow/database/repository/directory"
	"vetflow/models"

	"go.uber.org/zap"
)

// searchHorizon covers MaxProbes business slots plus any weekends in between.
const searchHorizon = 14 * 24 * time.Hour

// Availability is the answer for one requested instant.
type Availability struct {
	Requested   models.Slot           `json:"requested"`
	Validation  models.SlotValidation `json:"validation"`
	Alternative *models.Slot          `json:"alternative,omitempty"`
}

// Searcher runs slot search against stored bookings in the tenant's timezone.
type Searcher struct {
	Bookings       bookingRepo.BookingRepository
	Directory      directoryRepo.DirectoryRepository
	ConflictWindow time.Duration
	Logger         *zap.Logger
}

func NewSearcher(bookings bookingRepo.BookingRepository, directory directoryRepo.DirectoryRepository, window time.Duration, logger *zap.Logger) *Searcher {
	return &Searcher{Bookings: bookings, Directory: directory, ConflictWindow: window, Logger: logger}
}

// TenantConfig loads the tenant settings, falling back to defaults.
func (s *Searcher) TenantConfig(ctx context.Context, tenantID string) models.TenantConfig {
	cfg, err := s.Directory.GetTenantConfig(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.Logger.Warn("Using default tenant config", zap.String("tenantID", tenantID), zap.Error(err))
		}
		return models.DefaultTenantConfig(tenantID)
	}
	return *cfg
}

// Rules resolves the slot rules for a tenant.
func (s *Searcher) Rules(ctx context.Context, tenantID string) Rules {
	cfg := s.TenantConfig(ctx, tenantID)
	return Rules{Location: cfg.Location(), ConflictWindow: s.ConflictWindow}
}

func (s *Searcher) window() time.Duration {
	return Rules{ConflictWindow: s.ConflictWindow}.window()
}

// Check validates at and, when it is rejected, proposes the next free slot.
func (s *Searcher) Check(ctx context.Context, tenantID string, at time.Time, rules Rules) (*Availability, error) {
	w := s.window()
	bookings, err := s.Bookings.ListActiveBetween(ctx, tenantID, at.Add(-w), at.Add(w))
	if err != nil {
		return nil, fmt.Errorf("load bookings around %s: %w", at.Format(time.RFC3339), err)
	}

	result := &Availability{
		Requested:  models.NewSlot(at, rules.loc()),
		Validation: Validate(at, bookings, rules),
	}
	if result.Validation.Valid {
		return result, nil
	}

	alt, found, err := s.next(ctx, tenantID, at, rules)
	if err != nil {
		return nil, err
	}
	if found {
		result.Alternative = &alt
	}
	return result, nil
}

// Next finds the first free slot at or after from.
func (s *Searcher) Next(ctx context.Context, tenantID string, from time.Time) (models.Slot, bool, error) {
	return s.next(ctx, tenantID, from, s.Rules(ctx, tenantID))
}

func (s *Searcher) next(ctx context.Context, tenantID string, from time.Time, rules Rules) (models.Slot, bool, error) {
	w := s.window()
	bookings, err := s.Bookings.ListActiveBetween(ctx, tenantID, from.Add(-w), from.Add(searchHorizon+w))
	if err != nil {
		return models.Slot{}, false, fmt.Errorf("load bookings after %s: %w", from.Format(time.RFC3339), err)
	}
	slot, found := FindNext(from, bookings, rules)
	if !found {
		s.Logger.Info("No free slot within search horizon",
			zap.String("tenantID", tenantID), zap.Time("from", from))
	}
	return slot, found, nil
}
