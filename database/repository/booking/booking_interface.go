package bookingRepo

import (
	"context"
	"time"

	"vetflow/models"
)

// BookingRepository persists appointments.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	// ListActiveBetween returns the tenant's scheduled/confirmed bookings with
	// scheduled_at in [from, to).
	ListActiveBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.Booking, error)
	// ListDueForReminder scans all tenants for active bookings in [from, to]
	// whose reminder has not been attempted.
	ListDueForReminder(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	// MarkReminderSent flips reminder_sent false→true. It reports false when
	// the latch was already set.
	MarkReminderSent(ctx context.Context, bookingID string) (bool, error)
	UpdateStatus(ctx context.Context, tenantID, bookingID string, status models.BookingStatus) error
	EnsureIndexes(ctx context.Context) error
}
