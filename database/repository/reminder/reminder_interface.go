package reminderRepo

import (
	"context"
	"time"

	"vetflow/models"
)

// ReminderRepository persists one-shot reminders.
type ReminderRepository interface {
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	// ListDue returns unsent reminders with due_at in [from, to] across tenants.
	ListDue(ctx context.Context, from, to time.Time) ([]models.Reminder, error)
	// MarkSent latches sent=true. It reports false when another caller got there first.
	MarkSent(ctx context.Context, reminderID string, at time.Time) (bool, error)
	// HasRecentFoodReminder reports whether a food reminder exists for the
	// subject/product pair with due_at at or after since.
	HasRecentFoodReminder(ctx context.Context, tenantID, subjectID, productID string, since time.Time) (bool, error)
	EnsureIndexes(ctx context.Context) error
}
