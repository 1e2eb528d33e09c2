package models

import "time"

// BookingStatus is the lifecycle state of an appointment. Transitions are
// driven outside the engine; the engine only reads it.
type BookingStatus string

const (
	BookingScheduled BookingStatus = "scheduled"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no_show"
)

// ActiveBookingStatuses are the statuses that block a slot and receive reminders.
var ActiveBookingStatuses = []BookingStatus{BookingScheduled, BookingConfirmed}

// IsActive reports whether the booking occupies its slot.
func (s BookingStatus) IsActive() bool {
	return s == BookingScheduled || s == BookingConfirmed
}

// BookingSource records which path created the booking.
type BookingSource string

const (
	SourceAPI      BookingSource = "api"
	SourceWhatsApp BookingSource = "whatsapp"
)

// DefaultBookingDuration is used when a request does not carry one.
const DefaultBookingDuration = 30 * time.Minute

// Booking represents an appointment for a contact's subject (pet).
type Booking struct {
	ID           string        `bson:"id" json:"id"`
	TenantID     string        `bson:"tenant_id" json:"tenantId"`
	ContactID    string        `bson:"contact_id" json:"contactId"`
	SubjectID    string        `bson:"subject_id" json:"subjectId"`
	Title        string        `bson:"title" json:"title"`
	ScheduledAt  time.Time     `bson:"scheduled_at" json:"scheduledAt"` // always UTC
	Duration     time.Duration `bson:"duration" json:"duration"`
	Status       BookingStatus `bson:"status" json:"status"`
	ReminderSent bool          `bson:"reminder_sent" json:"reminderSent"`
	Source       BookingSource `bson:"source" json:"source"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt"`
}
