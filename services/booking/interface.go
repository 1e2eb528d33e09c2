package booking

import (
	"context"
	"time"

	"vetflow/models"
	"vetflow/services/scheduling"
)

// BookingService is the synchronous booking path around slot search.
type BookingService interface {
	RequestAppointment(ctx context.Context, req AppointmentRequest) (*Outcome, error)
	CheckAvailability(ctx context.Context, tenantID, date, clock string) (*scheduling.Availability, error)
	NextSlot(ctx context.Context, tenantID string, from time.Time) (models.Slot, bool, error)
	CancelAppointment(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	SendCancellationNotice(ctx context.Context, tenantID, bookingID string) error
	RecordHealthEvent(ctx context.Context, record models.HealthRecord) (*HealthEventResult, error)
	SubjectHistory(ctx context.Context, tenantID, subjectID string) (*SubjectHistory, error)
}

// AppointmentRequest asks for a booking at a local date and time.
type AppointmentRequest struct {
	TenantID  string               `json:"-"`
	ContactID string               `json:"contactId"`
	SubjectID string               `json:"subjectId"`
	Date      string               `json:"date"`
	Time      string               `json:"time"`
	Title     string               `json:"title"`
	Source    models.BookingSource `json:"-"`
}

// Outcome is the answer to an appointment request. When Valid is false the
// booking was not created and Alternative holds the nearest free slot, if any.
type Outcome struct {
	Valid       bool            `json:"valid"`
	Reason      string          `json:"reason,omitempty"`
	Requested   models.Slot     `json:"requested"`
	Alternative *models.Slot    `json:"alternative,omitempty"`
	Booking     *models.Booking `json:"booking,omitempty"`
}

// HealthEventResult is the stored record plus any reminder it scheduled.
type HealthEventResult struct {
	Record   models.HealthRecord `json:"record"`
	Reminder *models.Reminder    `json:"reminder,omitempty"`
}

// SubjectHistory is a subject's profile, owner and health records.
type SubjectHistory struct {
	Subject models.Subject        `json:"subject"`
	Contact *models.Contact       `json:"contact,omitempty"`
	Records []models.HealthRecord `json:"records"`
}
