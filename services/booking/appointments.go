package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vetflow/models"
	"vetflow/services/scheduling"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTitle = "Examination"

// RequestAppointment validates the requested slot and books it when free.
// An unavailable slot is not an error: the Outcome carries the reason and
// an alternative. Unparseable input yields *scheduling.InvalidInputError.
func (s *DefaultBookingService) RequestAppointment(ctx context.Context, req AppointmentRequest) (*Outcome, error) {
	if req.TenantID == "" || req.ContactID == "" || req.SubjectID == "" {
		return nil, NewValidationError("tenant, contact and subject are required")
	}

	rules := s.Searcher.Rules(ctx, req.TenantID)
	at, err := scheduling.ParseRequested(req.Date, req.Time, rules.Location)
	if err != nil {
		return nil, err
	}

	if _, err := s.Directory.GetContact(ctx, req.TenantID, req.ContactID); err != nil {
		return nil, fmt.Errorf("resolve contact: %w", err)
	}
	if _, err := s.Directory.GetSubject(ctx, req.TenantID, req.SubjectID); err != nil {
		return nil, fmt.Errorf("resolve subject: %w", err)
	}

	availability, err := s.Searcher.Check(ctx, req.TenantID, at, rules)
	if err != nil {
		return nil, err
	}
	outcome := &Outcome{
		Valid:       availability.Validation.Valid,
		Reason:      availability.Validation.Reason,
		Requested:   availability.Requested,
		Alternative: availability.Alternative,
	}
	if !outcome.Valid {
		return outcome, nil
	}

	source := req.Source
	if source == "" {
		source = models.SourceAPI
	}
	status := models.BookingScheduled
	if source == models.SourceWhatsApp {
		status = models.BookingConfirmed
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultTitle
	}

	now := s.now()
	booking := &models.Booking{
		ID:          uuid.New().String(),
		TenantID:    req.TenantID,
		ContactID:   req.ContactID,
		SubjectID:   req.SubjectID,
		Title:       title,
		ScheduledAt: at.UTC(),
		Duration:    models.DefaultBookingDuration,
		Status:      status,
		Source:      source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.Logger.Info("Appointment booked",
		zap.String("tenantID", req.TenantID),
		zap.String("bookingID", booking.ID),
		zap.Time("scheduledAt", booking.ScheduledAt),
		zap.String("source", string(source)))
	outcome.Booking = booking
	return outcome, nil
}

// CheckAvailability validates a local date and time without booking.
func (s *DefaultBookingService) CheckAvailability(ctx context.Context, tenantID, date, clock string) (*scheduling.Availability, error) {
	rules := s.Searcher.Rules(ctx, tenantID)
	at, err := scheduling.ParseRequested(date, clock, rules.Location)
	if err != nil {
		return nil, err
	}
	return s.Searcher.Check(ctx, tenantID, at, rules)
}

// NextSlot returns the first free slot at or after from.
func (s *DefaultBookingService) NextSlot(ctx context.Context, tenantID string, from time.Time) (models.Slot, bool, error) {
	if from.IsZero() {
		from = s.now()
	}
	return s.Searcher.Next(ctx, tenantID, from)
}
