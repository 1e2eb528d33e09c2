package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vetflow/database/repository"
	"vetflow/models"
	"vetflow/services/tasks"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CancelAppointment marks the booking cancelled and queues the customer notice.
// A queue failure is logged; the cancellation itself stands.
func (s *DefaultBookingService) CancelAppointment(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	booking, err := s.Repo.GetBooking(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.IsActive() {
		return nil, fmt.Errorf("booking %s is %s: %w", bookingID, booking.Status, ErrNotCancellable)
	}

	if err := s.Repo.UpdateStatus(ctx, tenantID, bookingID, models.BookingCancelled); err != nil {
		return nil, err
	}
	booking.Status = models.BookingCancelled
	booking.UpdatedAt = s.now()

	payload := tasks.CancellationPayload{TenantID: tenantID, BookingID: bookingID}
	if err := s.Tasks.EnqueueCancellationNotice(ctx, payload); err != nil {
		s.Logger.Error("Failed to queue cancellation notice",
			zap.String("tenantID", tenantID), zap.String("bookingID", bookingID), zap.Error(err))
	}
	return booking, nil
}

// CancellationMessage is the text sent when a booking is cancelled.
func CancellationMessage(contactName, subjectName, clinicName string, at time.Time) string {
	return fmt.Sprintf("Dear %s,\n\nYour appointment for %s on %s has been cancelled.\n\nPlease get in touch to book a new one.\n\n%s",
		contactName, subjectName, at.Format("02/01/2006 15:04"), clinicName)
}

// SendCancellationNotice delivers the notice for a cancelled booking. It runs
// on the task worker; a transport failure is returned so the task is retried.
func (s *DefaultBookingService) SendCancellationNotice(ctx context.Context, tenantID, bookingID string) error {
	booking, err := s.Repo.GetBooking(ctx, tenantID, bookingID)
	if err != nil {
		return err
	}
	contact, err := s.Directory.GetContact(ctx, tenantID, booking.ContactID)
	if err != nil {
		return err
	}
	subjectName := "your pet"
	if subject, err := s.Directory.GetSubject(ctx, tenantID, booking.SubjectID); err == nil {
		subjectName = subject.Name
	}
	cfg := models.DefaultTenantConfig(tenantID)
	if stored, err := s.Directory.GetTenantConfig(ctx, tenantID); err == nil {
		cfg = *stored
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.Logger.Warn("Using default tenant config", zap.String("tenantID", tenantID), zap.Error(err))
	}

	text := CancellationMessage(contact.Name, subjectName, cfg.ClinicName, booking.ScheduledAt.In(cfg.Location()))
	result := s.Deliverer.Deliver(ctx, s.Deliverer.Address(*contact), text)

	entry := &models.MessageLog{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		Direction:  models.DirectionOutbound,
		Phone:      contact.Phone,
		Text:       text,
		Status:     result.Status(),
		ContactID:  contact.ID,
		Registered: true,
		ExternalID: result.ExternalID,
		CreatedAt:  s.now(),
	}
	if err := s.Messages.InsertMessage(ctx, entry); err != nil {
		s.Logger.Error("Failed to journal cancellation notice", zap.Error(err))
	}

	if !result.Delivered() {
		return fmt.Errorf("deliver cancellation notice for %s: %w", bookingID, result.Err)
	}
	return nil
}
