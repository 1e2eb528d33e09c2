package reminders

import (
	"context"
	"fmt"
	"time"

	"vetflow/models"

	"go.uber.org/zap"
)

// AppointmentDetail formats the reminder line for a booking in loc.
func AppointmentDetail(b models.Booking, loc *time.Location) string {
	return fmt.Sprintf("%s - %s", b.Title, b.ScheduledAt.In(loc).Format("02/01/2006 15:04"))
}

// SweepAppointments reminds contacts of active bookings within the window.
func (s *Sweeper) SweepAppointments(ctx context.Context, now time.Time) (SweepReport, error) {
	var report SweepReport
	due, err := s.Bookings.ListDueForReminder(ctx, now, now.Add(s.window()))
	if err != nil {
		return report, fmt.Errorf("list due bookings: %w", err)
	}

	for _, b := range due {
		report.Scanned++
		if !b.Status.IsActive() || b.ReminderSent {
			report.Skipped++
			continue
		}
		contact, err := s.Directory.GetContact(ctx, b.TenantID, b.ContactID)
		if err != nil {
			s.Logger.Warn("Skipping appointment reminder, contact not resolved",
				zap.String("bookingID", b.ID), zap.Error(err))
			report.Skipped++
			continue
		}
		subject, err := s.Directory.GetSubject(ctx, b.TenantID, b.SubjectID)
		if err != nil {
			s.Logger.Warn("Skipping appointment reminder, subject not resolved",
				zap.String("bookingID", b.ID), zap.Error(err))
			report.Skipped++
			continue
		}

		loc := s.tenantConfig(ctx, b.TenantID).Location()
		bookingID := b.ID
		report.record(s.send(ctx, dispatch{
			tenantID:    b.TenantID,
			kind:        models.KindAppointment,
			contact:     contact,
			subjectName: subject.Name,
			detail:      AppointmentDetail(b, loc),
			claim: func(ctx context.Context) (bool, error) {
				return s.Bookings.MarkReminderSent(ctx, bookingID)
			},
		}))
	}

	s.Logger.Info("Appointment reminder sweep finished", zap.Any("report", report))
	return report, nil
}
