package reminders

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SweepGenericReminders sends every unsent reminder due within the window.
func (s *Sweeper) SweepGenericReminders(ctx context.Context, now time.Time) (SweepReport, error) {
	var report SweepReport
	due, err := s.Reminders.ListDue(ctx, now, now.Add(s.window()))
	if err != nil {
		return report, fmt.Errorf("list due reminders: %w", err)
	}

	for _, rem := range due {
		report.Scanned++
		contact, err := s.Directory.GetContact(ctx, rem.TenantID, rem.ContactID)
		if err != nil {
			s.Logger.Warn("Skipping reminder, contact not resolved",
				zap.String("reminderID", rem.ID), zap.Error(err))
			report.Skipped++
			continue
		}

		reminderID := rem.ID
		report.record(s.send(ctx, dispatch{
			tenantID:    rem.TenantID,
			kind:        rem.Kind,
			contact:     contact,
			subjectName: s.subjectName(ctx, rem.TenantID, rem.SubjectID),
			detail:      rem.MessageBody,
			claim: func(ctx context.Context) (bool, error) {
				return s.Reminders.MarkSent(ctx, reminderID, now)
			},
		}))
	}

	s.Logger.Info("Generic reminder sweep finished", zap.Any("report", report))
	return report, nil
}
