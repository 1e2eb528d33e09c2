package booking

import (
	"context"
	"fmt"
	"strings"

	"vetflow/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record types accepted on health records.
var recordTypes = map[string]bool{
	"vaccination": true,
	"medication":  true,
	"checkup":     true,
	"treatment":   true,
	"surgery":     true,
}

// reminderKindFor maps a record type onto the reminder it schedules. Types
// that are reminder kinds of their own keep that kind; the rest become a
// check-up.
func reminderKindFor(recordType string) models.ReminderKind {
	kind := models.ReminderKind(recordType)
	switch {
	case !kind.Valid(), kind == models.KindFood, kind == models.KindAppointment, kind == models.KindCustom:
		return models.KindCheckup
	}
	return kind
}

// RecordHealthEvent stores a health record. A NextDueAt in the future also
// schedules a vaccination or check-up reminder for the subject's owner.
func (s *DefaultBookingService) RecordHealthEvent(ctx context.Context, record models.HealthRecord) (*HealthEventResult, error) {
	if record.TenantID == "" || record.SubjectID == "" || record.Title == "" {
		return nil, NewValidationError("tenant, subject and title are required")
	}
	record.RecordType = strings.ToLower(strings.TrimSpace(record.RecordType))
	if !recordTypes[record.RecordType] {
		return nil, NewValidationError(fmt.Sprintf("unknown record type %q", record.RecordType))
	}
	subject, err := s.Directory.GetSubject(ctx, record.TenantID, record.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("resolve subject: %w", err)
	}

	now := s.now()
	if record.Date.IsZero() {
		record.Date = now
	}
	record.CreatedAt = now
	id, err := s.Records.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = id

	result := &HealthEventResult{Record: record}
	if record.NextDueAt == nil || !record.NextDueAt.After(now) {
		return result, nil
	}

	kind := reminderKindFor(record.RecordType)
	reminder := &models.Reminder{
		ID:          uuid.New().String(),
		TenantID:    record.TenantID,
		Kind:        kind,
		Title:       fmt.Sprintf("%s - %s", subject.Name, record.Title),
		DueAt:       record.NextDueAt.UTC(),
		ContactID:   subject.ContactID,
		SubjectID:   subject.ID,
		MessageBody: fmt.Sprintf("Time to book the %s appointment.", record.Title),
		CreatedAt:   now,
	}
	if err := s.Reminders.CreateReminder(ctx, reminder); err != nil {
		return nil, err
	}
	s.Logger.Info("Health reminder scheduled",
		zap.String("tenantID", record.TenantID),
		zap.String("reminderID", reminder.ID),
		zap.String("kind", string(kind)),
		zap.Time("dueAt", reminder.DueAt))
	result.Reminder = reminder
	return result, nil
}

// SubjectHistory returns a subject with its owner and health records, newest
// record first.
func (s *DefaultBookingService) SubjectHistory(ctx context.Context, tenantID, subjectID string) (*SubjectHistory, error) {
	if tenantID == "" || subjectID == "" {
		return nil, NewValidationError("tenant and subject are required")
	}
	subject, err := s.Directory.GetSubject(ctx, tenantID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("resolve subject: %w", err)
	}

	history := &SubjectHistory{Subject: *subject, Records: []models.HealthRecord{}}
	contact, err := s.Directory.GetContact(ctx, tenantID, subject.ContactID)
	if err != nil {
		s.Logger.Warn("Subject owner not resolved",
			zap.String("tenantID", tenantID), zap.String("subjectID", subjectID), zap.Error(err))
	} else {
		history.Contact = contact
	}

	records, err := s.Records.GetBySubjectID(ctx, tenantID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load health records: %w", err)
	}
	if records != nil {
		history.Records = records
	}
	return history, nil
}
