package reminders

import (
	"context"
	"errors"
	"time"

	"vetflow/database/repository"
	bookingRepo "vetflow/database/repository/booking"
	consumableRepo "vetflow/database/repository/consumable"
	directoryRepo "vetflow/database/repository/directory"
	messageRepo "vetflow/database/repository/message"
	reminderRepo "vetflow/database/repository/reminder"
	"vetflow/models"
	"vetflow/services/intelligence"
	"vetflow/services/notification"
	"vetflow/services/quota"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultWindow is how far ahead reminders and appointments are picked up.
	DefaultWindow = 48 * time.Hour
	// foodDedupWindow suppresses a second food reminder for the same pair.
	foodDedupWindow = 24 * time.Hour

	fallbackSubjectName = "your pet"
)

// SweepReport summarises one sweep run.
type SweepReport struct {
	Scanned   int `json:"scanned"`
	Attempted int `json:"attempted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Sweeper runs the periodic reminder scans. Every record is handled on its
// own; a failure is logged and the scan moves on.
type Sweeper struct {
	Bookings    bookingRepo.BookingRepository
	Reminders   reminderRepo.ReminderRepository
	Consumables consumableRepo.ConsumableRepository
	Directory   directoryRepo.DirectoryRepository
	Messages    messageRepo.MessageRepository
	Ledger      quota.Ledger
	Renderer    *intelligence.Renderer
	Deliverer   notification.Deliverer
	Window      time.Duration
	Logger      *zap.Logger
}

func (s *Sweeper) window() time.Duration {
	if s.Window <= 0 {
		return DefaultWindow
	}
	return s.Window
}

func (s *Sweeper) tenantConfig(ctx context.Context, tenantID string) models.TenantConfig {
	cfg, err := s.Directory.GetTenantConfig(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.Logger.Warn("Using default tenant config", zap.String("tenantID", tenantID), zap.Error(err))
		}
		return models.DefaultTenantConfig(tenantID)
	}
	return *cfg
}

// subjectName resolves an optional subject, falling back to a generic name.
func (s *Sweeper) subjectName(ctx context.Context, tenantID, subjectID string) string {
	if subjectID == "" {
		return fallbackSubjectName
	}
	subject, err := s.Directory.GetSubject(ctx, tenantID, subjectID)
	if err != nil {
		return fallbackSubjectName
	}
	return subject.Name
}

// claim latches a record before delivery; false means another run owns it.
type claim func(ctx context.Context) (bool, error)

type dispatch struct {
	tenantID    string
	kind        models.ReminderKind
	contact     *models.Contact
	subjectName string
	detail      string
	claim       claim
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeDelivered
	outcomeFailed
)

// send renders, checks quota, claims, delivers, charges and journals one message.
func (s *Sweeper) send(ctx context.Context, d dispatch) outcome {
	log := s.Logger.With(zap.String("tenantID", d.tenantID), zap.String("kind", string(d.kind)), zap.String("contactID", d.contact.ID))
	cfg := s.tenantConfig(ctx, d.tenantID)

	rendered := s.Renderer.RenderReminder(ctx, intelligence.ReminderPrompt{
		Kind:        d.kind,
		ContactName: d.contact.Name,
		SubjectName: d.subjectName,
		Detail:      d.detail,
		Tenant:      cfg,
	})

	check, err := s.Ledger.Check(ctx, d.tenantID, true)
	if err != nil {
		log.Error("Quota check failed", zap.Error(err))
		return outcomeSkipped
	}
	if !check.Allowed {
		s.journal(ctx, d, rendered.Text, models.MessageSuppressed, "")
		log.Warn("Quota denied reminder")
		return outcomeSkipped
	}

	if d.claim != nil {
		won, err := d.claim(ctx)
		if err != nil {
			log.Error("Failed to claim reminder", zap.Error(err))
			return outcomeSkipped
		}
		if !won {
			log.Info("Reminder already claimed by another run")
			return outcomeSkipped
		}
	}

	result := s.Deliverer.Deliver(ctx, s.Deliverer.Address(*d.contact), rendered.Text)
	if result.Delivered() {
		if err := s.Ledger.Consume(ctx, d.tenantID, true, check.UseFrom); err != nil {
			log.Warn("Quota consume failed", zap.Error(err))
		}
	}
	s.journal(ctx, d, rendered.Text, result.Status(), result.ExternalID)

	if !result.Delivered() {
		log.Warn("Reminder delivery failed", zap.Error(result.Err))
		return outcomeFailed
	}
	log.Info("Reminder sent", zap.Bool("mocked", result.Mocked), zap.Bool("fallback", rendered.Fallback))
	return outcomeDelivered
}

func (s *Sweeper) journal(ctx context.Context, d dispatch, text, status, externalID string) {
	entry := &models.MessageLog{
		ID:         uuid.New().String(),
		TenantID:   d.tenantID,
		Direction:  models.DirectionOutbound,
		Phone:      d.contact.Phone,
		Text:       text,
		Status:     status,
		ContactID:  d.contact.ID,
		Registered: true,
		ExternalID: externalID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Messages.InsertMessage(ctx, entry); err != nil {
		s.Logger.Error("Failed to journal outbound message", zap.Error(err))
	}
}

func (r *SweepReport) record(o outcome) {
	switch o {
	case outcomeDelivered:
		r.Attempted++
	case outcomeFailed:
		r.Attempted++
		r.Failed++
	default:
		r.Skipped++
	}
}
