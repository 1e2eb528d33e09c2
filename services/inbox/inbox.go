package inbox

import (
	"context"
	"errors"
	"strings"
	"time"

	"vetflow/database/repository"
	directoryRepo "vetflow/database/repository/directory"
	messageRepo "vetflow/database/repository/message"
	"vetflow/models"
	"vetflow/services/booking"
	"vetflow/services/intelligence"
	"vetflow/services/notification"
	"vetflow/services/quota"
	"vetflow/services/scheduling"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// systemTenant receives messages when no tenant can be attributed.
const systemTenant = "system"

// Result summarises what HandleInbound did with one message.
type Result struct {
	TenantID   string          `json:"tenantId"`
	Registered bool            `json:"registered"`
	Suppressed bool            `json:"suppressed"`
	Reply      string          `json:"reply,omitempty"`
	Status     string          `json:"status,omitempty"`
	Booking    *models.Booking `json:"booking,omitempty"`
}

// Service answers customer messages arriving on the messaging webhook.
type Service struct {
	Directory directoryRepo.DirectoryRepository
	Messages  messageRepo.MessageRepository
	Ledger    quota.Ledger
	Renderer  *intelligence.Renderer
	History   intelligence.HistoryStore
	Booking   booking.BookingService
	Deliverer notification.Deliverer
	Logger    *zap.Logger
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// HandleInbound resolves the sender, checks the tenant's quota, replies and
// books any appointment the reply asks for. A quota denial is not an error.
func (s *Service) HandleInbound(ctx context.Context, msg models.InboundMessage) (*Result, error) {
	contact, err := s.Directory.FindContactByPhone(ctx, msg.From)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	registered := contact != nil
	tenant := s.resolveTenant(ctx, contact)

	result := &Result{TenantID: tenant.TenantID, Registered: registered}
	check, err := s.Ledger.Check(ctx, tenant.TenantID, registered)
	if err != nil {
		return nil, err
	}

	s.journal(ctx, tenant.TenantID, contact, models.DirectionInbound, msg.From, msg.Text, models.MessageReceived, msg.MessageID)
	if !check.Allowed {
		s.Logger.Warn("Response limit reached",
			zap.String("tenantID", tenant.TenantID), zap.String("phone", msg.From))
		s.journal(ctx, tenant.TenantID, contact, models.DirectionOutbound, msg.From, "", models.MessageSuppressed, "")
		result.Suppressed = true
		return result, nil
	}

	conversation := tenant.TenantID + ":" + directoryRepo.PhoneSuffix(msg.From)
	history, err := s.History.Get(ctx, conversation)
	if err != nil {
		s.Logger.Warn("Chat history unavailable", zap.String("conversation", conversation), zap.Error(err))
	}

	reply := s.Renderer.Reply(ctx, intelligence.ChatPrompt{
		Message:    msg.Text,
		Tenant:     tenant,
		Registered: registered,
		History:    history,
	})
	text := reply.Text
	if registered && reply.Appointment != nil {
		var booked *models.Booking
		text, booked = s.book(ctx, contact, *reply.Appointment, text)
		result.Booking = booked
	}

	delivery := s.Deliverer.Deliver(ctx, msg.From, text)
	if delivery.Delivered() {
		if err := s.Ledger.Consume(ctx, tenant.TenantID, registered, check.UseFrom); err != nil {
			s.Logger.Error("Failed to consume quota",
				zap.String("tenantID", tenant.TenantID), zap.Error(err))
		}
	}
	s.journal(ctx, tenant.TenantID, contact, models.DirectionOutbound, msg.From, text, delivery.Status(), delivery.ExternalID)

	now := s.now()
	if err := s.History.Append(ctx, conversation,
		models.ChatTurn{Role: intelligence.RoleCustomer, Text: msg.Text, At: now},
		models.ChatTurn{Role: intelligence.RoleAssistant, Text: text, At: now},
	); err != nil {
		s.Logger.Warn("Failed to save chat history", zap.String("conversation", conversation), zap.Error(err))
	}

	result.Reply = text
	result.Status = delivery.Status()
	return result, nil
}

// HandleStatus records a delivery receipt against the outbound journal entry.
func (s *Service) HandleStatus(ctx context.Context, update models.StatusUpdate) error {
	if update.MessageID == "" {
		return nil
	}
	err := s.Messages.UpdateStatusByExternalID(ctx, update.MessageID, update.Status)
	if errors.Is(err, repository.ErrNotFound) {
		s.Logger.Debug("Status for unknown message", zap.String("messageID", update.MessageID))
		return nil
	}
	return err
}

// resolveTenant picks the contact's tenant settings, or any tenant's for an
// unknown number.
func (s *Service) resolveTenant(ctx context.Context, contact *models.Contact) models.TenantConfig {
	if contact != nil {
		cfg, err := s.Directory.GetTenantConfig(ctx, contact.TenantID)
		if err == nil {
			return *cfg
		}
		return models.DefaultTenantConfig(contact.TenantID)
	}
	cfg, err := s.Directory.AnyTenantConfig(ctx)
	if err == nil {
		return *cfg
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.Logger.Warn("Tenant lookup failed", zap.Error(err))
	}
	return models.DefaultTenantConfig(systemTenant)
}

// book turns a chat booking intent into an appointment and returns the text
// to send instead of the generated reply.
func (s *Service) book(ctx context.Context, contact *models.Contact, req models.AppointmentRequest, text string) (string, *models.Booking) {
	subject, err := s.Directory.FirstSubjectForContact(ctx, contact.TenantID, contact.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.Logger.Error("Failed to load subject for chat booking", zap.Error(err))
		}
		return text, nil
	}

	service := strings.TrimSpace(req.Service)
	if service == "" {
		service = intelligence.DefaultService
	}
	outcome, err := s.Booking.RequestAppointment(ctx, booking.AppointmentRequest{
		TenantID:  contact.TenantID,
		ContactID: contact.ID,
		SubjectID: subject.ID,
		Date:      req.Date,
		Time:      req.Time,
		Title:     service,
		Source:    models.SourceWhatsApp,
	})
	var invalid *scheduling.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		return intelligence.AppointmentInvalid(), nil
	case err != nil:
		s.Logger.Error("Chat booking failed",
			zap.String("tenantID", contact.TenantID), zap.String("contactID", contact.ID), zap.Error(err))
		return text, nil
	case outcome.Valid:
		return intelligence.AppointmentConfirmed(outcome.Requested, service), outcome.Booking
	default:
		return intelligence.AppointmentUnavailable(outcome.Reason, outcome.Alternative), nil
	}
}

func (s *Service) journal(ctx context.Context, tenantID string, contact *models.Contact, direction, phone, text, status, externalID string) {
	entry := &models.MessageLog{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		Direction:  direction,
		Phone:      phone,
		Text:       text,
		Status:     status,
		Registered: contact != nil,
		ExternalID: externalID,
		CreatedAt:  s.now(),
	}
	if contact != nil {
		entry.ContactID = contact.ID
	}
	if err := s.Messages.InsertMessage(ctx, entry); err != nil {
		s.Logger.Error("Failed to journal message",
			zap.String("tenantID", tenantID), zap.String("direction", direction), zap.Error(err))
	}
}
