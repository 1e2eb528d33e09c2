package inbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"vetflow/database/repository"
	"vetflow/models"
	"vetflow/services/booking"
	"vetflow/services/intelligence"
	"vetflow/services/notification"
	"vetflow/services/scheduling"

	"go.uber.org/zap"
)

type stubDirectory struct {
	contact *models.Contact
	subject *models.Subject
	tenants map[string]models.TenantConfig
}

func (d *stubDirectory) GetContact(context.Context, string, string) (*models.Contact, error) {
	return d.contact, nil
}
func (d *stubDirectory) FindContactByPhone(context.Context, string) (*models.Contact, error) {
	if d.contact == nil {
		return nil, repository.ErrNotFound
	}
	return d.contact, nil
}
func (d *stubDirectory) GetSubject(context.Context, string, string) (*models.Subject, error) {
	return d.subject, nil
}
func (d *stubDirectory) FirstSubjectForContact(context.Context, string, string) (*models.Subject, error) {
	if d.subject == nil {
		return nil, repository.ErrNotFound
	}
	return d.subject, nil
}
func (d *stubDirectory) GetProduct(context.Context, string, string) (*models.Product, error) {
	return nil, repository.ErrNotFound
}
func (d *stubDirectory) GetTenantConfig(_ context.Context, tenantID string) (*models.TenantConfig, error) {
	cfg, ok := d.tenants[tenantID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &cfg, nil
}
func (d *stubDirectory) AnyTenantConfig(context.Context) (*models.TenantConfig, error) {
	for _, cfg := range d.tenants {
		c := cfg
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (*stubDirectory) EnsureIndexes(context.Context) error { return nil }

type memMessages struct {
	logs     []models.MessageLog
	statuses map[string]string
}

func (m *memMessages) InsertMessage(_ context.Context, msg *models.MessageLog) error {
	m.logs = append(m.logs, *msg)
	return nil
}
func (m *memMessages) UpdateStatusByExternalID(_ context.Context, id, status string) error {
	for _, l := range m.logs {
		if l.ExternalID == id {
			m.statuses[id] = status
			return nil
		}
	}
	return repository.ErrNotFound
}
func (m *memMessages) EnsureIndexes(context.Context) error { return nil }

type stubLedger struct {
	check    models.QuotaCheck
	consumed []models.QuotaClass
}

func (l *stubLedger) Check(_ context.Context, _ string, known bool) (models.QuotaCheck, error) {
	if known {
		return models.QuotaCheck{Allowed: true, Available: -1, UseFrom: models.QuotaUnmetered}, nil
	}
	return l.check, nil
}
func (l *stubLedger) Consume(_ context.Context, _ string, _ bool, useFrom models.QuotaClass) error {
	l.consumed = append(l.consumed, useFrom)
	return nil
}
func (l *stubLedger) TopUp(context.Context, string, int) error              { return nil }
func (l *stubLedger) TopUpPack(context.Context, string, string) (int, error) { return 0, nil }
func (l *stubLedger) ResetPeriod(context.Context, string) error             { return nil }
func (l *stubLedger) OpenPeriod(context.Context, string, string) (*models.QuotaPeriod, error) {
	return nil, nil
}
func (l *stubLedger) Snapshot(context.Context, string) (*models.QuotaPeriod, error) { return nil, nil }
func (l *stubLedger) ResetExpiredPeriods(context.Context, time.Time) (int, error) {
	return 0, nil
}

type memHistory struct {
	turns map[string][]models.ChatTurn
}

func (h *memHistory) Get(_ context.Context, id string) ([]models.ChatTurn, error) {
	return h.turns[id], nil
}
func (h *memHistory) Append(_ context.Context, id string, turns ...models.ChatTurn) error {
	h.turns[id] = append(h.turns[id], turns...)
	return nil
}

type stubGenerator struct {
	reply   string
	prompts []intelligence.ChatPrompt
}

func (g *stubGenerator) GenerateReminder(context.Context, intelligence.ReminderPrompt) (string, error) {
	return "", errors.New("unused")
}
func (g *stubGenerator) Reply(_ context.Context, p intelligence.ChatPrompt) (string, error) {
	g.prompts = append(g.prompts, p)
	return g.reply, nil
}

type stubBooking struct {
	booking.BookingService
	outcome  *booking.Outcome
	err      error
	requests []booking.AppointmentRequest
}

func (b *stubBooking) RequestAppointment(_ context.Context, req booking.AppointmentRequest) (*booking.Outcome, error) {
	b.requests = append(b.requests, req)
	return b.outcome, b.err
}

type stubDeliverer struct {
	result notification.DeliveryResult
	sent   []string
}

func (d *stubDeliverer) Deliver(_ context.Context, _, text string) notification.DeliveryResult {
	d.sent = append(d.sent, text)
	return d.result
}
func (d *stubDeliverer) Address(c models.Contact) string { return c.Phone }
func (d *stubDeliverer) Channel() string                 { return "stub" }

type fixture struct {
	dir       *stubDirectory
	messages  *memMessages
	ledger    *stubLedger
	history   *memHistory
	gen       *stubGenerator
	booking   *stubBooking
	deliverer *stubDeliverer
	svc       *Service
}

func newFixture(registered bool) *fixture {
	f := &fixture{
		dir: &stubDirectory{
			tenants: map[string]models.TenantConfig{"t1": models.DefaultTenantConfig("t1")},
		},
		messages:  &memMessages{statuses: map[string]string{}},
		ledger:    &stubLedger{check: models.QuotaCheck{Allowed: true, Available: 3, UseFrom: models.QuotaMetered}},
		history:   &memHistory{turns: map[string][]models.ChatTurn{}},
		gen:       &stubGenerator{reply: "Hi there!"},
		booking:   &stubBooking{},
		deliverer: &stubDeliverer{result: notification.DeliveryResult{Success: true, ExternalID: "wamid.out"}},
	}
	if registered {
		f.dir.contact = &models.Contact{ID: "c1", TenantID: "t1", Name: "Ayse", Phone: "905551234567"}
		f.dir.subject = &models.Subject{ID: "s1", TenantID: "t1", ContactID: "c1", Name: "Pamuk"}
	}
	f.svc = &Service{
		Directory: f.dir,
		Messages:  f.messages,
		Ledger:    f.ledger,
		Renderer:  intelligence.NewRenderer(f.gen, time.Second, zap.NewNop()),
		History:   f.history,
		Booking:   f.booking,
		Deliverer: f.deliverer,
		Logger:    zap.NewNop(),
	}
	return f
}

func inbound(text string) models.InboundMessage {
	return models.InboundMessage{MessageID: "wamid.in", From: "905551234567", Text: text, Type: "text"}
}

func TestHandleInboundUnknownContactConsumesQuota(t *testing.T) {
	f := newFixture(false)
	res, err := f.svc.HandleInbound(context.Background(), inbound("What are your hours?"))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if res.Registered || res.Suppressed || res.TenantID != "t1" || res.Reply != "Hi there!" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(f.ledger.consumed) != 1 || f.ledger.consumed[0] != models.QuotaMetered {
		t.Fatalf("consumed = %v", f.ledger.consumed)
	}
	if len(f.messages.logs) != 2 || f.messages.logs[0].Direction != models.DirectionInbound || f.messages.logs[1].Status != models.MessageSent {
		t.Fatalf("unexpected journal: %+v", f.messages.logs)
	}
	if f.gen.prompts[0].Registered {
		t.Fatal("unknown contact prompted as registered")
	}
	if turns := f.history.turns["t1:5551234567"]; len(turns) != 2 {
		t.Fatalf("history = %+v", f.history.turns)
	}
}

func TestHandleInboundSuppressedWhenQuotaDenied(t *testing.T) {
	f := newFixture(false)
	f.ledger.check = models.QuotaCheck{Allowed: false, UseFrom: models.QuotaMetered}

	res, err := f.svc.HandleInbound(context.Background(), inbound("hello"))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if !res.Suppressed {
		t.Fatal("expected suppression")
	}
	if len(f.deliverer.sent) != 0 || len(f.ledger.consumed) != 0 || len(f.gen.prompts) != 0 {
		t.Fatal("suppressed message produced a reply")
	}
	if len(f.messages.logs) != 2 || f.messages.logs[1].Status != models.MessageSuppressed {
		t.Fatalf("unexpected journal: %+v", f.messages.logs)
	}
}

func TestHandleInboundFailedDeliveryDoesNotConsume(t *testing.T) {
	f := newFixture(false)
	f.deliverer.result = notification.DeliveryResult{Err: errors.New("down")}

	res, err := f.svc.HandleInbound(context.Background(), inbound("hello"))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if res.Status != models.MessageFailed || len(f.ledger.consumed) != 0 {
		t.Fatalf("status=%s consumed=%v", res.Status, f.ledger.consumed)
	}
}

func TestHandleInboundBooksForRegisteredContact(t *testing.T) {
	f := newFixture(true)
	f.gen.reply = "Sure!\n[APPOINTMENT_REQUEST]\ndate: 2025-03-11\ntime: 10:00\nservice: Vaccination\n[/APPOINTMENT_REQUEST]"
	slot := models.Slot{Date: "2025-03-11", Time: "10:00"}
	f.booking.outcome = &booking.Outcome{Valid: true, Requested: slot, Booking: &models.Booking{ID: "b1"}}

	res, err := f.svc.HandleInbound(context.Background(), inbound("Can I come tomorrow at 10?"))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if len(f.booking.requests) != 1 {
		t.Fatalf("requests = %+v", f.booking.requests)
	}
	req := f.booking.requests[0]
	if req.SubjectID != "s1" || req.Source != models.SourceWhatsApp || req.Title != "Vaccination" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if res.Booking == nil || res.Reply != intelligence.AppointmentConfirmed(slot, "Vaccination") {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(f.ledger.consumed) != 1 || f.ledger.consumed[0] != models.QuotaUnmetered {
		t.Fatalf("consumed = %v", f.ledger.consumed)
	}
}

func TestHandleInboundOffersAlternative(t *testing.T) {
	f := newFixture(true)
	f.gen.reply = "[APPOINTMENT_REQUEST]date: 2025-03-15\ntime: 10:00[/APPOINTMENT_REQUEST]"
	alt := &models.Slot{Date: "2025-03-17", Time: "09:00"}
	f.booking.outcome = &booking.Outcome{Valid: false, Reason: models.ReasonClosedDay, Alternative: alt}

	res, err := f.svc.HandleInbound(context.Background(), inbound("Saturday 10?"))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if res.Booking != nil || res.Reply != intelligence.AppointmentUnavailable(models.ReasonClosedDay, alt) {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestHandleInboundInvalidDate(t *testing.T) {
	f := newFixture(true)
	f.gen.reply = "[APPOINTMENT_REQUEST]date: 2025-02-30\ntime: 10:00[/APPOINTMENT_REQUEST]"
	f.booking.err = &scheduling.InvalidInputError{Field: "date", Value: "2025-02-30"}

	res, err := f.svc.HandleInbound(context.Background(), inbound("Feb 30?"))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if res.Reply != intelligence.AppointmentInvalid() {
		t.Fatalf("reply = %q", res.Reply)
	}
}

func TestHandleInboundIgnoresBlockFromUnknownContact(t *testing.T) {
	f := newFixture(false)
	f.gen.reply = "Please register first.[APPOINTMENT_REQUEST]date: 2025-03-11\ntime: 10:00[/APPOINTMENT_REQUEST]"

	res, err := f.svc.HandleInbound(context.Background(), inbound("book me"))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if len(f.booking.requests) != 0 || res.Reply != "Please register first." {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestHandleStatus(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()
	if _, err := f.svc.HandleInbound(ctx, inbound("hi")); err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}

	if err := f.svc.HandleStatus(ctx, models.StatusUpdate{MessageID: "wamid.out", Status: "read"}); err != nil {
		t.Fatalf("HandleStatus: %v", err)
	}
	if f.messages.statuses["wamid.out"] != "read" {
		t.Fatalf("statuses = %v", f.messages.statuses)
	}
	if err := f.svc.HandleStatus(ctx, models.StatusUpdate{MessageID: "unknown", Status: "read"}); err != nil {
		t.Fatalf("unknown id should be ignored: %v", err)
	}
}
