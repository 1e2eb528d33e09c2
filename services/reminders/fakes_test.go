package reminders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vetflow/database/repository"
	"vetflow/models"
	"vetflow/services/intelligence"
	"vetflow/services/notification"

	"go.uber.org/zap"
)

type memBookings struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func (m *memBookings) CreateBooking(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
	return nil
}
func (m *memBookings) GetBooking(_ context.Context, _, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}
func (m *memBookings) ListActiveBetween(context.Context, string, time.Time, time.Time) ([]models.Booking, error) {
	return nil, nil
}
func (m *memBookings) ListDueForReminder(_ context.Context, from, to time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.Status.IsActive() && !b.ReminderSent && !b.ScheduledAt.Before(from) && !b.ScheduledAt.After(to) {
			out = append(out, *b)
		}
	}
	return out, nil
}
func (m *memBookings) MarkReminderSent(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.ReminderSent {
		return false, nil
	}
	b.ReminderSent = true
	return true, nil
}
func (m *memBookings) UpdateStatus(context.Context, string, string, models.BookingStatus) error {
	return nil
}
func (m *memBookings) EnsureIndexes(context.Context) error { return nil }

type memReminders struct {
	mu        sync.Mutex
	reminders []*models.Reminder
}

func (m *memReminders) CreateReminder(_ context.Context, r *models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders = append(m.reminders, r)
	return nil
}
func (m *memReminders) ListDue(_ context.Context, from, to time.Time) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reminder
	for _, r := range m.reminders {
		if !r.Sent && !r.DueAt.Before(from) && !r.DueAt.After(to) {
			out = append(out, *r)
		}
	}
	return out, nil
}
func (m *memReminders) MarkSent(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reminders {
		if r.ID == id && !r.Sent {
			r.Sent = true
			r.SentAt = &at
			return true, nil
		}
	}
	return false, nil
}
func (m *memReminders) HasRecentFoodReminder(_ context.Context, tenantID, subjectID, productID string, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reminders {
		if r.TenantID == tenantID && r.Kind == models.KindFood && r.SubjectID == subjectID &&
			r.ProductID == productID && !r.DueAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}
func (m *memReminders) EnsureIndexes(context.Context) error { return nil }

type memConsumables struct {
	usages []models.ConsumableUsage
}

func (m *memConsumables) ListAutoRemind(context.Context) ([]models.ConsumableUsage, error) {
	var out []models.ConsumableUsage
	for _, u := range m.usages {
		if u.AutoRemind {
			out = append(out, u)
		}
	}
	return out, nil
}

type memDirectory struct {
	contacts map[string]models.Contact
	subjects map[string]models.Subject
	products map[string]models.Product
}

func notFound(what string) error { return fmt.Errorf("%s: %w", what, repository.ErrNotFound) }

func (d *memDirectory) GetContact(_ context.Context, _, id string) (*models.Contact, error) {
	if c, ok := d.contacts[id]; ok {
		return &c, nil
	}
	return nil, notFound("contact")
}
func (d *memDirectory) FindContactByPhone(context.Context, string) (*models.Contact, error) {
	return nil, notFound("contact")
}
func (d *memDirectory) GetSubject(_ context.Context, _, id string) (*models.Subject, error) {
	if s, ok := d.subjects[id]; ok {
		return &s, nil
	}
	return nil, notFound("subject")
}
func (d *memDirectory) FirstSubjectForContact(context.Context, string, string) (*models.Subject, error) {
	return nil, notFound("subject")
}
func (d *memDirectory) GetProduct(_ context.Context, _, id string) (*models.Product, error) {
	if p, ok := d.products[id]; ok {
		return &p, nil
	}
	return nil, notFound("product")
}
func (d *memDirectory) GetTenantConfig(context.Context, string) (*models.TenantConfig, error) {
	return nil, notFound("tenant config")
}
func (d *memDirectory) AnyTenantConfig(context.Context) (*models.TenantConfig, error) {
	return nil, notFound("tenant config")
}

func (*memDirectory) EnsureIndexes(context.Context) error { return nil }

type memMessages struct {
	mu   sync.Mutex
	logs []models.MessageLog
}

func (m *memMessages) InsertMessage(_ context.Context, msg *models.MessageLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *msg)
	return nil
}
func (m *memMessages) UpdateStatusByExternalID(context.Context, string, string) error { return nil }
func (m *memMessages) EnsureIndexes(context.Context) error { return nil }

// stubLedger follows the ledger's contract for known contacts: they are
// always allowed and never charged. exhausted only affects unknown contacts.
type stubLedger struct {
	mu        sync.Mutex
	exhausted bool
	failCheck bool
	checks    []bool
	consumed  int
}

func (l *stubLedger) Check(_ context.Context, _ string, contactIsKnown bool) (models.QuotaCheck, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checks = append(l.checks, contactIsKnown)
	switch {
	case l.failCheck:
		return models.QuotaCheck{}, errors.New("quota store unavailable")
	case contactIsKnown:
		return models.QuotaCheck{Allowed: true, Available: -1, UseFrom: models.QuotaUnmetered}, nil
	case l.exhausted:
		return models.QuotaCheck{Allowed: false, UseFrom: models.QuotaTopup}, nil
	}
	return models.QuotaCheck{Allowed: true, Available: 1, UseFrom: models.QuotaMetered}, nil
}
func (l *stubLedger) Consume(_ context.Context, _ string, contactIsKnown bool, useFrom models.QuotaClass) error {
	if contactIsKnown || useFrom == models.QuotaUnmetered {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.consumed++
	return nil
}
func (l *stubLedger) TopUp(context.Context, string, int) error { return nil }
func (l *stubLedger) TopUpPack(context.Context, string, string) (int, error) {
	return 0, nil
}
func (l *stubLedger) ResetPeriod(context.Context, string) error { return nil }
func (l *stubLedger) OpenPeriod(context.Context, string, string) (*models.QuotaPeriod, error) {
	return nil, nil
}
func (l *stubLedger) Snapshot(context.Context, string) (*models.QuotaPeriod, error) {
	return nil, nil
}
func (l *stubLedger) ResetExpiredPeriods(context.Context, time.Time) (int, error) { return 0, nil }

type stubDeliverer struct {
	mu   sync.Mutex
	fail bool
	sent []string
}

func (d *stubDeliverer) Deliver(_ context.Context, address, text string) notification.DeliveryResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, address+"|"+text)
	if d.fail {
		return notification.DeliveryResult{Err: errors.New("transport down")}
	}
	return notification.DeliveryResult{Success: true, ExternalID: fmt.Sprintf("ext-%d", len(d.sent))}
}
func (d *stubDeliverer) Address(c models.Contact) string { return c.Phone }
func (d *stubDeliverer) Channel() string                 { return "stub" }

type fixture struct {
	bookings    *memBookings
	reminders   *memReminders
	consumables *memConsumables
	directory   *memDirectory
	messages    *memMessages
	ledger      *stubLedger
	deliverer   *stubDeliverer
	sweeper     *Sweeper
}

func newFixture() *fixture {
	f := &fixture{
		bookings:    &memBookings{bookings: map[string]*models.Booking{}},
		reminders:   &memReminders{},
		consumables: &memConsumables{},
		directory: &memDirectory{
			contacts: map[string]models.Contact{"c1": {ID: "c1", TenantID: "t1", Name: "Ayse", Phone: "905551234567"}},
			subjects: map[string]models.Subject{"s1": {ID: "s1", TenantID: "t1", ContactID: "c1", Name: "Pamuk"}},
			products: map[string]models.Product{"p1": {ID: "p1", TenantID: "t1", Name: "Kitten Chow"}},
		},
		messages:  &memMessages{},
		ledger:    &stubLedger{},
		deliverer: &stubDeliverer{},
	}
	f.sweeper = &Sweeper{
		Bookings:    f.bookings,
		Reminders:   f.reminders,
		Consumables: f.consumables,
		Directory:   f.directory,
		Messages:    f.messages,
		Ledger:      f.ledger,
		Renderer:    intelligence.NewRenderer(nil, time.Second, zap.NewNop()),
		Deliverer:   f.deliverer,
		Logger:      zap.NewNop(),
	}
	return f
}
