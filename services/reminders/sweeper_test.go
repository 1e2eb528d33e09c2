package reminders

import (
	"context"
	"strings"
	"testing"
	"time"

	"vetflow/models"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestAppointmentSweepIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_ = f.bookings.CreateBooking(ctx, &models.Booking{
		ID: "b1", TenantID: "t1", ContactID: "c1", SubjectID: "s1", Title: "Vaccination",
		ScheduledAt: now.Add(26 * time.Hour), Status: models.BookingConfirmed,
	})
	_ = f.bookings.CreateBooking(ctx, &models.Booking{
		ID: "b2", TenantID: "t1", ContactID: "c1", SubjectID: "s1", Title: "Checkup",
		ScheduledAt: now.Add(5 * 24 * time.Hour), Status: models.BookingScheduled,
	})
	_ = f.bookings.CreateBooking(ctx, &models.Booking{
		ID: "b3", TenantID: "t1", ContactID: "c1", SubjectID: "s1", Title: "Surgery",
		ScheduledAt: now.Add(3 * time.Hour), Status: models.BookingCancelled,
	})

	first, err := f.sweeper.SweepAppointments(ctx, now)
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	second, err := f.sweeper.SweepAppointments(ctx, now)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	if first.Attempted != 1 || second.Attempted != 0 || second.Scanned != 0 {
		t.Fatalf("unexpected reports: first=%+v second=%+v", first, second)
	}
	if len(f.deliverer.sent) != 1 {
		t.Fatalf("expected one delivery, got %d", len(f.deliverer.sent))
	}
	if !strings.Contains(f.deliverer.sent[0], "Vaccination - 11/03/2025 14:00") {
		t.Fatalf("unexpected message: %q", f.deliverer.sent[0])
	}
	if b, _ := f.bookings.GetBooking(ctx, "t1", "b1"); !b.ReminderSent {
		t.Fatal("booking not latched")
	}
}

func TestAppointmentSweepLatchesOnFailedDelivery(t *testing.T) {
	f := newFixture()
	f.deliverer.fail = true
	ctx := context.Background()
	_ = f.bookings.CreateBooking(ctx, &models.Booking{
		ID: "b1", TenantID: "t1", ContactID: "c1", SubjectID: "s1", Title: "Vaccination",
		ScheduledAt: now.Add(time.Hour), Status: models.BookingScheduled,
	})

	report, err := f.sweeper.SweepAppointments(ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Attempted != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if b, _ := f.bookings.GetBooking(ctx, "t1", "b1"); !b.ReminderSent {
		t.Fatal("failed attempt should still latch the booking")
	}
	if len(f.messages.logs) != 1 || f.messages.logs[0].Status != models.MessageFailed {
		t.Fatalf("unexpected journal: %+v", f.messages.logs)
	}
	if f.ledger.consumed != 0 {
		t.Fatal("failed delivery should not be charged")
	}
}

func TestAppointmentSweepSkipsMissingEntities(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_ = f.bookings.CreateBooking(ctx, &models.Booking{
		ID: "b1", TenantID: "t1", ContactID: "ghost", SubjectID: "s1",
		ScheduledAt: now.Add(time.Hour), Status: models.BookingScheduled,
	})
	_ = f.bookings.CreateBooking(ctx, &models.Booking{
		ID: "b2", TenantID: "t1", ContactID: "c1", SubjectID: "s1", Title: "Checkup",
		ScheduledAt: now.Add(2 * time.Hour), Status: models.BookingScheduled,
	})

	report, err := f.sweeper.SweepAppointments(ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Scanned != 2 || report.Skipped != 1 || report.Attempted != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if b, _ := f.bookings.GetBooking(ctx, "t1", "b1"); b.ReminderSent {
		t.Fatal("skipped booking must stay unlatched for the next tick")
	}
}

func TestGenericSweep(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_ = f.reminders.CreateReminder(ctx, &models.Reminder{
		ID: "r1", TenantID: "t1", Kind: models.KindVaccination, ContactID: "c1", SubjectID: "s1",
		MessageBody: "Rabies booster", DueAt: now.Add(24 * time.Hour),
	})
	_ = f.reminders.CreateReminder(ctx, &models.Reminder{
		ID: "r2", TenantID: "t1", Kind: models.KindCustom, ContactID: "c1",
		MessageBody: "Bring the papers", DueAt: now.Add(time.Hour),
	})
	_ = f.reminders.CreateReminder(ctx, &models.Reminder{
		ID: "r3", TenantID: "t1", Kind: models.KindCheckup, ContactID: "c1",
		MessageBody: "Too far out", DueAt: now.Add(72 * time.Hour),
	})

	report, err := f.sweeper.SweepGenericReminders(ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Scanned != 2 || report.Attempted != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	joined := strings.Join(f.deliverer.sent, "\n")
	if !strings.Contains(joined, "Pamuk") || !strings.Contains(joined, fallbackSubjectName) {
		t.Fatalf("subject names not rendered: %q", joined)
	}
	for _, r := range f.reminders.reminders[:2] {
		if !r.Sent || r.SentAt == nil || !r.SentAt.Equal(now) {
			t.Fatalf("reminder %s not latched: %+v", r.ID, r)
		}
	}
	if f.reminders.reminders[2].Sent {
		t.Fatal("reminder outside window was sent")
	}
	if f.ledger.consumed != 0 || len(f.messages.logs) != 2 {
		t.Fatalf("reminders must not be charged: consumed=%d journal=%d", f.ledger.consumed, len(f.messages.logs))
	}
	for _, known := range f.ledger.checks {
		if !known {
			t.Fatal("reminder quota checks must treat the recipient as a known contact")
		}
	}

	again, _ := f.sweeper.SweepGenericReminders(ctx, now)
	if again.Attempted != 0 {
		t.Fatalf("second sweep re-sent: %+v", again)
	}
}

func TestGenericSweepIgnoresExhaustedQuota(t *testing.T) {
	f := newFixture()
	f.ledger.exhausted = true
	ctx := context.Background()
	_ = f.reminders.CreateReminder(ctx, &models.Reminder{
		ID: "r1", TenantID: "t1", Kind: models.KindCheckup, ContactID: "c1", DueAt: now.Add(time.Hour),
	})

	report, _ := f.sweeper.SweepGenericReminders(ctx, now)
	if report.Attempted != 1 || len(f.deliverer.sent) != 1 {
		t.Fatalf("reminder to a registered contact was held back: %+v", report)
	}
	if !f.reminders.reminders[0].Sent || f.ledger.consumed != 0 {
		t.Fatalf("sent=%v consumed=%d", f.reminders.reminders[0].Sent, f.ledger.consumed)
	}
}

func TestGenericSweepQuotaErrorLeavesReminderUnsent(t *testing.T) {
	f := newFixture()
	f.ledger.failCheck = true
	ctx := context.Background()
	_ = f.reminders.CreateReminder(ctx, &models.Reminder{
		ID: "r1", TenantID: "t1", Kind: models.KindCheckup, ContactID: "c1", DueAt: now.Add(time.Hour),
	})

	report, _ := f.sweeper.SweepGenericReminders(ctx, now)
	if report.Skipped != 1 || len(f.deliverer.sent) != 0 {
		t.Fatalf("unexpected report: %+v sent=%d", report, len(f.deliverer.sent))
	}
	if f.reminders.reminders[0].Sent {
		t.Fatal("reminder should stay unsent for the next tick")
	}
	if len(f.messages.logs) != 0 {
		t.Fatalf("unexpected journal: %+v", f.messages.logs)
	}
}

func usage(daysAgo int) models.ConsumableUsage {
	return models.ConsumableUsage{
		ID: "u1", TenantID: "t1", SubjectID: "s1", ProductID: "p1", ContactID: "c1",
		DailyConsumptionRate: 2, LastRestockQuantity: 30, AutoRemind: true, RemindLeadDays: 3,
		LastRestockAt: now.AddDate(0, 0, -daysAgo),
	}
}

func TestConsumableSweepNotYetLow(t *testing.T) {
	f := newFixture()
	f.consumables.usages = []models.ConsumableUsage{usage(6)}

	if got := usage(6).RemainingDays(now); got != 9 {
		t.Fatalf("remaining days = %v, want 9", got)
	}
	report, err := f.sweeper.SweepConsumables(context.Background(), now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Attempted != 0 || len(f.reminders.reminders) != 0 {
		t.Fatalf("unexpected reminder: %+v", report)
	}
}

func TestConsumableSweepCreatesOnceWithinDay(t *testing.T) {
	f := newFixture()
	f.consumables.usages = []models.ConsumableUsage{usage(12)}
	ctx := context.Background()

	if got := usage(12).RemainingDays(now); got != 3 {
		t.Fatalf("remaining days = %v, want 3", got)
	}
	if got := usage(12).ProjectedDepletion(); !got.Equal(now.AddDate(0, 0, 3)) {
		t.Fatalf("projected depletion = %s, want %s", got, now.AddDate(0, 0, 3))
	}
	report, err := f.sweeper.SweepConsumables(ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Attempted != 1 || len(f.reminders.reminders) != 1 {
		t.Fatalf("expected one reminder, report=%+v", report)
	}
	r := f.reminders.reminders[0]
	if r.Kind != models.KindFood || !r.Sent || r.SentAt == nil || r.ProductID != "p1" {
		t.Fatalf("unexpected reminder: %+v", r)
	}
	if !strings.Contains(f.deliverer.sent[0], "Kitten Chow will run out in about 3 days (around 13/03/2025).") {
		t.Fatalf("unexpected message: %q", f.deliverer.sent[0])
	}

	again, err := f.sweeper.SweepConsumables(ctx, now.Add(6*time.Hour))
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if again.Attempted != 0 || len(f.reminders.reminders) != 1 {
		t.Fatalf("duplicate food reminder: %+v", again)
	}
}

func TestConsumableSweepExhaustedStockIgnored(t *testing.T) {
	f := newFixture()
	f.consumables.usages = []models.ConsumableUsage{usage(20)}
	report, _ := f.sweeper.SweepConsumables(context.Background(), now)
	if report.Attempted != 0 || len(f.reminders.reminders) != 0 {
		t.Fatalf("run-out stock should not remind: %+v", report)
	}
}
