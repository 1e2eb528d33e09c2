package reminders

import (
	"context"
	"fmt"
	"time"

	"vetflow/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DepletionDetail is the reminder line for a product about to run out on
// runsOut, shown as a local date.
func DepletionDetail(productName string, remainingDays float64, runsOut time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s will run out in about %d days (around %s).",
		productName, int(remainingDays), runsOut.In(loc).Format("02/01/2006"))
}

// SweepConsumables creates and sends a food reminder for each tracked product
// projected to run out within its lead time.
func (s *Sweeper) SweepConsumables(ctx context.Context, now time.Time) (SweepReport, error) {
	var report SweepReport
	usages, err := s.Consumables.ListAutoRemind(ctx)
	if err != nil {
		return report, fmt.Errorf("list consumable usage: %w", err)
	}

	for _, u := range usages {
		report.Scanned++
		if u.DailyConsumptionRate <= 0 {
			report.Skipped++
			continue
		}
		remaining := u.RemainingDays(now)
		if remaining <= 0 || remaining > float64(u.RemindLeadDays) {
			continue
		}
		log := s.Logger.With(zap.String("usageID", u.ID), zap.String("tenantID", u.TenantID))

		recent, err := s.Reminders.HasRecentFoodReminder(ctx, u.TenantID, u.SubjectID, u.ProductID, now.Add(-foodDedupWindow))
		if err != nil {
			log.Error("Failed to check recent food reminders", zap.Error(err))
			report.Skipped++
			continue
		}
		if recent {
			report.Skipped++
			continue
		}

		contact, err := s.Directory.GetContact(ctx, u.TenantID, u.ContactID)
		if err != nil {
			log.Warn("Skipping consumable, contact not resolved", zap.Error(err))
			report.Skipped++
			continue
		}
		subject, err := s.Directory.GetSubject(ctx, u.TenantID, u.SubjectID)
		if err != nil {
			log.Warn("Skipping consumable, subject not resolved", zap.Error(err))
			report.Skipped++
			continue
		}
		product, err := s.Directory.GetProduct(ctx, u.TenantID, u.ProductID)
		if err != nil {
			log.Warn("Skipping consumable, product not resolved", zap.Error(err))
			report.Skipped++
			continue
		}

		cfg := s.tenantConfig(ctx, u.TenantID)
		detail := DepletionDetail(product.Name, remaining, u.ProjectedDepletion(), cfg.Location())
		sentAt := now.UTC()
		reminder := &models.Reminder{
			ID:          uuid.New().String(),
			TenantID:    u.TenantID,
			Kind:        models.KindFood,
			Title:       fmt.Sprintf("%s - Food reminder", subject.Name),
			DueAt:       sentAt,
			ContactID:   contact.ID,
			SubjectID:   subject.ID,
			ProductID:   product.ID,
			MessageBody: detail,
			Sent:        true,
			SentAt:      &sentAt,
			CreatedAt:   sentAt,
		}

		report.record(s.send(ctx, dispatch{
			tenantID:    u.TenantID,
			kind:        models.KindFood,
			contact:     contact,
			subjectName: subject.Name,
			detail:      detail,
			// The reminder row is the dedup marker, so it is written as sent.
			claim: func(ctx context.Context) (bool, error) {
				if err := s.Reminders.CreateReminder(ctx, reminder); err != nil {
					return false, err
				}
				return true, nil
			},
		}))
	}

	s.Logger.Info("Consumable sweep finished", zap.Any("report", report))
	return report, nil
}
