package models

import (
	"math"
	"time"
)

// ConsumableUsage tracks how fast a subject goes through a product
// (food, medication) since the last restock.
type ConsumableUsage struct {
	ID                   string    `bson:"id" json:"id"`
	TenantID             string    `bson:"tenant_id" json:"tenantId"`
	SubjectID            string    `bson:"subject_id" json:"subjectId"`
	ProductID            string    `bson:"product_id" json:"productId"`
	ContactID            string    `bson:"contact_id" json:"contactId"`
	DailyConsumptionRate float64   `bson:"daily_consumption_rate" json:"dailyConsumptionRate"`
	LastRestockAt        time.Time `bson:"last_restock_at" json:"lastRestockAt"`
	LastRestockQuantity  float64   `bson:"last_restock_quantity" json:"lastRestockQuantity"`
	AutoRemind           bool      `bson:"auto_remind" json:"autoRemind"`
	RemindLeadDays       int       `bson:"remind_lead_days" json:"remindLeadDays"`
}

// ProjectedDepletion is the instant the last restock runs out.
func (u ConsumableUsage) ProjectedDepletion() time.Time {
	if u.DailyConsumptionRate <= 0 {
		return time.Time{}
	}
	days := u.LastRestockQuantity / u.DailyConsumptionRate
	return u.LastRestockAt.Add(time.Duration(days * float64(24*time.Hour)))
}

// RemainingDays counts whole elapsed days since the restock and returns how
// many days of stock are left at now. A non-positive rate yields +Inf.
func (u ConsumableUsage) RemainingDays(now time.Time) float64 {
	if u.DailyConsumptionRate <= 0 {
		return math.Inf(1)
	}
	elapsed := math.Floor(now.Sub(u.LastRestockAt).Hours() / 24)
	remaining := u.LastRestockQuantity - elapsed*u.DailyConsumptionRate
	return remaining / u.DailyConsumptionRate
}
