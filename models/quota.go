package models

import "time"

// QuotaClass names the bucket a message is charged against.
type QuotaClass string

const (
	QuotaUnmetered QuotaClass = "unmetered"
	QuotaMetered   QuotaClass = "metered"
	QuotaTopup     QuotaClass = "topup"
)

// QuotaPeriod is the single active billing-period row for a tenant.
type QuotaPeriod struct {
	TenantID     string    `bson:"tenant_id" json:"tenantId"`
	Plan         string    `bson:"plan" json:"plan"`
	PeriodStart  time.Time `bson:"period_start" json:"periodStart"`
	PeriodEnd    time.Time `bson:"period_end" json:"periodEnd"`
	MeteredUsed  int       `bson:"metered_used" json:"meteredUsed"`
	MeteredLimit int       `bson:"metered_limit" json:"meteredLimit"`
	TopupBalance int       `bson:"topup_balance" json:"topupBalance"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// Available is (limit - used) + topup.
func (p QuotaPeriod) Available() int {
	return (p.MeteredLimit - p.MeteredUsed) + p.TopupBalance
}

// QuotaCheck is the ledger's answer for one prospective send.
// Available is -1 for unmetered sends.
type QuotaCheck struct {
	Allowed   bool       `json:"allowed"`
	Available int        `json:"available"`
	UseFrom   QuotaClass `json:"useFrom"`
}
