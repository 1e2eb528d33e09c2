// File: models/records.go
package models

import "time"

// HealthRecord is a treatment or vaccination entry for a subject. A future
// NextDueAt produces a reminder.
type HealthRecord struct {
	ID          string     `bson:"id" json:"id"`
	TenantID    string     `bson:"tenant_id" json:"tenantId"`
	SubjectID   string     `bson:"subject_id" json:"subjectId"`
	RecordType  string     `bson:"record_type" json:"recordType"` // vaccination, treatment, surgery, checkup
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Date        time.Time  `bson:"date" json:"date"`
	NextDueAt   *time.Time `bson:"next_due_at,omitempty" json:"nextDueAt,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
}
