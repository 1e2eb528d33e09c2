package models

import "time"

// ReminderKind classifies a reminder for message rendering.
type ReminderKind string

const (
	KindAppointment ReminderKind = "appointment"
	KindVaccination ReminderKind = "vaccination"
	KindMedication  ReminderKind = "medication"
	KindFood        ReminderKind = "food"
	KindCheckup     ReminderKind = "checkup"
	KindCustom      ReminderKind = "custom"
)

// Valid reports whether k is one of the known kinds.
func (k ReminderKind) Valid() bool {
	switch k {
	case KindAppointment, KindVaccination, KindMedication, KindFood, KindCheckup, KindCustom:
		return true
	}
	return false
}

// Reminder is a one-shot customer notification due at DueAt.
// Sent is a one-way latch: once set it is never cleared.
type Reminder struct {
	ID          string       `bson:"id" json:"id"`
	TenantID    string       `bson:"tenant_id" json:"tenantId"`
	Kind        ReminderKind `bson:"kind" json:"kind"`
	Title       string       `bson:"title" json:"title"`
	DueAt       time.Time    `bson:"due_at" json:"dueAt"`
	ContactID   string       `bson:"contact_id" json:"contactId"`
	SubjectID   string       `bson:"subject_id,omitempty" json:"subjectId,omitempty"`
	ProductID   string       `bson:"product_id,omitempty" json:"productId,omitempty"`
	MessageBody string       `bson:"message_body" json:"messageBody"`
	Sent        bool         `bson:"sent" json:"sent"`
	SentAt      *time.Time   `bson:"sent_at,omitempty" json:"sentAt,omitempty"`
	CreatedAt   time.Time    `bson:"created_at" json:"createdAt"`
}
