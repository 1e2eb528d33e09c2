package models

import "time"

// Message directions and statuses for the outbound journal.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"

	MessageSent       = "sent"
	MessageFailed     = "failed"
	MessageMocked     = "mocked"
	MessageReceived   = "received"
	MessageSuppressed = "suppressed"
)

// MessageLog is one journalled inbound or outbound message.
type MessageLog struct {
	ID         string    `bson:"id" json:"id"`
	TenantID   string    `bson:"tenant_id" json:"tenantId"`
	Direction  string    `bson:"direction" json:"direction"`
	Phone      string    `bson:"phone" json:"phone"`
	Text       string    `bson:"text" json:"text"`
	Status     string    `bson:"status" json:"status"`
	ContactID  string    `bson:"contact_id,omitempty" json:"contactId,omitempty"`
	Registered bool      `bson:"registered" json:"registered"`
	ExternalID string    `bson:"external_id,omitempty" json:"externalId,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
