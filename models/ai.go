package models

import "time"

// AppointmentRequest is the structured booking intent extracted from a chat reply.
type AppointmentRequest struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Service string `json:"service"`
}

// ChatTurn is one exchange kept in the conversation history.
type ChatTurn struct {
	Role string    `json:"role"` // "customer" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// InboundMessage is a parsed customer message from the messaging webhook.
type InboundMessage struct {
	MessageID   string `json:"messageId"`
	From        string `json:"from"`
	Text        string `json:"text"`
	Type        string `json:"type"`
	ContactName string `json:"contactName"`
	Timestamp   string `json:"timestamp"`
}

// StatusUpdate is a delivery receipt from the messaging webhook.
type StatusUpdate struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
