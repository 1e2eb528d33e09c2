// File: services/intelligence/interface.go
package intelligence

import (
	"context"

	"vetflow/models"
)

// Generator is the text-generation collaborator. Calls may fail or time out;
// callers go through Renderer, which degrades to templates.
type Generator interface {
	GenerateReminder(ctx context.Context, prompt ReminderPrompt) (string, error)
	Reply(ctx context.Context, prompt ChatPrompt) (string, error)
}

// ReminderPrompt carries what a reminder message is about.
type ReminderPrompt struct {
	Kind        models.ReminderKind
	ContactName string
	SubjectName string
	Detail      string
	Tenant      models.TenantConfig
}

// ChatPrompt is one inbound customer message plus its context.
type ChatPrompt struct {
	Message    string
	Tenant     models.TenantConfig
	Registered bool
	History    []models.ChatTurn
}

// Rendered is the outcome of rendering a reminder. Fallback is set when the
// template path produced the text.
type Rendered struct {
	Text     string
	Fallback bool
}

// ChatReply is a customer-facing reply with any booking intent extracted.
type ChatReply struct {
	Text        string
	Appointment *models.AppointmentRequest
	Fallback    bool
}
