package inbox

import (
	"encoding/json"
	"fmt"

	"vetflow/models"
)

// webhookPayload mirrors the parts of the WhatsApp Cloud API callback we read.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					ID        string `json:"id"`
					From      string `json:"from"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
				Statuses []struct {
					ID        string `json:"id"`
					Status    string `json:"status"`
					Timestamp string `json:"timestamp"`
				} `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// WebhookEvent is either a customer message or a delivery receipt. Both are
// nil for callbacks that carry neither.
type WebhookEvent struct {
	Message *models.InboundMessage
	Status  *models.StatusUpdate
}

// ParseWebhook extracts the first message, or failing that the first status
// update, from a webhook body.
func ParseWebhook(body []byte) (WebhookEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode webhook payload: %w", err)
	}
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return WebhookEvent{}, nil
	}
	value := payload.Entry[0].Changes[0].Value

	if len(value.Messages) == 0 {
		if len(value.Statuses) == 0 {
			return WebhookEvent{}, nil
		}
		s := value.Statuses[0]
		return WebhookEvent{Status: &models.StatusUpdate{
			MessageID: s.ID,
			Status:    s.Status,
			Timestamp: s.Timestamp,
		}}, nil
	}

	m := value.Messages[0]
	msg := &models.InboundMessage{
		MessageID: m.ID,
		From:      m.From,
		Text:      m.Text.Body,
		Type:      m.Type,
		Timestamp: m.Timestamp,
	}
	if len(value.Contacts) > 0 {
		msg.ContactName = value.Contacts[0].Profile.Name
	}
	return WebhookEvent{Message: msg}, nil
}

// VerifySubscription answers the hub challenge when mode and token match.
func VerifySubscription(mode, token, challenge, expected string) (string, bool) {
	if mode != "subscribe" || expected == "" || token != expected {
		return "", false
	}
	return challenge, true
}
