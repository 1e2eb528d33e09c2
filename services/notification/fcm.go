package notification

import (
	"context"
	"fmt"

	"vetflow/config"
	"vetflow/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Sender is the subset of *messaging.Client used for push delivery.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMDeliverer pushes messages to a contact's device. A nil Sender behaves
// like an unconfigured transport.
type FCMDeliverer struct {
	Sender Sender
	Title  string
	Logger *zap.Logger
}

func NewFCMDeliverer(sender Sender, title string, logger *zap.Logger) *FCMDeliverer {
	return &FCMDeliverer{Sender: sender, Title: title, Logger: logger}
}

func (d *FCMDeliverer) Channel() string { return config.ChannelFCM }

func (d *FCMDeliverer) Address(contact models.Contact) string { return contact.DeviceToken }

func (d *FCMDeliverer) Deliver(ctx context.Context, token, text string) DeliveryResult {
	if d.Sender == nil {
		d.Logger.Warn("FCM not configured, push not sent")
		return DeliveryResult{Mocked: true}
	}
	if token == "" {
		return DeliveryResult{Err: fmt.Errorf("contact has no device token")}
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: d.Title,
			Body:  text,
		},
		Data: map[string]string{"type": "reminder"},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "reminders",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := d.Sender.Send(ctx, msg)
	if err != nil {
		d.Logger.Error("Failed to send FCM message", zap.Error(err))
		return DeliveryResult{Err: fmt.Errorf("fcm send: %w", err)}
	}
	return DeliveryResult{Success: true, ExternalID: id}
}
