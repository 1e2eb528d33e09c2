package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vetflow/services/quota"

	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// Checkout session metadata keys set when the pack purchase is created.
const (
	MetaTenantID = "tenant_id"
	MetaPackID   = "pack_id"

	eventCheckoutCompleted = "checkout.session.completed"
	processedEventPrefix   = "stripe:event:"
	processedEventTTL      = 7 * 24 * time.Hour
)

var ErrInvalidSignature = errors.New("stripe signature invalid")

// EventLog remembers processed webhook events so retries do not top up twice.
type EventLog interface {
	MarkProcessed(ctx context.Context, eventID string) (first bool, err error)
	Forget(ctx context.Context, eventID string) error
}

// RedisEventLog records event ids with SET NX.
type RedisEventLog struct {
	Client *redis.Client
}

func (l *RedisEventLog) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	return l.Client.SetNX(ctx, processedEventPrefix+eventID, 1, processedEventTTL).Result()
}

func (l *RedisEventLog) Forget(ctx context.Context, eventID string) error {
	return l.Client.Del(ctx, processedEventPrefix+eventID).Err()
}

// TopUpResult describes what a webhook event changed.
type TopUpResult struct {
	EventID  string `json:"eventId"`
	TenantID string `json:"tenantId,omitempty"`
	PackID   string `json:"packId,omitempty"`
	Added    int    `json:"added"`
	Ignored  bool   `json:"ignored"`
}

// TopUpProcessor credits response packs bought through Stripe Checkout.
type TopUpProcessor struct {
	Secret string
	Ledger quota.Ledger
	Events EventLog // optional
	Logger *zap.Logger
}

func NewTopUpProcessor(secret string, ledger quota.Ledger, events EventLog, logger *zap.Logger) *TopUpProcessor {
	return &TopUpProcessor{Secret: secret, Ledger: ledger, Events: events, Logger: logger}
}

// HandleWebhook verifies the payload signature and applies a paid pack
// purchase to the tenant's top-up balance. Other events are acknowledged
// and ignored.
func (p *TopUpProcessor) HandleWebhook(ctx context.Context, payload []byte, signature string) (*TopUpResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	result := &TopUpResult{EventID: event.ID, Ignored: true}
	if event.Type != eventCheckoutCompleted {
		return result, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		p.Logger.Info("Checkout session not paid yet",
			zap.String("sessionID", session.ID), zap.String("status", string(session.PaymentStatus)))
		return result, nil
	}

	tenantID, packID := session.Metadata[MetaTenantID], session.Metadata[MetaPackID]
	if tenantID == "" || packID == "" {
		p.Logger.Warn("Checkout session without pack metadata", zap.String("sessionID", session.ID))
		return result, nil
	}
	result.TenantID, result.PackID = tenantID, packID

	if p.Events != nil {
		first, err := p.Events.MarkProcessed(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("record stripe event %s: %w", event.ID, err)
		}
		if !first {
			p.Logger.Info("Duplicate stripe event", zap.String("eventID", event.ID))
			return result, nil
		}
	}

	added, err := p.Ledger.TopUpPack(ctx, tenantID, packID)
	if err != nil {
		// Let Stripe's redelivery try again.
		if p.Events != nil {
			if ferr := p.Events.Forget(ctx, event.ID); ferr != nil {
				p.Logger.Warn("Failed to forget stripe event", zap.String("eventID", event.ID), zap.Error(ferr))
			}
		}
		return nil, err
	}
	p.Logger.Info("Response pack credited",
		zap.String("tenantID", tenantID), zap.String("packID", packID), zap.Int("added", added))
	result.Added = added
	result.Ignored = false
	return result, nil
}
