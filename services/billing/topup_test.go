package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"vetflow/services/quota"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const secret = "whsec_test"

type stubLedger struct {
	quota.Ledger
	packs []string
}

func (l *stubLedger) TopUpPack(_ context.Context, tenantID, packID string) (int, error) {
	size, ok := quota.PackSize(packID)
	if !ok {
		return 0, errors.New("unknown pack")
	}
	l.packs = append(l.packs, tenantID+"/"+packID)
	return size, nil
}

type memEvents struct{ seen map[string]bool }

func (m *memEvents) MarkProcessed(_ context.Context, id string) (bool, error) {
	if m.seen[id] {
		return false, nil
	}
	m.seen[id] = true
	return true, nil
}

func (m *memEvents) Forget(_ context.Context, id string) error {
	delete(m.seen, id)
	return nil
}

func signed(t *testing.T, eventType, paymentStatus string, metadata string) ([]byte, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": %q,
		"type": %q,
		"data": {"object": {"id": "cs_1", "object": "checkout.session", "payment_status": %q, "metadata": %s}}
	}`, stripe.APIVersion, eventType, paymentStatus, metadata))
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return sp.Payload, sp.Header
}

func newProcessor() (*TopUpProcessor, *stubLedger) {
	ledger := &stubLedger{}
	return NewTopUpProcessor(secret, ledger, &memEvents{seen: map[string]bool{}}, zap.NewNop()), ledger
}

func TestHandleWebhookCreditsPaidPack(t *testing.T) {
	p, ledger := newProcessor()
	payload, sig := signed(t, "checkout.session.completed", "paid", `{"tenant_id":"t1","pack_id":"pack_25"}`)

	res, err := p.HandleWebhook(context.Background(), payload, sig)
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if res.Ignored || res.Added != 25 || res.TenantID != "t1" {
		t.Fatalf("unexpected result: %+v", res)
	}

	// Stripe redelivers; the pack is credited once.
	res, err = p.HandleWebhook(context.Background(), payload, sig)
	if err != nil || !res.Ignored {
		t.Fatalf("redelivery: %+v, %v", res, err)
	}
	if len(ledger.packs) != 1 {
		t.Fatalf("packs = %v", ledger.packs)
	}
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	p, ledger := newProcessor()
	cases := []struct{ name, typ, status, meta string }{
		{"other type", "payment_intent.succeeded", "paid", `{"tenant_id":"t1","pack_id":"pack_10"}`},
		{"unpaid", "checkout.session.completed", "unpaid", `{"tenant_id":"t1","pack_id":"pack_10"}`},
		{"no metadata", "checkout.session.completed", "paid", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, sig := signed(t, tc.typ, tc.status, tc.meta)
			res, err := p.HandleWebhook(context.Background(), payload, sig)
			if err != nil || !res.Ignored {
				t.Fatalf("expected ignored, got %+v, %v", res, err)
			}
		})
	}
	if len(ledger.packs) != 0 {
		t.Fatalf("packs = %v", ledger.packs)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	p, _ := newProcessor()
	payload, _ := signed(t, "checkout.session.completed", "paid", `{}`)
	if _, err := p.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestHandleWebhookFailedTopUpCanBeRetried(t *testing.T) {
	p, ledger := newProcessor()
	payload, sig := signed(t, "checkout.session.completed", "paid", `{"tenant_id":"t1","pack_id":"pack_999"}`)

	if _, err := p.HandleWebhook(context.Background(), payload, sig); err == nil {
		t.Fatal("expected unknown pack error")
	}
	if p.Events.(*memEvents).seen["evt_1"] {
		t.Fatal("failed event stayed recorded")
	}
	if len(ledger.packs) != 0 {
		t.Fatalf("packs = %v", ledger.packs)
	}
}
