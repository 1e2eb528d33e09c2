package notification

import (
	"context"

	"vetflow/models"
)

// Deliverer is the outbound message transport.
type Deliverer interface {
	// Deliver never returns an error; failures are reported in the result.
	Deliver(ctx context.Context, address, text string) DeliveryResult
	// Address picks the destination for a contact on this channel.
	Address(contact models.Contact) string
	Channel() string
}

// DeliveryResult reports one delivery attempt. Mocked means the transport is
// unconfigured and nothing left the process; it still counts as attempted.
type DeliveryResult struct {
	Success    bool
	Mocked     bool
	ExternalID string
	Err        error
}

// Delivered reports whether the attempt should be treated as sent.
func (r DeliveryResult) Delivered() bool {
	return r.Success || r.Mocked
}

// Status maps the result onto the message journal statuses.
func (r DeliveryResult) Status() string {
	switch {
	case r.Success:
		return models.MessageSent
	case r.Mocked:
		return models.MessageMocked
	default:
		return models.MessageFailed
	}
}
