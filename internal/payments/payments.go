package payments

import (
	"context"

	"mise/pkg/model"
)

// Session is an opaque handle to a payment collected out of band. The engine
// stores references and amounts; card data and capture mechanics never enter
// this codebase.
type Session struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// Collaborator is the payment side of the platform. Implementations must be
// safe for concurrent use.
type Collaborator interface {
	// CreateSession opens a payment session for a booking total.
	CreateSession(ctx context.Context, amount model.Cents, currency, bookingID string) (*Session, error)

	// Refund returns part of a previously captured payment and yields the
	// processor's refund reference. Callers enforce the refundable cap.
	Refund(ctx context.Context, paymentRef string, amount model.Cents) (string, error)

	// ChargePenalty collects an overstay penalty against the original payment
	// method and yields the charge reference.
	ChargePenalty(ctx context.Context, amount model.Cents, currency, storageReservationID string) (string, error)
}
