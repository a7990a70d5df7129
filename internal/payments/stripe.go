package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"

	apperrors "mise/pkg/errors"
	"mise/pkg/logger"
	"mise/pkg/model"
)

// stripeCollaborator drives Stripe PaymentIntents. The package-level
// stripe.Key is set once at startup.
type stripeCollaborator struct {
	log *logger.Logger
}

func NewStripeCollaborator(apiKey string, log *logger.Logger) Collaborator {
	stripe.Key = apiKey
	return &stripeCollaborator{log: log}
}

func (s *stripeCollaborator) CreateSession(ctx context.Context, amount model.Cents, currency, bookingID string) (*Session, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:   stripe.Int64(int64(amount)),
		Currency: stripe.String(currency),
		Metadata: map[string]string{
			"booking_id": bookingID,
		},
	}
	params.SetIdempotencyKey("booking-session-" + bookingID)

	pi, err := paymentintent.New(params)
	if err != nil {
		s.log.Error("Failed to create payment session", "booking_id", bookingID, "amount", amount, "error", err)
		return nil, apperrors.Internal("Failed to create payment session", err)
	}

	s.log.Info("Payment session created", "booking_id", bookingID, "payment_intent", pi.ID, "amount", amount)
	return &Session{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *stripeCollaborator) Refund(ctx context.Context, paymentRef string, amount model.Cents) (string, error) {
	if paymentRef == "" {
		return "", apperrors.InvalidInput("No payment reference recorded for this booking")
	}

	params := &stripe.RefundParams{
		Params: stripe.Params{
			Context: ctx,
		},
		PaymentIntent: stripe.String(paymentRef),
		Amount:        stripe.Int64(int64(amount)),
	}

	r, err := refund.New(params)
	if err != nil {
		s.log.Error("Failed to issue refund", "payment_ref", paymentRef, "amount", amount, "error", err)
		return "", apperrors.Internal("Failed to issue refund", err)
	}

	s.log.Info("Refund issued", "payment_ref", paymentRef, "refund_id", r.ID, "amount", amount)
	return r.ID, nil
}

func (s *stripeCollaborator) ChargePenalty(ctx context.Context, amount model.Cents, currency, storageReservationID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:   stripe.Int64(int64(amount)),
		Currency: stripe.String(currency),
		Metadata: map[string]string{
			"storage_reservation_id": storageReservationID,
			"reason":                 "overstay_penalty",
		},
	}
	params.SetIdempotencyKey(fmt.Sprintf("overstay-penalty-%s-%d", storageReservationID, amount))

	pi, err := paymentintent.New(params)
	if err != nil {
		s.log.Error("Failed to charge overstay penalty", "storage_reservation_id", storageReservationID, "amount", amount, "error", err)
		return "", apperrors.Internal("Failed to charge overstay penalty", err)
	}

	s.log.Info("Overstay penalty charged", "storage_reservation_id", storageReservationID, "payment_intent", pi.ID, "amount", amount)
	return pi.ID, nil
}
