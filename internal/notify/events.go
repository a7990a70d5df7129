package notify

import (
	"context"

	"github.com/google/uuid"

	"mise/pkg/kafka"
	"mise/pkg/logger"
	"mise/pkg/model"
)

const (
	EventBookingCreated     = "booking.created"
	EventBookingConfirmed   = "booking.confirmed"
	EventBookingCancelled   = "booking.cancelled"
	EventOverstayDetected   = "storage.overstay_detected"
	EventExtensionRequested = "storage.extension_requested"
	EventExtensionResolved  = "storage.extension_resolved"

	schemaVersion = "1"
	source        = "mise"
)

// Publisher emits domain events. Methods never return errors: event delivery
// is best-effort and must not affect booking outcomes.
type Publisher interface {
	BookingCreated(ctx context.Context, resp *model.BookingResponse)
	BookingConfirmed(ctx context.Context, reservation *model.Reservation)
	BookingCancelled(ctx context.Context, result *model.CancellationResult)
	OverstayDetected(ctx context.Context, record model.OverstayRecord)
	ExtensionRequested(ctx context.Context, ext *model.PendingExtension)
	ExtensionResolved(ctx context.Context, ext *model.PendingExtension)
}

type Events struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewEvents(producer *kafka.Producer, log *logger.Logger) *Events {
	return &Events{
		producer: producer,
		log:      log,
	}
}

func (e *Events) BookingCreated(ctx context.Context, resp *model.BookingResponse) {
	e.publish(ctx, EventBookingCreated, resp.BookingID, resp)
}

func (e *Events) BookingConfirmed(ctx context.Context, reservation *model.Reservation) {
	e.publish(ctx, EventBookingConfirmed, reservation.ID, reservation)
}

func (e *Events) BookingCancelled(ctx context.Context, result *model.CancellationResult) {
	e.publish(ctx, EventBookingCancelled, result.BookingID, result)
}

func (e *Events) OverstayDetected(ctx context.Context, record model.OverstayRecord) {
	e.publish(ctx, EventOverstayDetected, record.StorageReservationID, record)
}

func (e *Events) ExtensionRequested(ctx context.Context, ext *model.PendingExtension) {
	e.publish(ctx, EventExtensionRequested, ext.StorageReservationID, ext)
}

func (e *Events) ExtensionResolved(ctx context.Context, ext *model.PendingExtension) {
	e.publish(ctx, EventExtensionResolved, ext.StorageReservationID, ext)
}

func (e *Events) publish(ctx context.Context, eventType, key string, payload any) {
	if e.producer == nil {
		e.log.Debug("Event publishing disabled, dropping event", "event_type", eventType, "key", key)
		return
	}

	if key == "" {
		key = uuid.New().String()
	}

	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(source).
		WithSchemaVersion(schemaVersion).
		Build()

	if err := e.producer.Publish(ctx, msg); err != nil {
		e.log.Error("Failed to publish event", "event_type", eventType, "key", key, "error", err)
	}
}
