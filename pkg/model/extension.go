package model

import "time"

const (
	ExtensionPending   = "pending"
	ExtensionCompleted = "completed"
	ExtensionFailed    = "failed"
)

// PendingExtension tracks a chef's request to push a storage reservation's
// end date out. At most one pending extension may exist per reservation; a
// partial unique index enforces this at the store.
type PendingExtension struct {
	ID                   string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StorageReservationID string    `json:"storage_reservation_id" bson:"storage_reservation_id" validate:"required,mongodb"`
	NewEndDate           string    `json:"new_end_date" bson:"new_end_date" validate:"required,booking_date"`
	ExtensionDays        int       `json:"extension_days" bson:"extension_days" validate:"required,min=1"`
	PriceCents           Cents     `json:"price_cents" bson:"price_cents" validate:"min=0"`
	PaymentSessionID     string    `json:"payment_session_id,omitempty" bson:"payment_session_id,omitempty"`
	Status               string    `json:"status" bson:"status" validate:"required,oneof=pending completed failed"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// OverstayRecord is one sweep finding: a storage reservation past its end
// date with the computed penalty. The sweep is idempotent; identical inputs
// always produce identical records.
type OverstayRecord struct {
	StorageReservationID string `json:"storage_reservation_id"`
	ParentBookingID      string `json:"parent_booking_id"`
	EndDate              string `json:"end_date"`
	OverdueDays          int    `json:"overdue_days"`
	PenaltyCents         Cents  `json:"penalty_cents"`
}
