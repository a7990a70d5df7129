package model

import "time"

// Reservation status lifecycle: pending on creation, confirmed on payment
// success, cancelled on cancellation. Confirmed and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	BookingTypeChef           = "chef"
	BookingTypeManagerBlocked = "manager_blocked"
	BookingTypeExternal       = "external"
)

const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Reservation is a kitchen time-window booking, half-open on
// [StartMinute, EndMinute). OwnerID is empty for manager-created blocks.
type Reservation struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ResourceID       string    `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	OwnerID          string    `json:"owner_id,omitempty" bson:"owner_id,omitempty" validate:"omitempty"`
	Date             string    `json:"date" bson:"date" validate:"required,booking_date"`
	StartMinute      int       `json:"start_minute" bson:"start_minute" validate:"min=0,max=1439"`
	EndMinute        int       `json:"end_minute" bson:"end_minute" validate:"min=1,max=1440,gtfield=StartMinute"`
	Status           string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	BookingType      string    `json:"booking_type" bson:"booking_type" validate:"required,oneof=chef manager_blocked external"`
	PriceCents       Cents     `json:"price_cents" bson:"price_cents" validate:"min=0"`
	PaymentSessionID string    `json:"payment_session_id,omitempty" bson:"payment_session_id,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// StorageReservation is a date-range rental of a storage unit. It never
// stands alone: ParentBookingID always references a kitchen reservation.
type StorageReservation struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StorageID       string    `json:"storage_id" bson:"storage_id" validate:"required,mongodb"`
	ParentBookingID string    `json:"parent_booking_id" bson:"parent_booking_id" validate:"required,mongodb"`
	StartDate       string    `json:"start_date" bson:"start_date" validate:"required,booking_date"`
	EndDate         string    `json:"end_date" bson:"end_date" validate:"required,booking_date"`
	Status          string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	PaymentStatus   string    `json:"payment_status" bson:"payment_status" validate:"required,oneof=unpaid paid failed refunded"`
	PriceCents      Cents     `json:"price_cents" bson:"price_cents" validate:"min=0"`
	OverdueDays     int       `json:"overdue_days,omitempty" bson:"overdue_days,omitempty"`
	PenaltyCents    Cents     `json:"penalty_cents,omitempty" bson:"penalty_cents,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// EquipmentReservation is a session rental of one equipment item, bundled
// under a kitchen booking. Only rental-type equipment is ever reserved.
type EquipmentReservation struct {
	ID                 string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	EquipmentID        string    `json:"equipment_id" bson:"equipment_id" validate:"required,mongodb"`
	ParentBookingID    string    `json:"parent_booking_id" bson:"parent_booking_id" validate:"required,mongodb"`
	StartDate          string    `json:"start_date" bson:"start_date" validate:"required,booking_date"`
	EndDate            string    `json:"end_date" bson:"end_date" validate:"required,booking_date"`
	Status             string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	PaymentStatus      string    `json:"payment_status" bson:"payment_status" validate:"required,oneof=unpaid paid failed refunded"`
	SessionRateCents   Cents     `json:"session_rate_cents" bson:"session_rate_cents" validate:"min=0"`
	DamageDepositCents Cents     `json:"damage_deposit_cents" bson:"damage_deposit_cents" validate:"min=0"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingLedger records the money flow for one parent booking: what was
// collected, what the platform and processor kept, what was disbursed to the
// kitchen manager, and what has already been refunded. The refundable cap is
// ManagerNetCents minus RefundedCents.
type BookingLedger struct {
	BookingID          string    `json:"booking_id" bson:"_id" validate:"required,mongodb"`
	GrossCents         Cents     `json:"gross_cents" bson:"gross_cents" validate:"min=0"`
	PlatformFeeCents   Cents     `json:"platform_fee_cents" bson:"platform_fee_cents" validate:"min=0"`
	ProcessorFeeCents  Cents     `json:"processor_fee_cents" bson:"processor_fee_cents" validate:"min=0"`
	ManagerNetCents    Cents     `json:"manager_net_cents" bson:"manager_net_cents" validate:"min=0"`
	RefundedCents      Cents     `json:"refunded_cents" bson:"refunded_cents" validate:"min=0"`
	PaymentReferenceID string    `json:"payment_reference_id,omitempty" bson:"payment_reference_id,omitempty"`
	UpdatedAt          time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}
