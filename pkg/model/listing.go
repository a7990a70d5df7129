package model

import "time"

// Equipment availability types. Included equipment comes with the kitchen and
// is recorded informationally; only rental equipment is ever booked.
const (
	EquipmentRental   = "rental"
	EquipmentIncluded = "included"
)

type KitchenListing struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ManagerID       string    `json:"manager_id" bson:"manager_id" validate:"required"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	City            string    `json:"city" bson:"city" validate:"required,min=2,max=50"`
	Address         string    `json:"address" bson:"address" validate:"required,min=2,max=200"`
	HourlyRateCents Cents     `json:"hourly_rate_cents" bson:"hourly_rate_cents" validate:"required,min=1"`
	Currency        string    `json:"currency" bson:"currency" validate:"required,len=3"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type StorageListing struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	KitchenID       string    `json:"kitchen_id" bson:"kitchen_id" validate:"required,mongodb"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	StorageType     string    `json:"storage_type" bson:"storage_type" validate:"required,oneof=dry cold frozen"`
	PeriodRateCents Cents     `json:"period_rate_cents" bson:"period_rate_cents" validate:"required,min=1"`
	PeriodDays      int       `json:"period_days" bson:"period_days" validate:"required,min=1,max=31"`
	MinBookingDays  int       `json:"min_booking_days" bson:"min_booking_days" validate:"min=0,max=365"`
	DailyRateCents  Cents     `json:"daily_rate_cents" bson:"daily_rate_cents" validate:"required,min=1"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type EquipmentListing struct {
	ID                 string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	KitchenID          string    `json:"kitchen_id" bson:"kitchen_id" validate:"required,mongodb"`
	Name               string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	AvailabilityType   string    `json:"availability_type" bson:"availability_type" validate:"required,oneof=rental included"`
	SessionRateCents   Cents     `json:"session_rate_cents" bson:"session_rate_cents" validate:"min=0"`
	DamageDepositCents Cents     `json:"damage_deposit_cents" bson:"damage_deposit_cents" validate:"min=0"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
