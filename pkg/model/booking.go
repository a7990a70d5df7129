package model

// BookingRequest is the single entry point for creating a bundled booking:
// one kitchen time window plus zero or more storage date-ranges and equipment
// sessions, persisted all-or-nothing.
type BookingRequest struct {
	KitchenID      string                 `json:"kitchen_id" validate:"required,mongodb"`
	ChefID         string                 `json:"chef_id" validate:"required"`
	Date           string                 `json:"date" validate:"required,booking_date"`
	StartMinute    int                    `json:"start_minute" validate:"min=0,max=1439"`
	EndMinute      int                    `json:"end_minute" validate:"min=1,max=1440,gtfield=StartMinute"`
	StorageItems   []StorageItemRequest   `json:"storage_items,omitempty" validate:"omitempty,dive"`
	EquipmentItems []EquipmentItemRequest `json:"equipment_items,omitempty" validate:"omitempty,dive"`
}

type StorageItemRequest struct {
	ListingID string `json:"listing_id" validate:"required,mongodb"`
	StartDate string `json:"start_date" validate:"required,booking_date"`
	EndDate   string `json:"end_date" validate:"required,booking_date"`
}

type EquipmentItemRequest struct {
	ListingID string `json:"listing_id" validate:"required,mongodb"`
}

// PriceLine is one itemized entry of a breakdown. The deposit rides outside
// the fee-bearing subtotal: fees apply to BaseCents only.
type PriceLine struct {
	Label        string `json:"label"`
	ListingID    string `json:"listing_id"`
	BaseCents    Cents  `json:"base_cents"`
	FeeCents     Cents  `json:"fee_cents"`
	DepositCents Cents  `json:"deposit_cents,omitempty"`
}

func (l PriceLine) TotalCents() Cents {
	return l.BaseCents + l.FeeCents + l.DepositCents
}

// PriceBreakdown itemizes a booking's price. TotalCents always equals the sum
// of the line totals; the subtotal fields are derived views of the same lines.
type PriceBreakdown struct {
	Lines             []PriceLine `json:"lines"`
	KitchenSubtotal   Cents       `json:"kitchen_subtotal_cents"`
	StorageSubtotal   Cents       `json:"storage_subtotal_cents"`
	EquipmentSubtotal Cents       `json:"equipment_subtotal_cents"`
	ServiceFees       Cents       `json:"service_fees_cents"`
	Deposits          Cents       `json:"deposits_cents"`
	TotalCents        Cents       `json:"total_cents"`
	Currency          string      `json:"currency"`
}

// BookingResponse is the assembled result: the persisted parent booking, its
// sub-reservations, the price breakdown, and an opaque payment-session token.
// Payment capture itself is delegated to the payment collaborator.
type BookingResponse struct {
	BookingID             string                 `json:"booking_id"`
	Reservation           *Reservation           `json:"reservation"`
	StorageReservations   []StorageReservation   `json:"storage_reservations,omitempty"`
	EquipmentReservations []EquipmentReservation `json:"equipment_reservations,omitempty"`
	IncludedEquipment     []string               `json:"included_equipment,omitempty"`
	Breakdown             PriceBreakdown         `json:"price_breakdown"`
	PaymentSessionToken   string                 `json:"payment_session_token"`
}

// CancellationResult reports a cascade outcome: which rows were cancelled and
// the refundable cap. The cascade never moves funds itself.
type CancellationResult struct {
	BookingID            string `json:"booking_id"`
	CancelledStorage     int    `json:"cancelled_storage"`
	CancelledEquipment   int    `json:"cancelled_equipment"`
	RefundableCapCents   Cents  `json:"refundable_cap_cents"`
	RequestedRefundCents Cents  `json:"requested_refund_cents,omitempty"`
	RefundTransactionRef string `json:"refund_transaction_ref,omitempty"`
}
