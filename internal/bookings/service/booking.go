package service

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "mise/internal/bookings/errors"
	"mise/internal/bookings/repository"
	"mise/internal/bookings/validator"
	"mise/internal/eligibility"
	listingserrors "mise/internal/listings/errors"
	listingsrepo "mise/internal/listings/repository"
	"mise/internal/notify"
	"mise/internal/payments"
	"mise/internal/pricing"
	"mise/pkg/config"
	mongotx "mise/pkg/db/mongo"
	apperrors "mise/pkg/errors"
	"mise/pkg/metrics"
	"mise/pkg/model"
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.BookingResponse, error)
	GetByID(ctx context.Context, id string) (*model.BookingResponse, error)
	Cancel(ctx context.Context, id string, requestedRefund model.Cents) (*model.CancellationResult, error)
	ConfirmPayment(ctx context.Context, id string, paymentRef string) (*model.Reservation, error)
	FailPayment(ctx context.Context, id string) error
	CreateBlock(ctx context.Context, resourceID, date string, startMinute, endMinute int) (*model.Reservation, error)
	ListByKitchen(ctx context.Context, kitchenID, fromDate string, limit int, offset int64) ([]*model.Reservation, int64, error)
}

type bookingService struct {
	repo       repository.ReservationRepository
	listings   listingsrepo.ListingRepository
	conflicts  *ConflictDetector
	calculator *pricing.Calculator
	validator  *validator.BookingValidator
	checker    eligibility.Checker
	pay        payments.Collaborator
	events     notify.Publisher
	cfg        *config.Config
}

func NewBookingService(
	repo repository.ReservationRepository,
	listings listingsrepo.ListingRepository,
	conflicts *ConflictDetector,
	calculator *pricing.Calculator,
	bookingValidator *validator.BookingValidator,
	checker eligibility.Checker,
	pay payments.Collaborator,
	events notify.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		listings:   listings,
		conflicts:  conflicts,
		calculator: calculator,
		validator:  bookingValidator,
		checker:    checker,
		pay:        pay,
		events:     events,
		cfg:        cfg,
	}
}

// resolvedBundle is a booking request with every listing loaded and every
// duration computed, ready for pricing and persistence.
type resolvedBundle struct {
	kitchen           *model.KitchenListing
	storage           []pricing.StorageItem
	storageRequests   []model.StorageItemRequest
	rentalEquipment   []*model.EquipmentListing
	includedEquipment []string
}

// Create books a kitchen window plus its storage and equipment sub-items
// all-or-nothing. The conflict checks and every insert run inside one store
// transaction; losing a race surfaces as SlotUnavailable, never as a partial
// booking.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.BookingResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.checker.Check(ctx, req.ChefID, req.KitchenID); err != nil {
		return nil, err
	}

	bundle, err := s.resolveBundle(ctx, req)
	if err != nil {
		return nil, err
	}

	// Equipment is rented for the whole booking day; the half-open range
	// [date, date+1) is what overlap queries compare against.
	equipmentEnd, err := model.AddDays(req.Date, 1)
	if err != nil {
		return nil, apperrors.InvalidDateRange("date must be formatted as YYYY-MM-DD")
	}

	breakdown := s.calculator.Quote(pricing.Input{
		Kitchen:   bundle.kitchen,
		Minutes:   req.EndMinute - req.StartMinute,
		Storage:   bundle.storage,
		Equipment: bundle.rentalEquipment,
	})

	reservation := &model.Reservation{
		ResourceID:  req.KitchenID,
		OwnerID:     req.ChefID,
		Date:        req.Date,
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
		Status:      model.StatusPending,
		BookingType: model.BookingTypeChef,
		PriceCents:  breakdown.TotalCents,
	}

	var storageReservations []model.StorageReservation
	var equipmentReservations []model.EquipmentReservation

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		storageReservations = nil
		equipmentReservations = nil

		if err := s.conflicts.CheckKitchen(sessCtx, req.KitchenID, req.Date, req.StartMinute, req.EndMinute, ""); err != nil {
			return err
		}
		for _, item := range req.StorageItems {
			if err := s.conflicts.CheckStorage(sessCtx, item.ListingID, item.StartDate, item.EndDate, ""); err != nil {
				return err
			}
		}
		for _, eq := range bundle.rentalEquipment {
			if err := s.conflicts.CheckEquipment(sessCtx, eq.ID, req.Date, equipmentEnd, ""); err != nil {
				return err
			}
		}

		if err := s.repo.CreateReservation(sessCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}

		for i, item := range bundle.storage {
			reqItem := bundle.storageRequests[i]
			sr := model.StorageReservation{
				StorageID:       item.Listing.ID,
				ParentBookingID: reservation.ID,
				StartDate:       reqItem.StartDate,
				EndDate:         reqItem.EndDate,
				Status:          model.StatusPending,
				PaymentStatus:   model.PaymentUnpaid,
				PriceCents:      item.Listing.PeriodRateCents * model.Cents(model.CeilPeriods(item.Days, item.Listing.PeriodDays)),
			}
			if err := s.repo.CreateStorageReservation(sessCtx, &sr); err != nil {
				return apperrors.Internal("Failed to create storage reservation", err)
			}
			storageReservations = append(storageReservations, sr)
		}

		for _, eq := range bundle.rentalEquipment {
			er := model.EquipmentReservation{
				EquipmentID:        eq.ID,
				ParentBookingID:    reservation.ID,
				StartDate:          req.Date,
				EndDate:            equipmentEnd,
				Status:             model.StatusPending,
				PaymentStatus:      model.PaymentUnpaid,
				SessionRateCents:   eq.SessionRateCents,
				DamageDepositCents: eq.DamageDepositCents,
			}
			if err := s.repo.CreateEquipmentReservation(sessCtx, &er); err != nil {
				return apperrors.Internal("Failed to create equipment reservation", err)
			}
			equipmentReservations = append(equipmentReservations, er)
		}

		ledger := s.calculator.LedgerSplit(reservation.ID, breakdown.TotalCents)
		if err := s.repo.CreateLedger(sessCtx, &ledger); err != nil {
			return apperrors.Internal("Failed to create booking ledger", err)
		}

		return nil
	})
	if err != nil {
		if mongotx.IsWriteConflict(err) {
			metrics.IncBookingConflict("transaction")
			s.cfg.Log.Warn("Booking lost a write race", "kitchen_id", req.KitchenID, "date", req.Date)
			return nil, apperrors.SlotUnavailable("The requested slot was just taken by another booking")
		}
		if apperrors.IsCode(err, apperrors.CodeSlotUnavailable) {
			metrics.IncBookingConflict("precheck")
		}
		s.cfg.Log.Error("Failed to create booking", "kitchen_id", req.KitchenID, "date", req.Date, "error", err)
		return nil, err
	}

	metrics.IncBookingCreated(model.BookingTypeChef)

	response := &model.BookingResponse{
		BookingID:             reservation.ID,
		Reservation:           reservation,
		StorageReservations:   storageReservations,
		EquipmentReservations: equipmentReservations,
		IncludedEquipment:     bundle.includedEquipment,
		Breakdown:             breakdown,
	}

	session, err := s.pay.CreateSession(ctx, breakdown.TotalCents, breakdown.Currency, reservation.ID)
	if err != nil {
		// The booking stands; the client can re-request a payment session.
		s.cfg.Log.Error("Payment session creation failed after booking", "booking_id", reservation.ID, "error", err)
	} else {
		response.PaymentSessionToken = session.ID
		if err := s.repo.SetPaymentSession(ctx, reservation.ID, session.ID); err != nil {
			s.cfg.Log.Error("Failed to record payment session", "booking_id", reservation.ID, "error", err)
		}
	}

	s.events.BookingCreated(ctx, response)

	s.cfg.Log.Info("Booking created successfully",
		"booking_id", reservation.ID,
		"kitchen_id", req.KitchenID,
		"date", req.Date,
		"total_cents", breakdown.TotalCents,
		"storage_items", len(storageReservations),
		"equipment_items", len(equipmentReservations),
	)
	return response, nil
}

func (s *bookingService) resolveBundle(ctx context.Context, req *model.BookingRequest) (*resolvedBundle, error) {
	kitchen, err := s.listings.FindKitchenByID(ctx, req.KitchenID)
	if err != nil {
		return nil, s.mapListingError(err, "Kitchen", req.KitchenID)
	}

	bundle := &resolvedBundle{kitchen: kitchen}

	for _, item := range req.StorageItems {
		listing, err := s.listings.FindStorageByID(ctx, item.ListingID)
		if err != nil {
			return nil, s.mapListingError(err, "StorageListing", item.ListingID)
		}
		if listing.KitchenID != req.KitchenID {
			return nil, apperrors.InvalidInput("Storage listing does not belong to the requested kitchen")
		}

		days, err := model.DaysBetween(item.StartDate, item.EndDate)
		if err != nil || days <= 0 {
			return nil, apperrors.InvalidDateRange("Storage end_date must be after start_date")
		}
		if days < listing.MinBookingDays {
			return nil, apperrors.BelowMinimumDuration(listing.ID, days, listing.MinBookingDays)
		}

		bundle.storage = append(bundle.storage, pricing.StorageItem{Listing: listing, Days: days})
		bundle.storageRequests = append(bundle.storageRequests, item)
	}

	for _, item := range req.EquipmentItems {
		listing, err := s.listings.FindEquipmentByID(ctx, item.ListingID)
		if err != nil {
			return nil, s.mapListingError(err, "EquipmentListing", item.ListingID)
		}
		if listing.KitchenID != req.KitchenID {
			return nil, apperrors.InvalidInput("Equipment listing does not belong to the requested kitchen")
		}

		// Included equipment comes with the kitchen; it is reported back but
		// never reserved or billed.
		if listing.AvailabilityType == model.EquipmentIncluded {
			bundle.includedEquipment = append(bundle.includedEquipment, listing.Name)
			continue
		}
		bundle.rentalEquipment = append(bundle.rentalEquipment, listing)
	}

	return bundle, nil
}

func (s *bookingService) mapListingError(err error, resource, id string) error {
	if errors.Is(err, listingserrors.ErrNotFound) {
		return apperrors.ResourceNotFound(resource, id)
	}
	if errors.Is(err, listingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid listing ID format")
	}
	return apperrors.Internal("Failed to load listing", err)
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.BookingResponse, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	reservation, err := s.repo.FindReservationByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.ResourceNotFound("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	storage, err := s.repo.FindStorageByParent(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve storage reservations", err)
	}
	equipment, err := s.repo.FindEquipmentByParent(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve equipment reservations", err)
	}

	response := &model.BookingResponse{
		BookingID:           id,
		Reservation:         reservation,
		PaymentSessionToken: reservation.PaymentSessionID,
		Breakdown: model.PriceBreakdown{
			TotalCents: reservation.PriceCents,
			Currency:   s.cfg.Currency,
		},
	}
	for _, sr := range storage {
		response.StorageReservations = append(response.StorageReservations, *sr)
	}
	for _, er := range equipment {
		response.EquipmentReservations = append(response.EquipmentReservations, *er)
	}
	return response, nil
}

// Cancel cascades a cancellation through the booking's storage and equipment
// reservations and, when a refund is requested, enforces the refundable cap:
// manager net minus refunds already issued. Cancelling an already-cancelled
// booking is a no-op, not an error.
func (s *bookingService) Cancel(ctx context.Context, id string, requestedRefund model.Cents) (*model.CancellationResult, error) {
	if requestedRefund < 0 {
		return nil, apperrors.InvalidInput("Requested refund cannot be negative")
	}

	reservation, err := s.repo.FindReservationByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.ResourceNotFound("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	result := &model.CancellationResult{BookingID: id, RequestedRefundCents: requestedRefund}

	if reservation.Status == model.StatusCancelled {
		if capCents, capErr := s.refundableCap(ctx, id); capErr == nil {
			result.RefundableCapCents = capCents
		}
		return result, nil
	}

	var paymentRef string
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.CancelReservation(sessCtx, id); err != nil {
			return apperrors.Internal("Failed to cancel reservation", err)
		}

		storageCount, equipmentCount, err := s.repo.CancelChildren(sessCtx, id)
		if err != nil {
			return apperrors.Internal("Failed to cancel sub-reservations", err)
		}
		result.CancelledStorage = int(storageCount)
		result.CancelledEquipment = int(equipmentCount)

		ledger, err := s.repo.FindLedger(sessCtx, id)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrLedgerNotFound) {
				result.RefundableCapCents = 0
				if requestedRefund > 0 {
					return apperrors.RefundExceedsBalance(int64(requestedRefund), 0)
				}
				return nil
			}
			return apperrors.Internal("Failed to load booking ledger", err)
		}

		capCents := ledger.ManagerNetCents - ledger.RefundedCents
		if capCents < 0 {
			capCents = 0
		}
		result.RefundableCapCents = capCents
		paymentRef = ledger.PaymentReferenceID

		if requestedRefund > capCents {
			return apperrors.RefundExceedsBalance(int64(requestedRefund), int64(capCents))
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "booking_id", id, "error", err)
		return nil, err
	}

	if requestedRefund > 0 {
		ref, err := s.pay.Refund(ctx, paymentRef, requestedRefund)
		if err != nil {
			s.cfg.Log.Error("Refund failed after cancellation", "booking_id", id, "amount", requestedRefund, "error", err)
			return nil, err
		}
		result.RefundTransactionRef = ref
		if err := s.repo.AddRefund(ctx, id, requestedRefund); err != nil {
			s.cfg.Log.Error("Failed to record refund in ledger", "booking_id", id, "refund_ref", ref, "error", err)
			return nil, apperrors.Internal("Refund issued but not recorded", err)
		}
		result.RefundableCapCents -= requestedRefund
	}

	metrics.IncBookingCancelled()
	s.events.BookingCancelled(ctx, result)

	s.cfg.Log.Info("Booking cancelled",
		"booking_id", id,
		"cancelled_storage", result.CancelledStorage,
		"cancelled_equipment", result.CancelledEquipment,
		"refund_cents", requestedRefund,
	)
	return result, nil
}

// ConfirmPayment applies a successful payment to a pending booking: the
// reservation flips to confirmed, storage and equipment children are marked
// paid, and the processor's reference lands on the ledger so later refunds
// have something to refund against. Confirming an already-confirmed booking
// is a no-op.
func (s *bookingService) ConfirmPayment(ctx context.Context, id string, paymentRef string) (*model.Reservation, error) {
	if paymentRef == "" {
		return nil, apperrors.InvalidInput("Payment reference cannot be empty")
	}

	reservation, err := s.repo.FindReservationByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.ResourceNotFound("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	if reservation.Status == model.StatusConfirmed {
		return reservation, nil
	}
	if reservation.Status == model.StatusCancelled {
		return nil, apperrors.Conflict("Booking has been cancelled and cannot be confirmed")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.ConfirmReservation(sessCtx, id); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				// The reservation left the pending state between the read and
				// the update, most likely a concurrent cancellation.
				return apperrors.Conflict("Booking is no longer pending")
			}
			return apperrors.Internal("Failed to confirm reservation", err)
		}
		if _, _, err := s.repo.ConfirmChildren(sessCtx, id); err != nil {
			return apperrors.Internal("Failed to confirm sub-reservations", err)
		}
		if err := s.repo.SetPaymentReference(sessCtx, id, paymentRef); err != nil {
			if errors.Is(err, bookingserrors.ErrLedgerNotFound) {
				return apperrors.Internal("Booking has no ledger to record the payment against", err)
			}
			return apperrors.Internal("Failed to record payment reference", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to confirm booking payment", "booking_id", id, "error", err)
		return nil, err
	}

	reservation.Status = model.StatusConfirmed
	metrics.IncBookingConfirmed()
	s.events.BookingConfirmed(ctx, reservation)

	s.cfg.Log.Info("Booking payment confirmed", "booking_id", id, "payment_ref", paymentRef)
	return reservation, nil
}

// FailPayment cancels a pending booking whose payment fell through, freeing
// the slot for other chefs. A booking that was already cancelled is left
// alone; a confirmed booking cannot be failed.
func (s *bookingService) FailPayment(ctx context.Context, id string) error {
	reservation, err := s.repo.FindReservationByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.ResourceNotFound("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to retrieve booking", err)
	}
	if reservation.Status == model.StatusCancelled {
		return nil
	}
	if reservation.Status == model.StatusConfirmed {
		return apperrors.Conflict("Booking is already paid and cannot be failed")
	}

	result := &model.CancellationResult{BookingID: id}
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.CancelReservation(sessCtx, id); err != nil {
			return apperrors.Internal("Failed to cancel reservation", err)
		}
		storageCount, equipmentCount, err := s.repo.CancelChildren(sessCtx, id)
		if err != nil {
			return apperrors.Internal("Failed to cancel sub-reservations", err)
		}
		result.CancelledStorage = int(storageCount)
		result.CancelledEquipment = int(equipmentCount)
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to release booking after payment failure", "booking_id", id, "error", err)
		return err
	}

	metrics.IncBookingCancelled()
	s.events.BookingCancelled(ctx, result)

	s.cfg.Log.Info("Booking released after payment failure",
		"booking_id", id,
		"cancelled_storage", result.CancelledStorage,
		"cancelled_equipment", result.CancelledEquipment,
	)
	return nil
}

func (s *bookingService) refundableCap(ctx context.Context, bookingID string) (model.Cents, error) {
	ledger, err := s.repo.FindLedger(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	capCents := ledger.ManagerNetCents - ledger.RefundedCents
	if capCents < 0 {
		capCents = 0
	}
	return capCents, nil
}

// CreateBlock reserves a window on behalf of the kitchen manager: no owner,
// no price, no payment. Blocks participate in conflict detection exactly like
// chef bookings, which is how blocked time disappears from availability.
func (s *bookingService) CreateBlock(ctx context.Context, resourceID, date string, startMinute, endMinute int) (*model.Reservation, error) {
	if !model.IsValidDate(date) {
		return nil, apperrors.InvalidDateRange("date must be formatted as YYYY-MM-DD")
	}
	if startMinute < 0 || endMinute > model.MinutesPerDay || startMinute >= endMinute {
		return nil, apperrors.InvalidInput("Block window must satisfy 0 <= start < end <= 1440")
	}

	if _, err := s.listings.FindKitchenByID(ctx, resourceID); err != nil {
		return nil, s.mapListingError(err, "Kitchen", resourceID)
	}

	block := &model.Reservation{
		ResourceID:  resourceID,
		Date:        date,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		Status:      model.StatusConfirmed,
		BookingType: model.BookingTypeManagerBlocked,
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.conflicts.CheckKitchen(sessCtx, resourceID, date, startMinute, endMinute, ""); err != nil {
			return err
		}
		if err := s.repo.CreateReservation(sessCtx, block); err != nil {
			return apperrors.Internal("Failed to create block", err)
		}
		return nil
	})
	if err != nil {
		if mongotx.IsWriteConflict(err) {
			metrics.IncBookingConflict("transaction")
			return nil, apperrors.SlotUnavailable("The requested window was just taken by another booking")
		}
		s.cfg.Log.Error("Failed to create block", "kitchen_id", resourceID, "date", date, "error", err)
		return nil, err
	}

	metrics.IncBookingCreated(model.BookingTypeManagerBlocked)
	s.cfg.Log.Info("Manager block created", "block_id", block.ID, "kitchen_id", resourceID, "date", date)
	return block, nil
}

func (s *bookingService) ListByKitchen(ctx context.Context, kitchenID, fromDate string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if kitchenID == "" {
		return nil, 0, apperrors.InvalidInput("Kitchen ID cannot be empty")
	}
	if fromDate != "" && !model.IsValidDate(fromDate) {
		return nil, 0, apperrors.InvalidDateRange("from date must be formatted as YYYY-MM-DD")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountReservationsByResource(ctx, kitchenID, fromDate)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "kitchen_id", kitchenID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindReservationsByResource(ctx, kitchenID, fromDate, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "kitchen_id", kitchenID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}
