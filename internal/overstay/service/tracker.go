package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	listingserrors "mise/internal/listings/errors"
	listingsrepo "mise/internal/listings/repository"
	"mise/internal/notify"
	overstayerrors "mise/internal/overstay/errors"
	"mise/internal/overstay/repository"
	"mise/internal/payments"
	"mise/internal/pricing"
	"mise/pkg/config"
	mongotx "mise/pkg/db/mongo"
	apperrors "mise/pkg/errors"
	"mise/pkg/metrics"
	"mise/pkg/model"
)

// StorageConflictChecker is the slice of the conflict detector the extension
// flow needs: is the date range free on this storage unit.
type StorageConflictChecker interface {
	CheckStorage(ctx context.Context, storageID, startDate, endDate, excludeID string) error
}

type OverstayService interface {
	// Sweep finds storage reservations past their end date as of the given
	// date and records overdue days and penalties. It is idempotent;
	// re-running it against the same data produces the same records.
	Sweep(ctx context.Context, asOf string) ([]model.OverstayRecord, error)

	RequestExtension(ctx context.Context, storageReservationID, newEndDate string) (*model.PendingExtension, error)
	ConfirmExtension(ctx context.Context, extensionID string) (*model.PendingExtension, error)
	FailExtension(ctx context.Context, extensionID string) (*model.PendingExtension, error)
}

type overstayService struct {
	repo       repository.ExtensionRepository
	listings   listingsrepo.ListingRepository
	conflicts  StorageConflictChecker
	calculator *pricing.Calculator
	pay        payments.Collaborator
	events     notify.Publisher
	cfg        *config.Config
}

func NewOverstayService(
	repo repository.ExtensionRepository,
	listings listingsrepo.ListingRepository,
	conflicts StorageConflictChecker,
	calculator *pricing.Calculator,
	pay payments.Collaborator,
	events notify.Publisher,
	cfg *config.Config,
) OverstayService {
	return &overstayService{
		repo:       repo,
		listings:   listings,
		conflicts:  conflicts,
		calculator: calculator,
		pay:        pay,
		events:     events,
		cfg:        cfg,
	}
}

func (s *overstayService) Sweep(ctx context.Context, asOf string) ([]model.OverstayRecord, error) {
	if !model.IsValidDate(asOf) {
		return nil, apperrors.InvalidDateRange("as_of must be formatted as YYYY-MM-DD")
	}

	overdue, err := s.repo.FindOverdueStorage(ctx, asOf)
	if err != nil {
		return nil, apperrors.Internal("Failed to find overdue storage reservations", err)
	}

	records := make([]model.OverstayRecord, 0, len(overdue))
	for _, res := range overdue {
		listing, err := s.listings.FindStorageByID(ctx, res.StorageID)
		if err != nil {
			return nil, apperrors.Internal("Failed to load storage listing during sweep", err)
		}

		days, err := model.DaysBetween(res.EndDate, asOf)
		if err != nil || days <= 0 {
			continue
		}
		penalty := pricing.OverstayPenalty(listing.DailyRateCents, days, s.cfg.OverstayMultiplierBP)

		record := model.OverstayRecord{
			StorageReservationID: res.ID,
			ParentBookingID:      res.ParentBookingID,
			EndDate:              res.EndDate,
			OverdueDays:          days,
			PenaltyCents:         penalty,
		}
		records = append(records, record)

		// Already-recorded rows are left alone so a second run is a no-op.
		if res.OverdueDays == days && res.PenaltyCents == penalty {
			continue
		}
		if err := s.repo.MarkOverdue(ctx, res.ID, days, penalty); err != nil {
			return nil, apperrors.Internal("Failed to record overstay", err)
		}
		s.events.OverstayDetected(ctx, record)
	}

	metrics.IncOverstaySweep()
	s.cfg.Log.Info("Overstay sweep completed", "as_of", asOf, "overdue_count", len(records))
	return records, nil
}

// RequestExtension opens a pending extension for a storage reservation. The
// extended window is conflict-checked and the pending row inserted in one
// transaction; the partial unique index turns a concurrent second request
// into ExtensionAlreadyPending.
func (s *overstayService) RequestExtension(ctx context.Context, storageReservationID, newEndDate string) (*model.PendingExtension, error) {
	if !model.IsValidDate(newEndDate) {
		return nil, apperrors.InvalidDateRange("new_end_date must be formatted as YYYY-MM-DD")
	}

	reservation, err := s.repo.FindStorageReservationByID(ctx, storageReservationID)
	if err != nil {
		return nil, s.mapRepoError(err, "StorageReservation", storageReservationID)
	}
	if reservation.Status == model.StatusCancelled {
		return nil, apperrors.InvalidInput("Cannot extend a cancelled storage reservation")
	}
	if newEndDate <= reservation.EndDate {
		return nil, apperrors.InvalidDateRange("new_end_date must be after the current end date")
	}

	days, err := model.DaysBetween(reservation.EndDate, newEndDate)
	if err != nil {
		return nil, apperrors.InvalidDateRange("new_end_date must be a valid date after the current end date")
	}

	listing, err := s.listings.FindStorageByID(ctx, reservation.StorageID)
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return nil, apperrors.ResourceNotFound("StorageListing", reservation.StorageID)
		}
		return nil, apperrors.Internal("Failed to load storage listing", err)
	}

	ext := &model.PendingExtension{
		StorageReservationID: storageReservationID,
		NewEndDate:           newEndDate,
		ExtensionDays:        days,
		PriceCents:           s.calculator.ExtensionCharge(listing, days),
		Status:               model.ExtensionPending,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.conflicts.CheckStorage(sessCtx, reservation.StorageID, reservation.EndDate, newEndDate, reservation.ID); err != nil {
			return err
		}
		return s.repo.CreatePending(sessCtx, ext)
	})
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			metrics.IncExtensionRequested("duplicate")
			return nil, apperrors.ExtensionAlreadyPending(storageReservationID)
		}
		if apperrors.IsCode(err, apperrors.CodeSlotUnavailable) {
			metrics.IncExtensionRequested("conflict")
			return nil, err
		}
		s.cfg.Log.Error("Failed to create pending extension", "storage_reservation_id", storageReservationID, "error", err)
		return nil, apperrors.Internal("Failed to create pending extension", err)
	}

	metrics.IncExtensionRequested("accepted")

	session, err := s.pay.CreateSession(ctx, ext.PriceCents, s.cfg.Currency, ext.ID)
	if err != nil {
		// The pending extension stands; the client can re-request payment.
		s.cfg.Log.Error("Payment session creation failed for extension", "extension_id", ext.ID, "error", err)
	} else {
		ext.PaymentSessionID = session.ID
		if err := s.repo.SetPaymentSession(ctx, ext.ID, session.ID); err != nil {
			s.cfg.Log.Error("Failed to record extension payment session", "extension_id", ext.ID, "error", err)
		}
	}

	s.events.ExtensionRequested(ctx, ext)
	s.cfg.Log.Info("Extension requested",
		"extension_id", ext.ID,
		"storage_reservation_id", storageReservationID,
		"new_end_date", newEndDate,
		"price_cents", ext.PriceCents,
	)
	return ext, nil
}

// ConfirmExtension applies a paid extension: the reservation's end date moves
// out and the extension completes, atomically.
func (s *overstayService) ConfirmExtension(ctx context.Context, extensionID string) (*model.PendingExtension, error) {
	ext, err := s.repo.FindPendingByID(ctx, extensionID)
	if err != nil {
		return nil, s.mapRepoError(err, "PendingExtension", extensionID)
	}
	if ext.Status != model.ExtensionPending {
		return nil, apperrors.Conflict("Extension has already been resolved")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.ResolvePending(sessCtx, extensionID, model.ExtensionCompleted); err != nil {
			return err
		}
		return s.repo.ExtendStorageReservation(sessCtx, ext.StorageReservationID, ext.NewEndDate, ext.PriceCents)
	})
	if err != nil {
		if errors.Is(err, overstayerrors.ErrNotFound) {
			return nil, apperrors.Conflict("Extension has already been resolved")
		}
		s.cfg.Log.Error("Failed to confirm extension", "extension_id", extensionID, "error", err)
		return nil, apperrors.Internal("Failed to confirm extension", err)
	}

	ext.Status = model.ExtensionCompleted
	s.events.ExtensionResolved(ctx, ext)
	s.cfg.Log.Info("Extension confirmed", "extension_id", extensionID, "new_end_date", ext.NewEndDate)
	return ext, nil
}

// FailExtension marks a pending extension as failed, which frees the
// reservation for a fresh extension request.
func (s *overstayService) FailExtension(ctx context.Context, extensionID string) (*model.PendingExtension, error) {
	ext, err := s.repo.FindPendingByID(ctx, extensionID)
	if err != nil {
		return nil, s.mapRepoError(err, "PendingExtension", extensionID)
	}
	if ext.Status != model.ExtensionPending {
		return nil, apperrors.Conflict("Extension has already been resolved")
	}

	if err := s.repo.ResolvePending(ctx, extensionID, model.ExtensionFailed); err != nil {
		if errors.Is(err, overstayerrors.ErrNotFound) {
			return nil, apperrors.Conflict("Extension has already been resolved")
		}
		s.cfg.Log.Error("Failed to fail extension", "extension_id", extensionID, "error", err)
		return nil, apperrors.Internal("Failed to mark extension as failed", err)
	}

	ext.Status = model.ExtensionFailed
	s.events.ExtensionResolved(ctx, ext)
	s.cfg.Log.Info("Extension marked failed", "extension_id", extensionID)
	return ext, nil
}

func (s *overstayService) mapRepoError(err error, resource, id string) error {
	if errors.Is(err, overstayerrors.ErrNotFound) {
		return apperrors.ResourceNotFound(resource, id)
	}
	if errors.Is(err, overstayerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid ID format")
	}
	return apperrors.Internal("Failed to load "+resource, err)
}
