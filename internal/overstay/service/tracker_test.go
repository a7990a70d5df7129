package service

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	overstayerrors "mise/internal/overstay/errors"
	"mise/internal/payments"
	"mise/internal/pricing"
	"mise/pkg/config"
	mongotx "mise/pkg/db/mongo"
	apperrors "mise/pkg/errors"
	"mise/pkg/logger"
	"mise/pkg/model"
)

const (
	testStorageReservationID = "64c000000000000000000001"
	testStorageListingID     = "64c000000000000000000002"
	testParentBookingID      = "64c000000000000000000003"
	testExtensionID          = "64c000000000000000000004"
)

type mockExtensionRepository struct {
	createPendingFn              func(ctx context.Context, ext *model.PendingExtension) error
	findPendingByIDFn            func(ctx context.Context, id string) (*model.PendingExtension, error)
	resolvePendingFn             func(ctx context.Context, id, status string) error
	findStorageReservationByIDFn func(ctx context.Context, id string) (*model.StorageReservation, error)
	findOverdueStorageFn         func(ctx context.Context, asOf string) ([]*model.StorageReservation, error)
	markOverdueFn                func(ctx context.Context, id string, overdueDays int, penaltyCents model.Cents) error
	extendStorageReservationFn   func(ctx context.Context, id, newEndDate string, addedPriceCents model.Cents) error
	setPaymentSessionFn          func(ctx context.Context, extensionID, sessionID string) error
	executeTransactionFn         func(ctx context.Context, fn mongotx.TransactionFunc) error

	markOverdueCalls int
}

func (m *mockExtensionRepository) CreatePending(ctx context.Context, ext *model.PendingExtension) error {
	if m.createPendingFn != nil {
		return m.createPendingFn(ctx, ext)
	}
	ext.ID = testExtensionID
	return nil
}

func (m *mockExtensionRepository) FindPendingByID(ctx context.Context, id string) (*model.PendingExtension, error) {
	if m.findPendingByIDFn != nil {
		return m.findPendingByIDFn(ctx, id)
	}
	return nil, errors.New("findPendingByIDFn not set")
}

func (m *mockExtensionRepository) ResolvePending(ctx context.Context, id, status string) error {
	if m.resolvePendingFn != nil {
		return m.resolvePendingFn(ctx, id, status)
	}
	return nil
}

func (m *mockExtensionRepository) FindStorageReservationByID(ctx context.Context, id string) (*model.StorageReservation, error) {
	if m.findStorageReservationByIDFn != nil {
		return m.findStorageReservationByIDFn(ctx, id)
	}
	return nil, errors.New("findStorageReservationByIDFn not set")
}

func (m *mockExtensionRepository) FindOverdueStorage(ctx context.Context, asOf string) ([]*model.StorageReservation, error) {
	if m.findOverdueStorageFn != nil {
		return m.findOverdueStorageFn(ctx, asOf)
	}
	return nil, nil
}

func (m *mockExtensionRepository) MarkOverdue(ctx context.Context, id string, overdueDays int, penaltyCents model.Cents) error {
	m.markOverdueCalls++
	if m.markOverdueFn != nil {
		return m.markOverdueFn(ctx, id, overdueDays, penaltyCents)
	}
	return nil
}

func (m *mockExtensionRepository) ExtendStorageReservation(ctx context.Context, id, newEndDate string, addedPriceCents model.Cents) error {
	if m.extendStorageReservationFn != nil {
		return m.extendStorageReservationFn(ctx, id, newEndDate, addedPriceCents)
	}
	return nil
}

func (m *mockExtensionRepository) SetPaymentSession(ctx context.Context, extensionID, sessionID string) error {
	if m.setPaymentSessionFn != nil {
		return m.setPaymentSessionFn(ctx, extensionID, sessionID)
	}
	return nil
}

func (m *mockExtensionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFn != nil {
		return m.executeTransactionFn(ctx, fn)
	}
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockListings struct {
	findStorageByIDFn func(ctx context.Context, id string) (*model.StorageListing, error)
}

func (m *mockListings) CreateKitchen(ctx context.Context, listing *model.KitchenListing) error {
	return errors.New("not implemented")
}

func (m *mockListings) FindKitchenByID(ctx context.Context, id string) (*model.KitchenListing, error) {
	return nil, errors.New("not implemented")
}

func (m *mockListings) FindKitchens(ctx context.Context, city string, limit int, offset int64) ([]*model.KitchenListing, error) {
	return nil, errors.New("not implemented")
}

func (m *mockListings) CountKitchens(ctx context.Context, city string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (m *mockListings) CreateStorage(ctx context.Context, listing *model.StorageListing) error {
	return errors.New("not implemented")
}

func (m *mockListings) FindStorageByID(ctx context.Context, id string) (*model.StorageListing, error) {
	if m.findStorageByIDFn != nil {
		return m.findStorageByIDFn(ctx, id)
	}
	return &model.StorageListing{
		ID:              testStorageListingID,
		KitchenID:       "64c000000000000000000009",
		Name:            "Dry Pantry Shelf",
		StorageType:     "dry",
		PeriodRateCents: 2000,
		PeriodDays:      7,
		DailyRateCents:  300,
	}, nil
}

func (m *mockListings) FindStorageByKitchen(ctx context.Context, kitchenID string) ([]*model.StorageListing, error) {
	return nil, errors.New("not implemented")
}

func (m *mockListings) CreateEquipment(ctx context.Context, listing *model.EquipmentListing) error {
	return errors.New("not implemented")
}

func (m *mockListings) FindEquipmentByID(ctx context.Context, id string) (*model.EquipmentListing, error) {
	return nil, errors.New("not implemented")
}

func (m *mockListings) FindEquipmentByKitchen(ctx context.Context, kitchenID string) ([]*model.EquipmentListing, error) {
	return nil, errors.New("not implemented")
}

type mockConflicts struct {
	checkStorageFn func(ctx context.Context, storageID, startDate, endDate, excludeID string) error
}

func (m *mockConflicts) CheckStorage(ctx context.Context, storageID, startDate, endDate, excludeID string) error {
	if m.checkStorageFn != nil {
		return m.checkStorageFn(ctx, storageID, startDate, endDate, excludeID)
	}
	return nil
}

type mockCollaborator struct {
	createSessionFn func(ctx context.Context, amount model.Cents, currency, bookingID string) (*payments.Session, error)
}

func (m *mockCollaborator) CreateSession(ctx context.Context, amount model.Cents, currency, bookingID string) (*payments.Session, error) {
	if m.createSessionFn != nil {
		return m.createSessionFn(ctx, amount, currency, bookingID)
	}
	return &payments.Session{ID: "sess_ext_123"}, nil
}

func (m *mockCollaborator) Refund(ctx context.Context, paymentRef string, amount model.Cents) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockCollaborator) ChargePenalty(ctx context.Context, amount model.Cents, currency, storageReservationID string) (string, error) {
	return "", errors.New("not implemented")
}

type mockPublisher struct {
	overstays int
	requested int
	resolved  int
}

func (m *mockPublisher) BookingCreated(ctx context.Context, resp *model.BookingResponse)        {}
func (m *mockPublisher) BookingConfirmed(ctx context.Context, r *model.Reservation)             {}
func (m *mockPublisher) BookingCancelled(ctx context.Context, result *model.CancellationResult) {}

func (m *mockPublisher) OverstayDetected(ctx context.Context, record model.OverstayRecord) {
	m.overstays++
}

func (m *mockPublisher) ExtensionRequested(ctx context.Context, ext *model.PendingExtension) {
	m.requested++
}

func (m *mockPublisher) ExtensionResolved(ctx context.Context, ext *model.PendingExtension) {
	m.resolved++
}

type overstayFixture struct {
	repo     *mockExtensionRepository
	listings *mockListings
	pay      *mockCollaborator
	events   *mockPublisher
	service  *overstayService
}

func newOverstayFixture() *overstayFixture {
	log := logger.New(logger.Config{Output: io.Discard})
	cfg := &config.Config{
		Currency:             "usd",
		OverstayMultiplierBP: 15000,
		Log:                  log,
	}

	repo := &mockExtensionRepository{}
	listings := &mockListings{}
	pay := &mockCollaborator{}
	events := &mockPublisher{}

	svc := &overstayService{
		repo:       repo,
		listings:   listings,
		conflicts:  &mockConflicts{},
		calculator: pricing.NewCalculator(1000, 1500, 290, 30, "usd"),
		pay:        pay,
		events:     events,
		cfg:        cfg,
	}

	return &overstayFixture{
		repo:     repo,
		listings: listings,
		pay:      pay,
		events:   events,
		service:  svc,
	}
}

func overdueReservation() *model.StorageReservation {
	return &model.StorageReservation{
		ID:              testStorageReservationID,
		StorageID:       testStorageListingID,
		ParentBookingID: testParentBookingID,
		StartDate:       "2025-06-01",
		EndDate:         "2025-06-10",
		Status:          model.StatusConfirmed,
		PaymentStatus:   model.PaymentPaid,
		PriceCents:      4000,
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("computes overdue days and penalty", func(t *testing.T) {
		f := newOverstayFixture()
		f.repo.findOverdueStorageFn = func(ctx context.Context, asOf string) ([]*model.StorageReservation, error) {
			return []*model.StorageReservation{overdueReservation()}, nil
		}

		var markedDays int
		var markedPenalty model.Cents
		f.repo.markOverdueFn = func(ctx context.Context, id string, overdueDays int, penaltyCents model.Cents) error {
			markedDays = overdueDays
			markedPenalty = penaltyCents
			return nil
		}

		records, err := f.service.Sweep(ctx, "2025-06-13")
		if err != nil {
			t.Fatalf("expected sweep to succeed, got %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 overstay record, got %d", len(records))
		}

		// 3 days overdue at 300/day with a 1.5x multiplier.
		if records[0].OverdueDays != 3 || records[0].PenaltyCents != 1350 {
			t.Errorf("expected 3 days / 1350 penalty, got %d days / %d", records[0].OverdueDays, records[0].PenaltyCents)
		}
		if markedDays != 3 || markedPenalty != 1350 {
			t.Errorf("expected reservation marked with 3 days / 1350, got %d / %d", markedDays, markedPenalty)
		}
		if f.events.overstays != 1 {
			t.Errorf("expected 1 overstay event, got %d", f.events.overstays)
		}
	})

	t.Run("second run over recorded data is a no-op", func(t *testing.T) {
		f := newOverstayFixture()

		recorded := overdueReservation()
		recorded.OverdueDays = 3
		recorded.PenaltyCents = 1350
		f.repo.findOverdueStorageFn = func(ctx context.Context, asOf string) ([]*model.StorageReservation, error) {
			return []*model.StorageReservation{recorded}, nil
		}

		first, err := f.service.Sweep(ctx, "2025-06-13")
		if err != nil {
			t.Fatalf("expected sweep to succeed, got %v", err)
		}
		second, err := f.service.Sweep(ctx, "2025-06-13")
		if err != nil {
			t.Fatalf("expected repeat sweep to succeed, got %v", err)
		}

		if !reflect.DeepEqual(first, second) {
			t.Errorf("expected identical records on repeat sweep:\nfirst:  %+v\nsecond: %+v", first, second)
		}
		if f.repo.markOverdueCalls != 0 {
			t.Errorf("expected no writes for already-recorded overstays, got %d", f.repo.markOverdueCalls)
		}
		if f.events.overstays != 0 {
			t.Errorf("expected no repeat overstay events, got %d", f.events.overstays)
		}
	})

	t.Run("invalid as_of date", func(t *testing.T) {
		f := newOverstayFixture()
		_, err := f.service.Sweep(ctx, "13/06/2025")
		if !apperrors.IsCode(err, apperrors.CodeInvalidDateRange) {
			t.Fatalf("expected InvalidDateRange, got %v", err)
		}
	})

	t.Run("store error fails the sweep", func(t *testing.T) {
		f := newOverstayFixture()
		f.repo.findOverdueStorageFn = func(ctx context.Context, asOf string) ([]*model.StorageReservation, error) {
			return nil, errors.New("connection reset")
		}

		_, err := f.service.Sweep(ctx, "2025-06-13")
		if !apperrors.IsCode(err, apperrors.CodeInternal) {
			t.Fatalf("expected Internal, got %v", err)
		}
	})
}

func TestRequestExtension(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending extension with computed price", func(t *testing.T) {
		f := newOverstayFixture()
		f.repo.findStorageReservationByIDFn = func(ctx context.Context, id string) (*model.StorageReservation, error) {
			return overdueReservation(), nil
		}

		ext, err := f.service.RequestExtension(ctx, testStorageReservationID, "2025-06-15")
		if err != nil {
			t.Fatalf("expected extension request to succeed, got %v", err)
		}

		if ext.ExtensionDays != 5 {
			t.Errorf("expected 5 extension days, got %d", ext.ExtensionDays)
		}
		// 5 days at 300/day plus 10% service fee.
		if ext.PriceCents != 1650 {
			t.Errorf("expected price 1650, got %d", ext.PriceCents)
		}
		if ext.PaymentSessionID != "sess_ext_123" {
			t.Errorf("expected payment session recorded, got %q", ext.PaymentSessionID)
		}
		if f.events.requested != 1 {
			t.Errorf("expected 1 extension.requested event, got %d", f.events.requested)
		}
	})

	t.Run("duplicate pending extension", func(t *testing.T) {
		f := newOverstayFixture()
		f.repo.findStorageReservationByIDFn = func(ctx context.Context, id string) (*model.StorageReservation, error) {
			return overdueReservation(), nil
		}
		f.repo.createPendingFn = func(ctx context.Context, ext *model.PendingExtension) error {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}

		_, err := f.service.RequestExtension(ctx, testStorageReservationID, "2025-06-15")
		if !apperrors.IsCode(err, apperrors.CodeExtensionAlreadyPending) {
			t.Fatalf("expected ExtensionAlreadyPending, got %v", err)
		}
	})

	t.Run("extended window conflicts", func(t *testing.T) {
		f := newOverstayFixture()
		f.repo.findStorageReservationByIDFn = func(ctx context.Context, id string) (*model.StorageReservation, error) {
			return overdueReservation(), nil
		}
		f.service.conflicts = &mockConflicts{
			checkStorageFn: func(ctx context.Context, storageID, startDate, endDate, excludeID string) error {
				return apperrors.SlotUnavailable("Storage unit is already reserved from 2025-06-12 to 2025-06-20")
			},
		}

		_, err := f.service.RequestExtension(ctx, testStorageReservationID, "2025-06-15")
		if !apperrors.IsCode(err, apperrors.CodeSlotUnavailable) {
			t.Fatalf("expected SlotUnavailable, got %v", err)
		}
	})

	t.Run("new end date not after current", func(t *testing.T) {
		f := newOverstayFixture()
		f.repo.findStorageReservationByIDFn = func(ctx context.Context, id string) (*model.StorageReservation, error) {
			return overdueReservation(), nil
		}

		_, err := f.service.RequestExtension(ctx, testStorageReservationID, "2025-06-10")
		if !apperrors.IsCode(err, apperrors.CodeInvalidDateRange) {
			t.Fatalf("expected InvalidDateRange, got %v", err)
		}
	})

	t.Run("cancelled reservation cannot extend", func(t *testing.T) {
		f := newOverstayFixture()
		f.repo.findStorageReservationByIDFn = func(ctx context.Context, id string) (*model.StorageReservation, error) {
			r := overdueReservation()
			r.Status = model.StatusCancelled
			return r, nil
		}

		_, err := f.service.RequestExtension(ctx, testStorageReservationID, "2025-06-15")
		if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			t.Fatalf("expected InvalidInput, got %v", err)
		}
	})

	t.Run("unknown reservation", func(t *testing.T) {
		f := newOverstayFixture()
		f.repo.findStorageReservationByIDFn = func(ctx context.Context, id string) (*model.StorageReservation, error) {
			return nil, overstayerrors.ErrNotFound
		}

		_, err := f.service.RequestExtension(ctx, testStorageReservationID, "2025-06-15")
		if !apperrors.IsCode(err, apperrors.CodeResourceNotFound) {
			t.Fatalf("expected ResourceNotFound, got %v", err)
		}
	})
}

func pendingExtension() *model.PendingExtension {
	return &model.PendingExtension{
		ID:                   testExtensionID,
		StorageReservationID: testStorageReservationID,
		NewEndDate:           "2025-06-15",
		ExtensionDays:        5,
		PriceCents:           1650,
		Status:               model.ExtensionPending,
	}
}

func TestConfirmExtension(t *testing.T) {
	ctx := context.Background()

	t.Run("extends reservation atomically", func(t *testing.T) {
		f := newOverstayFixture()
		f.repo.findPendingByIDFn = func(ctx context.Context, id string) (*model.PendingExtension, error) {
			return pendingExtension(), nil
		}

		var resolvedStatus string
		f.repo.resolvePendingFn = func(ctx context.Context, id, status string) error {
			resolvedStatus = status
			return nil
		}

		var extendedEnd string
		var addedPrice model.Cents
		f.repo.extendStorageReservationFn = func(ctx context.Context, id, newEndDate string, addedPriceCents model.Cents) error {
			extendedEnd = newEndDate
			addedPrice = addedPriceCents
			return nil
		}

		ext, err := f.service.ConfirmExtension(ctx, testExtensionID)
		if err != nil {
			t.Fatalf("expected confirmation to succeed, got %v", err)
		}
		if ext.Status != model.ExtensionCompleted {
			t.Errorf("expected completed status, got %q", ext.Status)
		}
		if resolvedStatus != model.ExtensionCompleted {
			t.Errorf("expected extension resolved as completed, got %q", resolvedStatus)
		}
		if extendedEnd != "2025-06-15" || addedPrice != 1650 {
			t.Errorf("expected reservation extended to 2025-06-15 with 1650 added, got %s / %d", extendedEnd, addedPrice)
		}
		if f.events.resolved != 1 {
			t.Errorf("expected 1 extension.resolved event, got %d", f.events.resolved)
		}
	})

	t.Run("already resolved", func(t *testing.T) {
		f := newOverstayFixture()
		f.repo.findPendingByIDFn = func(ctx context.Context, id string) (*model.PendingExtension, error) {
			ext := pendingExtension()
			ext.Status = model.ExtensionCompleted
			return ext, nil
		}

		_, err := f.service.ConfirmExtension(ctx, testExtensionID)
		if !apperrors.IsCode(err, apperrors.CodeConflict) {
			t.Fatalf("expected Conflict, got %v", err)
		}
	})
}

func TestFailExtension(t *testing.T) {
	f := newOverstayFixture()
	f.repo.findPendingByIDFn = func(ctx context.Context, id string) (*model.PendingExtension, error) {
		return pendingExtension(), nil
	}

	var resolvedStatus string
	f.repo.resolvePendingFn = func(ctx context.Context, id, status string) error {
		resolvedStatus = status
		return nil
	}

	ext, err := f.service.FailExtension(context.Background(), testExtensionID)
	if err != nil {
		t.Fatalf("expected fail to succeed, got %v", err)
	}
	if ext.Status != model.ExtensionFailed || resolvedStatus != model.ExtensionFailed {
		t.Errorf("expected failed status, got ext %q / resolved %q", ext.Status, resolvedStatus)
	}
	if f.events.resolved != 1 {
		t.Errorf("expected 1 extension.resolved event, got %d", f.events.resolved)
	}
}
