package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingserrors "mise/internal/bookings/errors"
	"mise/pkg/config"
	mongotx "mise/pkg/db/mongo"
	"mise/pkg/model"
)

const (
	ReservationCollectionName = "Reservations"
	StorageCollectionName     = "StorageReservations"
	EquipmentCollectionName   = "EquipmentReservations"
	LedgerCollectionName      = "BookingLedgers"
)

type mongoReservationRepository struct {
	cfg          *config.Config
	db           *mongo.Database
	reservations *mongo.Collection
	storage      *mongo.Collection
	equipment    *mongo.Collection
	ledgers      *mongo.Collection
	txManager    mongotx.TransactionManager
}

type ReservationRepository interface {
	CreateReservation(ctx context.Context, r *model.Reservation) error
	CreateStorageReservation(ctx context.Context, r *model.StorageReservation) error
	CreateEquipmentReservation(ctx context.Context, r *model.EquipmentReservation) error
	CreateLedger(ctx context.Context, ledger *model.BookingLedger) error

	FindReservationByID(ctx context.Context, id string) (*model.Reservation, error)
	FindActiveByResourceDate(ctx context.Context, resourceID, date string) ([]*model.Reservation, error)
	FindOverlappingReservations(ctx context.Context, resourceID, date string, startMinute, endMinute int, excludeID string) ([]*model.Reservation, error)
	FindOverlappingStorage(ctx context.Context, storageID, startDate, endDate string, excludeID string) ([]*model.StorageReservation, error)
	FindOverlappingEquipment(ctx context.Context, equipmentID, startDate, endDate string, excludeID string) ([]*model.EquipmentReservation, error)
	FindStorageByParent(ctx context.Context, bookingID string) ([]*model.StorageReservation, error)
	FindEquipmentByParent(ctx context.Context, bookingID string) ([]*model.EquipmentReservation, error)
	FindReservationsByResource(ctx context.Context, resourceID, fromDate string, limit int, offset int64) ([]*model.Reservation, error)
	CountReservationsByResource(ctx context.Context, resourceID, fromDate string) (int64, error)

	SetPaymentSession(ctx context.Context, id, sessionID string) error
	ConfirmReservation(ctx context.Context, id string) error
	ConfirmChildren(ctx context.Context, bookingID string) (storageConfirmed, equipmentConfirmed int64, err error)
	CancelReservation(ctx context.Context, id string) error
	CancelChildren(ctx context.Context, bookingID string) (storageCancelled, equipmentCancelled int64, err error)

	FindLedger(ctx context.Context, bookingID string) (*model.BookingLedger, error)
	SetPaymentReference(ctx context.Context, bookingID, paymentRef string) error
	AddRefund(ctx context.Context, bookingID string, amount model.Cents) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:          cfg,
		db:           db,
		reservations: db.Collection(ReservationCollectionName),
		storage:      db.Collection(StorageCollectionName),
		equipment:    db.Collection(EquipmentCollectionName),
		ledgers:      db.Collection(LedgerCollectionName),
		txManager:    mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a
// transaction. SessionContexts pass through unchanged.
func (r *mongoReservationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReservationRepository) CreateReservation(ctx context.Context, res *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.reservations.InsertOne(ctx, res)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		res.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) CreateStorageReservation(ctx context.Context, res *model.StorageReservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.storage.InsertOne(ctx, res)
	if err != nil {
		return fmt.Errorf("failed to create storage reservation: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		res.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) CreateEquipmentReservation(ctx context.Context, res *model.EquipmentReservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.equipment.InsertOne(ctx, res)
	if err != nil {
		return fmt.Errorf("failed to create equipment reservation: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		res.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) CreateLedger(ctx context.Context, ledger *model.BookingLedger) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ledger.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.ledgers.InsertOne(ctx, ledger); err != nil {
		return fmt.Errorf("failed to create booking ledger: %w", err)
	}
	return nil
}

func (r *mongoReservationRepository) FindReservationByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var res model.Reservation
	err = r.reservations.FindOne(ctx, bson.M{"_id": objectID}).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return &res, nil
}

func (r *mongoReservationRepository) FindActiveByResourceDate(ctx context.Context, resourceID, date string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"resource_id": resourceID,
		"date":        date,
		"status":      bson.M{"$ne": model.StatusCancelled},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_minute", Value: 1}})

	cursor, err := r.reservations.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

// FindOverlappingReservations applies the half-open overlap rule in the query
// itself: a reservation conflicts iff start_minute < endMinute and
// end_minute > startMinute. Touching reservations never match.
func (r *mongoReservationRepository) FindOverlappingReservations(ctx context.Context, resourceID, date string, startMinute, endMinute int, excludeID string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"resource_id":  resourceID,
		"date":         date,
		"status":       bson.M{"$ne": model.StatusCancelled},
		"start_minute": bson.M{"$lt": endMinute},
		"end_minute":   bson.M{"$gt": startMinute},
	}
	if excludeID != "" {
		if objectID, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": objectID}
		}
	}

	cursor, err := r.reservations.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping reservations: %w", err)
	}
	return reservations, nil
}

// FindOverlappingStorage uses the same half-open rule on date strings; the
// canonical YYYY-MM-DD form makes lexicographic comparison equal to calendar
// comparison.
func (r *mongoReservationRepository) FindOverlappingStorage(ctx context.Context, storageID, startDate, endDate string, excludeID string) ([]*model.StorageReservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"storage_id": storageID,
		"status":     bson.M{"$ne": model.StatusCancelled},
		"start_date": bson.M{"$lt": endDate},
		"end_date":   bson.M{"$gt": startDate},
	}
	if excludeID != "" {
		if objectID, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": objectID}
		}
	}

	cursor, err := r.storage.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping storage reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.StorageReservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping storage reservations: %w", err)
	}
	return reservations, nil
}

// FindOverlappingEquipment applies the half-open date rule to equipment
// reservations, one physical unit per equipment listing.
func (r *mongoReservationRepository) FindOverlappingEquipment(ctx context.Context, equipmentID, startDate, endDate string, excludeID string) ([]*model.EquipmentReservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"equipment_id": equipmentID,
		"status":       bson.M{"$ne": model.StatusCancelled},
		"start_date":   bson.M{"$lt": endDate},
		"end_date":     bson.M{"$gt": startDate},
	}
	if excludeID != "" {
		if objectID, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": objectID}
		}
	}

	cursor, err := r.equipment.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping equipment reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.EquipmentReservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping equipment reservations: %w", err)
	}
	return reservations, nil
}

func (r *mongoReservationRepository) FindStorageByParent(ctx context.Context, bookingID string) ([]*model.StorageReservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.storage.Find(ctx, bson.M{"parent_booking_id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("failed to find storage reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.StorageReservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode storage reservations: %w", err)
	}
	return reservations, nil
}

func (r *mongoReservationRepository) FindEquipmentByParent(ctx context.Context, bookingID string) ([]*model.EquipmentReservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.equipment.Find(ctx, bson.M{"parent_booking_id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("failed to find equipment reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.EquipmentReservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode equipment reservations: %w", err)
	}
	return reservations, nil
}

func (r *mongoReservationRepository) FindReservationsByResource(ctx context.Context, resourceID, fromDate string, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := r.buildResourceFilter(resourceID, fromDate)
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_minute", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.reservations.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

func (r *mongoReservationRepository) CountReservationsByResource(ctx context.Context, resourceID, fromDate string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.reservations.CountDocuments(ctx, r.buildResourceFilter(resourceID, fromDate))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) buildResourceFilter(resourceID, fromDate string) bson.M {
	filter := bson.M{"resource_id": resourceID}
	if fromDate != "" {
		filter["date"] = bson.M{"$gte": fromDate}
	}
	return filter
}

func (r *mongoReservationRepository) SetPaymentSession(ctx context.Context, id, sessionID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.reservations.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"payment_session_id": sessionID}},
	)
	if err != nil {
		return fmt.Errorf("failed to set payment session: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

// ConfirmReservation flips a pending reservation to confirmed. Reservations
// in any other state do not match; the caller decides what a miss means.
func (r *mongoReservationRepository) ConfirmReservation(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.reservations.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": model.StatusPending},
		bson.M{"$set": bson.M{"status": model.StatusConfirmed}},
	)
	if err != nil {
		return fmt.Errorf("failed to confirm reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

// ConfirmChildren marks every non-cancelled storage and equipment reservation
// under a parent booking confirmed and paid.
func (r *mongoReservationRepository) ConfirmChildren(ctx context.Context, bookingID string) (int64, int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"parent_booking_id": bookingID,
		"status":            bson.M{"$ne": model.StatusCancelled},
	}
	update := bson.M{"$set": bson.M{
		"status":         model.StatusConfirmed,
		"payment_status": model.PaymentPaid,
	}}

	storageResult, err := r.storage.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to confirm storage reservations: %w", err)
	}

	equipmentResult, err := r.equipment.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to confirm equipment reservations: %w", err)
	}

	return storageResult.ModifiedCount, equipmentResult.ModifiedCount, nil
}

func (r *mongoReservationRepository) CancelReservation(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.reservations.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": model.StatusCancelled}},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

// CancelChildren cancels every non-cancelled storage and equipment
// reservation under a parent booking and reports how many rows changed.
func (r *mongoReservationRepository) CancelChildren(ctx context.Context, bookingID string) (int64, int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"parent_booking_id": bookingID,
		"status":            bson.M{"$ne": model.StatusCancelled},
	}
	update := bson.M{"$set": bson.M{"status": model.StatusCancelled}}

	storageResult, err := r.storage.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to cancel storage reservations: %w", err)
	}

	equipmentResult, err := r.equipment.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to cancel equipment reservations: %w", err)
	}

	return storageResult.ModifiedCount, equipmentResult.ModifiedCount, nil
}

func (r *mongoReservationRepository) FindLedger(ctx context.Context, bookingID string) (*model.BookingLedger, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var ledger model.BookingLedger
	err := r.ledgers.FindOne(ctx, bson.M{"_id": bookingID}).Decode(&ledger)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to find booking ledger: %w", err)
	}
	return &ledger, nil
}

// SetPaymentReference records the processor's capture reference on the
// ledger. Refunds are issued against this reference.
func (r *mongoReservationRepository) SetPaymentReference(ctx context.Context, bookingID, paymentRef string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.ledgers.UpdateOne(ctx,
		bson.M{"_id": bookingID},
		bson.M{"$set": bson.M{
			"payment_reference_id": paymentRef,
			"updated_at":           time.Now().UTC().Truncate(time.Millisecond),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set payment reference: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrLedgerNotFound
	}
	return nil
}

func (r *mongoReservationRepository) AddRefund(ctx context.Context, bookingID string, amount model.Cents) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.ledgers.UpdateOne(ctx,
		bson.M{"_id": bookingID},
		bson.M{
			"$inc": bson.M{"refunded_cents": int64(amount)},
			"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to record refund: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrLedgerNotFound
	}
	return nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
