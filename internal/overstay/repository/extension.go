package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	overstayerrors "mise/internal/overstay/errors"
	"mise/pkg/config"
	mongotx "mise/pkg/db/mongo"
	"mise/pkg/model"
)

const (
	ExtensionCollectionName = "PendingExtensions"
	StorageCollectionName   = "StorageReservations"
)

type ExtensionRepository interface {
	// CreatePending inserts a new pending extension. A partial unique index
	// on (storage_reservation_id, status=pending) makes a second concurrent
	// insert fail with a duplicate-key error.
	CreatePending(ctx context.Context, ext *model.PendingExtension) error
	FindPendingByID(ctx context.Context, id string) (*model.PendingExtension, error)
	// ResolvePending transitions a pending extension to completed or failed.
	// It matches only rows still in the pending state, so a resolved
	// extension cannot be resolved again.
	ResolvePending(ctx context.Context, id, status string) error

	FindStorageReservationByID(ctx context.Context, id string) (*model.StorageReservation, error)
	// FindOverdueStorage returns active storage reservations whose end date
	// has passed as of the given date.
	FindOverdueStorage(ctx context.Context, asOf string) ([]*model.StorageReservation, error)
	MarkOverdue(ctx context.Context, id string, overdueDays int, penaltyCents model.Cents) error
	// ExtendStorageReservation pushes the end date out, adds the extension
	// price, and clears any recorded overstay state.
	ExtendStorageReservation(ctx context.Context, id, newEndDate string, addedPriceCents model.Cents) error

	SetPaymentSession(ctx context.Context, extensionID, sessionID string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoExtensionRepository struct {
	cfg        *config.Config
	extensions *mongo.Collection
	storage    *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoExtensionRepository(cfg *config.Config) ExtensionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoExtensionRepository{
		cfg:        cfg,
		extensions: db.Collection(ExtensionCollectionName),
		storage:    db.Collection(StorageCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a
// transaction. SessionContexts pass through unchanged.
func (r *mongoExtensionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoExtensionRepository) CreatePending(ctx context.Context, ext *model.PendingExtension) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ext.Status = model.ExtensionPending
	ext.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.extensions.InsertOne(ctx, ext)
	if err != nil {
		return fmt.Errorf("failed to create pending extension: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		ext.ID = oid.Hex()
	}
	return nil
}

func (r *mongoExtensionRepository) FindPendingByID(ctx context.Context, id string) (*model.PendingExtension, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, overstayerrors.ErrInvalidID
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var ext model.PendingExtension
	if err := r.extensions.FindOne(ctx, bson.M{"_id": objectID}).Decode(&ext); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, overstayerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find extension: %w", err)
	}
	ext.ID = id
	return &ext, nil
}

func (r *mongoExtensionRepository) ResolvePending(ctx context.Context, id, status string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return overstayerrors.ErrInvalidID
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.extensions.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": model.ExtensionPending},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to resolve extension: %w", err)
	}
	if result.MatchedCount == 0 {
		return overstayerrors.ErrNotFound
	}
	return nil
}

func (r *mongoExtensionRepository) FindStorageReservationByID(ctx context.Context, id string) (*model.StorageReservation, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, overstayerrors.ErrInvalidID
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var res model.StorageReservation
	if err := r.storage.FindOne(ctx, bson.M{"_id": objectID}).Decode(&res); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, overstayerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find storage reservation: %w", err)
	}
	res.ID = id
	return &res, nil
}

func (r *mongoExtensionRepository) FindOverdueStorage(ctx context.Context, asOf string) ([]*model.StorageReservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"end_date":       bson.M{"$lt": asOf},
		"status":         bson.M{"$ne": model.StatusCancelled},
		"payment_status": bson.M{"$ne": model.PaymentFailed},
	}

	cursor, err := r.storage.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue storage reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*model.StorageReservation
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode overdue storage reservations: %w", err)
	}
	return results, nil
}

func (r *mongoExtensionRepository) MarkOverdue(ctx context.Context, id string, overdueDays int, penaltyCents model.Cents) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return overstayerrors.ErrInvalidID
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.storage.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"overdue_days": overdueDays, "penalty_cents": penaltyCents}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark reservation overdue: %w", err)
	}
	if result.MatchedCount == 0 {
		return overstayerrors.ErrNotFound
	}
	return nil
}

func (r *mongoExtensionRepository) ExtendStorageReservation(ctx context.Context, id, newEndDate string, addedPriceCents model.Cents) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return overstayerrors.ErrInvalidID
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.storage.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$set": bson.M{"end_date": newEndDate, "overdue_days": 0, "penalty_cents": 0},
			"$inc": bson.M{"price_cents": addedPriceCents},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to extend storage reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return overstayerrors.ErrNotFound
	}
	return nil
}

func (r *mongoExtensionRepository) SetPaymentSession(ctx context.Context, extensionID, sessionID string) error {
	objectID, err := primitive.ObjectIDFromHex(extensionID)
	if err != nil {
		return overstayerrors.ErrInvalidID
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err = r.extensions.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"payment_session_id": sessionID}},
	)
	if err != nil {
		return fmt.Errorf("failed to set payment session: %w", err)
	}
	return nil
}

func (r *mongoExtensionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
