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

	availabilityerrors "mise/internal/availability/errors"
	"mise/pkg/config"
	mongotx "mise/pkg/db/mongo"
	"mise/pkg/model"
)

const (
	WeeklyCollectionName   = "WeeklyAvailability"
	OverrideCollectionName = "DateOverrides"
)

type mongoScheduleRepository struct {
	cfg       *config.Config
	db        *mongo.Database
	weekly    *mongo.Collection
	overrides *mongo.Collection
	txManager mongotx.TransactionManager
}

type ScheduleRepository interface {
	ReplaceWeekly(ctx context.Context, resourceID string, entries []model.WeeklyAvailability) error
	FindWeeklyByDay(ctx context.Context, resourceID string, dayOfWeek int) ([]model.WeeklyAvailability, error)
	FindWeekly(ctx context.Context, resourceID string) ([]model.WeeklyAvailability, error)
	UpsertOverride(ctx context.Context, override *model.DateOverride) error
	FindOverride(ctx context.Context, resourceID, date string) (*model.DateOverride, error)
	DeleteOverride(ctx context.Context, resourceID, date string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleRepository{
		cfg:       cfg,
		db:        db,
		weekly:    db.Collection(WeeklyCollectionName),
		overrides: db.Collection(OverrideCollectionName),
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContexts pass through unchanged; wrapping them would break
// transaction semantics.
func (r *mongoScheduleRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

// ReplaceWeekly swaps a resource's entire weekly schedule in one transaction
// so readers never observe a half-written week.
func (r *mongoScheduleRepository) ReplaceWeekly(ctx context.Context, resourceID string, entries []model.WeeklyAvailability) error {
	if !primitive.IsValidObjectID(resourceID) {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, resourceID)
	}

	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := r.weekly.DeleteMany(sessCtx, bson.M{"resource_id": resourceID}); err != nil {
			return fmt.Errorf("failed to clear weekly schedule: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}

		docs := make([]any, 0, len(entries))
		for i := range entries {
			entries[i].ID = ""
			entries[i].ResourceID = resourceID
			docs = append(docs, entries[i])
		}
		if _, err := r.weekly.InsertMany(sessCtx, docs); err != nil {
			return fmt.Errorf("failed to insert weekly schedule: %w", err)
		}
		return nil
	})
}

func (r *mongoScheduleRepository) FindWeeklyByDay(ctx context.Context, resourceID string, dayOfWeek int) ([]model.WeeklyAvailability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"resource_id": resourceID, "day_of_week": dayOfWeek}
	opts := options.Find().SetSort(bson.D{{Key: "start_minute", Value: 1}})

	cursor, err := r.weekly.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find weekly availability: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []model.WeeklyAvailability
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode weekly availability: %w", err)
	}
	return entries, nil
}

func (r *mongoScheduleRepository) FindWeekly(ctx context.Context, resourceID string) ([]model.WeeklyAvailability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"resource_id": resourceID}
	opts := options.Find().SetSort(bson.D{{Key: "day_of_week", Value: 1}, {Key: "start_minute", Value: 1}})

	cursor, err := r.weekly.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find weekly availability: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []model.WeeklyAvailability
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode weekly availability: %w", err)
	}
	return entries, nil
}

func (r *mongoScheduleRepository) UpsertOverride(ctx context.Context, override *model.DateOverride) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"resource_id": override.ResourceID, "date": override.Date}
	update := bson.M{
		"$set": bson.M{
			"resource_id":  override.ResourceID,
			"date":         override.Date,
			"start_minute": override.StartMinute,
			"end_minute":   override.EndMinute,
			"closed":       override.Closed,
		},
	}

	_, err := r.overrides.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert date override: %w", err)
	}
	return nil
}

func (r *mongoScheduleRepository) FindOverride(ctx context.Context, resourceID, date string) (*model.DateOverride, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"resource_id": resourceID, "date": date}

	var override model.DateOverride
	err := r.overrides.FindOne(ctx, filter).Decode(&override)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availabilityerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find date override: %w", err)
	}
	return &override, nil
}

func (r *mongoScheduleRepository) DeleteOverride(ctx context.Context, resourceID, date string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.overrides.DeleteOne(ctx, bson.M{"resource_id": resourceID, "date": date})
	if err != nil {
		return fmt.Errorf("failed to delete date override: %w", err)
	}
	if result.DeletedCount == 0 {
		return availabilityerrors.ErrNotFound
	}
	return nil
}

func (r *mongoScheduleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
