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

	listingserrors "mise/internal/listings/errors"
	"mise/pkg/config"
	"mise/pkg/model"
)

const (
	KitchenCollectionName   = "KitchenListings"
	StorageCollectionName   = "StorageListings"
	EquipmentCollectionName = "EquipmentListings"
)

type mongoListingRepository struct {
	cfg       *config.Config
	db        *mongo.Database
	kitchens  *mongo.Collection
	storage   *mongo.Collection
	equipment *mongo.Collection
}

type ListingRepository interface {
	CreateKitchen(ctx context.Context, listing *model.KitchenListing) error
	FindKitchenByID(ctx context.Context, id string) (*model.KitchenListing, error)
	FindKitchens(ctx context.Context, city string, limit int, offset int64) ([]*model.KitchenListing, error)
	CountKitchens(ctx context.Context, city string) (int64, error)

	CreateStorage(ctx context.Context, listing *model.StorageListing) error
	FindStorageByID(ctx context.Context, id string) (*model.StorageListing, error)
	FindStorageByKitchen(ctx context.Context, kitchenID string) ([]*model.StorageListing, error)

	CreateEquipment(ctx context.Context, listing *model.EquipmentListing) error
	FindEquipmentByID(ctx context.Context, id string) (*model.EquipmentListing, error)
	FindEquipmentByKitchen(ctx context.Context, kitchenID string) ([]*model.EquipmentListing, error)
}

func NewMongoListingRepository(cfg *config.Config) ListingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoListingRepository{
		cfg:       cfg,
		db:        db,
		kitchens:  db.Collection(KitchenCollectionName),
		storage:   db.Collection(StorageCollectionName),
		equipment: db.Collection(EquipmentCollectionName),
	}
}

func (r *mongoListingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoListingRepository) insertOne(ctx context.Context, coll *mongo.Collection, doc any, what string) (string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", what, err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return "", nil
}

func (r *mongoListingRepository) findByID(ctx context.Context, coll *mongo.Collection, id string, target any, what string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	err = coll.FindOne(ctx, bson.M{"_id": objectID}).Decode(target)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return listingserrors.ErrNotFound
		}
		return fmt.Errorf("failed to find %s: %w", what, err)
	}
	return nil
}

func (r *mongoListingRepository) CreateKitchen(ctx context.Context, listing *model.KitchenListing) error {
	listing.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	id, err := r.insertOne(ctx, r.kitchens, listing, "kitchen listing")
	if err != nil {
		return err
	}
	listing.ID = id
	return nil
}

func (r *mongoListingRepository) FindKitchenByID(ctx context.Context, id string) (*model.KitchenListing, error) {
	var listing model.KitchenListing
	if err := r.findByID(ctx, r.kitchens, id, &listing, "kitchen listing"); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *mongoListingRepository) FindKitchens(ctx context.Context, city string, limit int, offset int64) ([]*model.KitchenListing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if city != "" {
		filter["city"] = city
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.kitchens.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find kitchen listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []*model.KitchenListing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode kitchen listings: %w", err)
	}
	return listings, nil
}

func (r *mongoListingRepository) CountKitchens(ctx context.Context, city string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if city != "" {
		filter["city"] = city
	}

	count, err := r.kitchens.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count kitchen listings: %w", err)
	}
	return count, nil
}

func (r *mongoListingRepository) CreateStorage(ctx context.Context, listing *model.StorageListing) error {
	listing.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	id, err := r.insertOne(ctx, r.storage, listing, "storage listing")
	if err != nil {
		return err
	}
	listing.ID = id
	return nil
}

func (r *mongoListingRepository) FindStorageByID(ctx context.Context, id string) (*model.StorageListing, error) {
	var listing model.StorageListing
	if err := r.findByID(ctx, r.storage, id, &listing, "storage listing"); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *mongoListingRepository) FindStorageByKitchen(ctx context.Context, kitchenID string) ([]*model.StorageListing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.storage.Find(ctx, bson.M{"kitchen_id": kitchenID})
	if err != nil {
		return nil, fmt.Errorf("failed to find storage listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []*model.StorageListing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode storage listings: %w", err)
	}
	return listings, nil
}

func (r *mongoListingRepository) CreateEquipment(ctx context.Context, listing *model.EquipmentListing) error {
	listing.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	id, err := r.insertOne(ctx, r.equipment, listing, "equipment listing")
	if err != nil {
		return err
	}
	listing.ID = id
	return nil
}

func (r *mongoListingRepository) FindEquipmentByID(ctx context.Context, id string) (*model.EquipmentListing, error) {
	var listing model.EquipmentListing
	if err := r.findByID(ctx, r.equipment, id, &listing, "equipment listing"); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *mongoListingRepository) FindEquipmentByKitchen(ctx context.Context, kitchenID string) ([]*model.EquipmentListing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.equipment.Find(ctx, bson.M{"kitchen_id": kitchenID})
	if err != nil {
		return nil, fmt.Errorf("failed to find equipment listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []*model.EquipmentListing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode equipment listings: %w", err)
	}
	return listings, nil
}
