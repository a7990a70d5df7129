package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mise/internal/migrations/mongo/validators"
)

var (
	KitchenListingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}}},
		{Keys: bson.D{{Key: "manager_id", Value: 1}}},
	}

	StorageListingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "kitchen_id", Value: 1}}},
	}

	EquipmentListingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "kitchen_id", Value: 1}}},
	}

	WeeklyAvailabilityIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "resource_id", Value: 1},
			{Key: "day_of_week", Value: 1},
		}},
	}

	DateOverridesIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "resource_id", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	ReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "resource_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "start_minute", Value: 1},
			{Key: "end_minute", Value: 1},
		}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}

	StorageReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "storage_id", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
		{Keys: bson.D{{Key: "parent_booking_id", Value: 1}}},
		{Keys: bson.D{{Key: "end_date", Value: 1}, {Key: "status", Value: 1}}},
	}

	EquipmentReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "equipment_id", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
		{Keys: bson.D{{Key: "parent_booking_id", Value: 1}}},
	}

	// The partial unique index is what makes "at most one pending extension
	// per reservation" hold under concurrent requests: a second insert fails
	// with a duplicate-key error while a pending row exists, but completed
	// and failed rows never collide.
	PendingExtensionsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "storage_reservation_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "pending"}),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running Mise Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"KitchenListings": {
			Indexes:   KitchenListingsIndexes,
			Validator: validators.KitchenListingValidator,
		},
		"StorageListings": {
			Indexes:   StorageListingsIndexes,
			Validator: validators.StorageListingValidator,
		},
		"EquipmentListings": {
			Indexes:   EquipmentListingsIndexes,
			Validator: validators.EquipmentListingValidator,
		},
		"WeeklyAvailability": {
			Indexes:   WeeklyAvailabilityIndexes,
			Validator: validators.WeeklyAvailabilityValidator,
		},
		"DateOverrides": {
			Indexes:   DateOverridesIndexes,
			Validator: validators.DateOverrideValidator,
		},
		"Reservations": {
			Indexes:   ReservationsIndexes,
			Validator: validators.ReservationValidator,
		},
		"StorageReservations": {
			Indexes:   StorageReservationsIndexes,
			Validator: validators.StorageReservationValidator,
		},
		"EquipmentReservations": {
			Indexes:   EquipmentReservationsIndexes,
			Validator: validators.EquipmentReservationValidator,
		},
		"BookingLedgers": {
			Indexes:   nil,
			Validator: validators.BookingLedgerValidator,
		},
		"PendingExtensions": {
			Indexes:   PendingExtensionsIndexes,
			Validator: validators.PendingExtensionValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}

	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
