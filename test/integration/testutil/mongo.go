package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mise/pkg/model"
)

const (
	ReservationsCollection          = "Reservations"
	StorageReservationsCollection   = "StorageReservations"
	EquipmentReservationsCollection = "EquipmentReservations"
	BookingLedgersCollection        = "BookingLedgers"

	connectionTimeout = 10 * time.Second
	opTimeout         = 10 * time.Second
)

// MongoHelper gives tests direct access to the engine's store so they can
// verify invariants the API alone cannot show, such as the absence of
// overlapping reservation rows.
type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   client,
		Database: client.Database(dbName),
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanDatabase empties every engine collection. Collections are kept, so
// the migration-created validators and indexes stay in force.
func (m *MongoHelper) CleanDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	names, err := m.Database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}
	for _, name := range names {
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

// CleanReservations empties only the booking collections, leaving seeded
// kitchens and schedules in place between tests.
func (m *MongoHelper) CleanReservations(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	for _, name := range []string{
		ReservationsCollection,
		StorageReservationsCollection,
		EquipmentReservationsCollection,
		BookingLedgersCollection,
	} {
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collection string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	count, err := m.Database.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collection, err)
	}
	return count
}

// ActiveReservations loads every non-cancelled reservation for one kitchen
// and date, the rows the overlap invariant quantifies over.
func (m *MongoHelper) ActiveReservations(t *testing.T, resourceID, date string) []model.Reservation {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cursor, err := m.Database.Collection(ReservationsCollection).Find(ctx, bson.M{
		"resource_id": resourceID,
		"date":        date,
		"status":      bson.M{"$ne": model.StatusCancelled},
	})
	if err != nil {
		t.Fatalf("failed to query reservations: %v", err)
	}

	var reservations []model.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		t.Fatalf("failed to decode reservations: %v", err)
	}
	return reservations
}

// AssertNoOverlappingReservations fails when any two non-cancelled
// reservations for the kitchen and date overlap under the half-open rule.
func (m *MongoHelper) AssertNoOverlappingReservations(t *testing.T, resourceID, date string) {
	t.Helper()

	reservations := m.ActiveReservations(t, resourceID, date)
	for i := 0; i < len(reservations); i++ {
		for j := i + 1; j < len(reservations); j++ {
			a, b := reservations[i], reservations[j]
			if a.StartMinute < b.EndMinute && a.EndMinute > b.StartMinute {
				t.Errorf("overlapping active reservations: %s [%d,%d) and %s [%d,%d)",
					a.ID, a.StartMinute, a.EndMinute, b.ID, b.StartMinute, b.EndMinute)
			}
		}
	}
}
