package testutil

import (
	"os"
	"testing"
	"time"
)

// TestEnv points the suite at a running engine and its Mongo store. The
// server must be configured against an eligibility stub that approves test
// chefs; payment sessions may fail, bookings stand regardless.
type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
}

const healthTimeout = 30 * time.Second

// Env skips the calling test unless the environment is wired up. The suite
// never runs implicitly alongside the unit tests.
func Env(t *testing.T) *TestEnv {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	mongoURI := os.Getenv("TEST_MONGO_URI")
	if serverURL == "" || mongoURI == "" {
		t.Skip("integration environment not configured: set TEST_SERVER_URL and TEST_MONGO_URI")
	}

	return &TestEnv{
		MongoURI:     mongoURI,
		DatabaseName: getenv("TEST_DB_NAME", "mise"),
		ServerURL:    serverURL,
	}
}

// Setup connects to the store, wipes it, and waits for the engine to answer
// health checks. The returned helper and client are ready for requests.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Client) {
	t.Helper()

	store := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	store.CleanDatabase(t)

	client := NewClient(e.ServerURL)
	client.WaitForHealthy(t, healthTimeout)

	return store, client
}

func (e *TestEnv) Teardown(t *testing.T, store *MongoHelper) {
	t.Helper()
	if store != nil {
		store.CleanDatabase(t)
		store.Close(t)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
