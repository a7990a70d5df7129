package integrationtests

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"mise/pkg/model"
	"mise/test/integration/testutil"
)

// The suite drives a running engine over HTTP and inspects its Mongo store
// directly. It only runs when TEST_SERVER_URL and TEST_MONGO_URI are set;
// see testutil.Env for the environment contract.

const (
	bookingDate = "2030-05-20" // a Monday
	mondayIndex = 1
)

func TestBookingEngine(t *testing.T) {
	env := testutil.Env(t)
	store, client := env.Setup(t)
	defer env.Teardown(t, store)

	kitchenID := seedKitchen(t, client)

	testConcurrentSameWindowCreation(t, store, client, kitchenID)
	testRandomizedConcurrentBookings(t, store, client, kitchenID)
	testConcurrentCreateAndCancel(t, store, client, kitchenID)
	testCancelFreesTheWindow(t, store, client, kitchenID)
}

// --- Helpers ---

func seedKitchen(t *testing.T, client *testutil.Client) string {
	t.Helper()

	resp := client.POST(t, "/api/v1/kitchens", map[string]any{
		"manager_id":        "manager-integration-1",
		"name":              "Harbor Test Kitchen",
		"city":              "Lisbon",
		"address":           "12 Dockside Way",
		"hourly_rate_cents": 4500,
		"currency":          "usd",
	})
	testutil.AssertStatusCode(t, resp, 201)

	var created struct {
		Data model.KitchenListing `json:"data"`
	}
	if err := resp.DecodeJSON(&created); err != nil {
		t.Fatalf("failed to decode kitchen: %v", err)
	}
	if created.Data.ID == "" {
		t.Fatalf("created kitchen has no ID, body: %s", resp.Body)
	}

	scheduleResp := client.PUT(t, fmt.Sprintf("/api/v1/kitchens/%s/schedule", created.Data.ID), map[string]any{
		"entries": []map[string]any{
			{
				"resource_id":  created.Data.ID,
				"day_of_week":  mondayIndex,
				"start_minute": 480,
				"end_minute":   1320,
				"available":    true,
			},
		},
	})
	testutil.AssertStatusCode(t, scheduleResp, 204)

	return created.Data.ID
}

func bookingPayload(kitchenID, chefID string, startMinute, endMinute int) map[string]any {
	return map[string]any{
		"kitchen_id":   kitchenID,
		"chef_id":      chefID,
		"date":         bookingDate,
		"start_minute": startMinute,
		"end_minute":   endMinute,
	}
}

func decodeBooking(t *testing.T, resp *testutil.Response) *model.BookingResponse {
	t.Helper()
	var result struct {
		Data model.BookingResponse `json:"data"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		t.Fatalf("failed to decode booking: %v", err)
	}
	return &result.Data
}

func cancelBooking(t *testing.T, client *testutil.Client, bookingID string) {
	t.Helper()
	resp := client.POST(t, fmt.Sprintf("/api/v1/bookings/%s/cancel", bookingID), map[string]any{})
	testutil.AssertStatusCode(t, resp, 200)
}

// --- Tests ---

// Many chefs race for one window. The store decides the winners; whatever
// the split of status codes, the active rows must never overlap and must
// match the number of 201s handed out.
func testConcurrentSameWindowCreation(t *testing.T, store *testutil.MongoHelper, client *testutil.Client, kitchenID string) {
	store.CleanReservations(t)

	const racers = 8

	var wg sync.WaitGroup
	results := make([]int, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			payload := bookingPayload(kitchenID, fmt.Sprintf("chef-race-%d", index), 600, 720)
			resp := client.POST(t, "/api/v1/bookings", payload)
			results[index] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	successCount := 0
	for _, status := range results {
		switch status {
		case 201:
			successCount++
		case 409:
		default:
			t.Errorf("unexpected status from concurrent create: %d", status)
		}
	}
	t.Logf("concurrent same-window creation: %d/%d succeeded", successCount, racers)

	if successCount < 1 {
		t.Errorf("expected at least one booking to win the race, got none")
	}

	active := store.ActiveReservations(t, kitchenID, bookingDate)
	if len(active) != successCount {
		t.Errorf("store holds %d active reservations, but %d creates returned 201", len(active), successCount)
	}
	store.AssertNoOverlappingReservations(t, kitchenID, bookingDate)
}

// Random grid-aligned windows fired concurrently. Some collide, some do
// not; the only acceptable end state is a store with no overlapping
// active pair.
func testRandomizedConcurrentBookings(t *testing.T, store *testutil.MongoHelper, client *testutil.Client, kitchenID string) {
	store.CleanReservations(t)

	const attempts = 24
	rng := rand.New(rand.NewSource(42))

	windows := make([][2]int, attempts)
	for i := range windows {
		start := 480 + 30*rng.Intn(24)
		duration := 30 * (1 + rng.Intn(4))
		windows[i] = [2]int{start, start + duration}
	}

	var wg sync.WaitGroup
	results := make([]int, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			payload := bookingPayload(kitchenID, fmt.Sprintf("chef-rand-%d", index),
				windows[index][0], windows[index][1])
			resp := client.POST(t, "/api/v1/bookings", payload)
			results[index] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	successCount := 0
	for _, status := range results {
		if status == 201 {
			successCount++
		}
	}
	t.Logf("randomized concurrent bookings: %d/%d succeeded", successCount, attempts)

	active := store.ActiveReservations(t, kitchenID, bookingDate)
	if len(active) != successCount {
		t.Errorf("store holds %d active reservations, but %d creates returned 201", len(active), successCount)
	}
	store.AssertNoOverlappingReservations(t, kitchenID, bookingDate)
}

// Creates and cancels interleave on one window. Whether a late creator
// lands before or after the cancel, no two active rows may overlap once
// the dust settles.
func testConcurrentCreateAndCancel(t *testing.T, store *testutil.MongoHelper, client *testutil.Client, kitchenID string) {
	store.CleanReservations(t)

	first := client.POST(t, "/api/v1/bookings", bookingPayload(kitchenID, "chef-holder", 780, 900))
	testutil.AssertStatusCode(t, first, 201)
	holderID := decodeBooking(t, first).BookingID

	const challengers = 6

	var wg sync.WaitGroup
	wg.Add(challengers + 1)

	go func() {
		defer wg.Done()
		cancelBooking(t, client, holderID)
	}()
	for i := 0; i < challengers; i++ {
		go func(index int) {
			defer wg.Done()
			payload := bookingPayload(kitchenID, fmt.Sprintf("chef-challenger-%d", index), 780, 900)
			client.POST(t, "/api/v1/bookings", payload)
		}(i)
	}
	wg.Wait()

	store.AssertNoOverlappingReservations(t, kitchenID, bookingDate)
}

// Cancelling releases the window: a second chef can book the exact same
// slot afterwards, and the cancelled row no longer counts as active.
func testCancelFreesTheWindow(t *testing.T, store *testutil.MongoHelper, client *testutil.Client, kitchenID string) {
	store.CleanReservations(t)

	first := client.POST(t, "/api/v1/bookings", bookingPayload(kitchenID, "chef-early", 960, 1080))
	testutil.AssertStatusCode(t, first, 201)
	firstID := decodeBooking(t, first).BookingID

	blocked := client.POST(t, "/api/v1/bookings", bookingPayload(kitchenID, "chef-late", 960, 1080))
	testutil.AssertStatusCode(t, blocked, 409)

	cancelBooking(t, client, firstID)

	rebooked := client.POST(t, "/api/v1/bookings", bookingPayload(kitchenID, "chef-late", 960, 1080))
	testutil.AssertStatusCode(t, rebooked, 201)

	active := store.ActiveReservations(t, kitchenID, bookingDate)
	if len(active) != 1 {
		t.Errorf("expected exactly one active reservation after rebooking, got %d", len(active))
	}
	store.AssertNoOverlappingReservations(t, kitchenID, bookingDate)
}
