package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func countingHandler(status int, calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(status)
		fmt.Fprintf(w, "call %d", *calls)
	})
}

func TestIdempotencyReplay(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "")(countingHandler(http.StatusCreated, &calls))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	handler.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	retry := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	retry.Header.Set("Idempotency-Key", "key-1")
	handler.ServeHTTP(second, retry)

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1 (retry must replay the cache)", calls)
	}
	if second.Code != http.StatusCreated {
		t.Errorf("replayed status = %d, want %d", second.Code, http.StatusCreated)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed body = %q, want %q", second.Body.String(), first.Body.String())
	}
}

func TestIdempotencyDistinctKeys(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "")(countingHandler(http.StatusOK, &calls))

	for _, key := range []string{"key-a", "key-b"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("Idempotency-Key", key)
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2 (distinct keys never share a cache entry)", calls)
	}
}

func TestIdempotencyNoKeyPassesThrough(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "")(countingHandler(http.StatusOK, &calls))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil))
	}

	if calls != 3 {
		t.Errorf("handler calls = %d, want 3 (no key means no caching)", calls)
	}
}

func TestIdempotencyErrorsAreNotCached(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "")(countingHandler(http.StatusConflict, &calls))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("Idempotency-Key", "key-conflict")
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2 (non-2xx responses are retried, not replayed)", calls)
	}
}

func TestIdempotencyStoreExpiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Stop()

	store.Set("key-exp", &CachedResponse{StatusCode: http.StatusOK, Body: []byte("ok")})
	if _, found := store.Get("key-exp"); !found {
		t.Fatal("fresh entry should be found")
	}

	time.Sleep(20 * time.Millisecond)
	if _, found := store.Get("key-exp"); found {
		t.Error("expired entry should not be found")
	}
}

func TestIdempotencyCustomHeader(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "X-Request-Token")(countingHandler(http.StatusOK, &calls))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("X-Request-Token", "tok-1")
		handler.ServeHTTP(rec, req)
		if !strings.HasPrefix(rec.Body.String(), "call 1") {
			t.Errorf("request %d body = %q, want the first call's body", i+1, rec.Body.String())
		}
	}

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}
