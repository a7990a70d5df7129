package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mise/pkg/logger"
)

func TestContentTypeValidation(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	handler := ContentTypeValidation(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"json post passes", http.MethodPost, "application/json", http.StatusOK},
		{"charset parameter is ignored", http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{"case insensitive", http.MethodPatch, "Application/JSON", http.StatusOK},
		{"xml post rejected", http.MethodPost, "application/xml", http.StatusUnsupportedMediaType},
		{"missing content type rejected", http.MethodPut, "", http.StatusUnsupportedMediaType},
		{"get without content type passes", http.MethodGet, "", http.StatusOK},
		{"delete without content type passes", http.MethodDelete, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/bookings", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestContentTypeValidationCustomAcceptedTypes(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	handler := ContentTypeValidation(log, "application/json", "application/x-ndjson")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/x-ndjson")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestContentTypeValidationRejectionShape(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	handler := ContentTypeValidation(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("<xml/>"))
	req.Header.Set("Content-Type", "text/xml")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body.Code != "UNSUPPORTED_MEDIA_TYPE" {
		t.Errorf("error code = %q, want UNSUPPORTED_MEDIA_TYPE", body.Code)
	}
}
