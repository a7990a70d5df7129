package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"mise/internal/availability/service"
	apperrors "mise/pkg/errors"
	httputil "mise/pkg/http"
	"mise/pkg/logger"
	"mise/pkg/model"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

type weeklyScheduleRequest struct {
	Entries []model.WeeklyAvailability `json:"entries"`
}

func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("id")
	date := r.URL.Query().Get("date")
	if date == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'date' query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	ranges, err := h.service.ResolveOpenRanges(r.Context(), resourceID, date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ranges); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) GetSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("id")
	query := r.URL.Query()

	date := query.Get("date")
	if date == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'date' query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	durationStr := query.Get("duration")
	if durationStr == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'duration' query parameter is required (minutes)")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	duration, err := strconv.Atoi(durationStr)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid duration parameter: %s", durationStr))); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	slots, err := h.service.GenerateSlots(r.Context(), resourceID, date, duration)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) PutWeeklySchedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("id")

	var req weeklyScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "PutWeeklySchedule", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.ReplaceWeeklySchedule(r.Context(), resourceID, req.Entries); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "PutWeeklySchedule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) PutOverride(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var override model.DateOverride
	if err := json.NewDecoder(r.Body).Decode(&override); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "PutOverride", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	override.ResourceID = ps.ByName("id")
	override.Date = ps.ByName("date")

	if err := h.service.SetOverride(r.Context(), &override); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "PutOverride", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) DeleteOverride(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.RemoveOverride(r.Context(), ps.ByName("id"), ps.ByName("date")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteOverride", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/kitchens/:id/availability", h.GetAvailability)
	router.GET("/api/v1/kitchens/:id/slots", h.GetSlots)
	router.PUT("/api/v1/kitchens/:id/schedule", h.PutWeeklySchedule)
	router.PUT("/api/v1/kitchens/:id/overrides/:date", h.PutOverride)
	router.DELETE("/api/v1/kitchens/:id/overrides/:date", h.DeleteOverride)
}
