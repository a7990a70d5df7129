package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"mise/internal/overstay/service"
	httputil "mise/pkg/http"
	"mise/pkg/logger"
)

type OverstayHandler struct {
	service service.OverstayService
	log     *logger.Logger
}

func NewOverstayHandler(service service.OverstayService, log *logger.Logger) *OverstayHandler {
	return &OverstayHandler{
		service: service,
		log:     log,
	}
}

type extensionRequest struct {
	NewEndDate string `json:"new_end_date"`
}

type sweepResponse struct {
	AsOf    string `json:"as_of"`
	Records any    `json:"records"`
}

func (h *OverstayHandler) Sweep(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	asOf := r.URL.Query().Get("as_of")

	records, err := h.service.Sweep(r.Context(), asOf)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Sweep", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sweepResponse{AsOf: asOf, Records: records}); err != nil {
		h.log.Error("failed to write success response", "handler", "Sweep", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OverstayHandler) RequestExtension(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req extensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "RequestExtension", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	ext, err := h.service.RequestExtension(r.Context(), ps.ByName("id"), req.NewEndDate)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RequestExtension", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, ext); err != nil {
		h.log.Error("failed to write created response", "handler", "RequestExtension", "operation", "WriteCreated", "error", err)
	}
}

func (h *OverstayHandler) ConfirmExtension(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ext, err := h.service.ConfirmExtension(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ConfirmExtension", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ext); err != nil {
		h.log.Error("failed to write success response", "handler", "ConfirmExtension", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OverstayHandler) FailExtension(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ext, err := h.service.FailExtension(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FailExtension", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ext); err != nil {
		h.log.Error("failed to write success response", "handler", "FailExtension", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OverstayHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/overstay/sweep", h.Sweep)
	router.POST("/api/v1/storage-reservations/:id/extensions", h.RequestExtension)
	router.POST("/api/v1/extensions/:id/confirm", h.ConfirmExtension)
	router.POST("/api/v1/extensions/:id/fail", h.FailExtension)
}
