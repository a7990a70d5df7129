package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"mise/internal/listings/service"
	httputil "mise/pkg/http"
	"mise/pkg/logger"
	"mise/pkg/model"
)

type ListingHandler struct {
	service service.ListingService
	log     *logger.Logger
}

func NewListingHandler(service service.ListingService, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		log:     log,
	}
}

func (h *ListingHandler) CreateKitchen(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var listing model.KitchenListing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateKitchen", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateKitchen(r.Context(), &listing); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateKitchen", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, listing); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateKitchen", "operation", "WriteCreated", "error", err)
	}
}

func (h *ListingHandler) GetKitchen(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listing, err := h.service.GetKitchen(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetKitchen", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, listing); err != nil {
		h.log.Error("failed to write success response", "handler", "GetKitchen", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) ListKitchens(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListKitchens", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	listings, total, err := h.service.ListKitchens(r.Context(), r.URL.Query().Get("city"), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListKitchens", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, listings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListKitchens", "operation", "WritePaginated", "error", err)
	}
}

func (h *ListingHandler) CreateStorage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var listing model.StorageListing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateStorage", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	listing.KitchenID = ps.ByName("id")

	if err := h.service.CreateStorage(r.Context(), &listing); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateStorage", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, listing); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateStorage", "operation", "WriteCreated", "error", err)
	}
}

func (h *ListingHandler) ListStorage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listings, err := h.service.ListStorageByKitchen(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListStorage", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, listings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListStorage", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) CreateEquipment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var listing model.EquipmentListing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateEquipment", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	listing.KitchenID = ps.ByName("id")

	if err := h.service.CreateEquipment(r.Context(), &listing); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateEquipment", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, listing); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateEquipment", "operation", "WriteCreated", "error", err)
	}
}

func (h *ListingHandler) ListEquipment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listings, err := h.service.ListEquipmentByKitchen(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListEquipment", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, listings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListEquipment", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ListingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/kitchens", h.CreateKitchen)
	router.GET("/api/v1/kitchens", h.ListKitchens)
	router.GET("/api/v1/kitchens/:id", h.GetKitchen)
	router.POST("/api/v1/kitchens/:id/storage", h.CreateStorage)
	router.GET("/api/v1/kitchens/:id/storage", h.ListStorage)
	router.POST("/api/v1/kitchens/:id/equipment", h.CreateEquipment)
	router.GET("/api/v1/kitchens/:id/equipment", h.ListEquipment)
}
