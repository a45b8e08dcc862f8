package outlet_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-linkmarket/internal/apperrors"
	"ms-linkmarket/internal/auth"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/models"
	"ms-linkmarket/internal/outlet"
	"ms-linkmarket/internal/utils"
)

type Handler struct {
	OutletService *outlet.OutletService
	Logger        *logger.Logger
}

func NewHandler(outletService *outlet.OutletService, log *logger.Logger) *Handler {
	return &Handler{OutletService: outletService, Logger: log}
}

// RegisterRoutes registers marketplace and review routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/outlets", func(r chi.Router) {
		r.Get("/marketplace", h.Browse)
		r.Get("/pending", h.Pending)
		r.Post("/{outletId}/approve", h.Approve)
		r.Post("/{outletId}/reject", h.Reject)
		r.Put("/{outletId}/active", h.SetActive)
	})
}

// Browse renders the marketplace with optional query filters.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	filter := models.MarketplaceFilter{
		Country:  r.URL.Query().Get("country"),
		Language: r.URL.Query().Get("language"),
		Category: r.URL.Query().Get("category"),
		SortBy:   r.URL.Query().Get("sort_by"),
		SortDesc: r.URL.Query().Get("sort_desc") == "true",
	}
	if v := r.URL.Query().Get("min_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &p
		}
	}
	if v := r.URL.Query().Get("max_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &p
		}
	}

	outlets, err := h.OutletService.Browse(filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Browse: %v", err))
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Marketplace", outlets))
}

func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	outlets, err := h.OutletService.PendingOutlets(actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Pending outlets", outlets))
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	outletID := chi.URLParam(r, "outletId")

	var req struct {
		SellingPrice float64 `json:"selling_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	outletData, err := h.OutletService.Approve(actor, outletID, req.SellingPrice)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Approve: %v", err))
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Outlet approved", outletData))
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	outletID := chi.URLParam(r, "outletId")

	outletData, err := h.OutletService.Reject(actor, outletID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Reject: %v", err))
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Outlet rejected", outletData))
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	outletID := chi.URLParam(r, "outletId")

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	outletData, err := h.OutletService.SetActive(actor, outletID, req.Active)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Outlet updated", outletData))
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("failed to encode response: %v\n", err)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsPermissionDenied(err):
		sendJSON(w, http.StatusForbidden, utils.ErrorResponse("Permission denied", err.Error()))
	case apperrors.IsNotFound(err):
		sendJSON(w, http.StatusNotFound, utils.ErrorResponse("Not found", err.Error()))
	case apperrors.IsInvalidTransition(err):
		sendJSON(w, http.StatusConflict, utils.ErrorResponse("Invalid state", err.Error()))
	default:
		sendJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Operation failed", err.Error()))
	}
}
