package order_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-linkmarket/internal/apperrors"
	"ms-linkmarket/internal/auth"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/models"
	"ms-linkmarket/internal/order"
	"ms-linkmarket/internal/utils"
)

type Handler struct {
	OrderService *order.OrderService
	Logger       *logger.Logger
}

func NewHandler(orderService *order.OrderService, log *logger.Logger) *Handler {
	return &Handler{
		OrderService: orderService,
		Logger:       log,
	}
}

// RegisterRoutes registers the order routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.PlaceOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{orderId}", h.GetOrder)
		r.Get("/{orderId}/timeline", h.GetTimeline)
		r.Put("/{orderId}/status", h.UpdateStatus)
		r.Put("/{orderId}/content", h.UpdateContent)
	})
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("PlaceOrder: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.OrderService.PlaceOrder(actor, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PlaceOrder: %v", err))
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, utils.SuccessResponse("Order placed", resp))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	orderID := chi.URLParam(r, "orderId")
	h.Logger.Info("API", fmt.Sprintf("GetOrder: orderId=%s", orderID))

	orderData, err := h.OrderService.GetOrder(actor, orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOrder: %v", err))
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Order", orderData))
}

func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	orderID := chi.URLParam(r, "orderId")
	orderData, err := h.OrderService.GetOrder(actor, orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	timeline := order.BuildTimeline(orderData.Status, orderData.CreatedAt, orderData.UpdatedAt, orderData.PublicationDate)
	sendJSON(w, http.StatusOK, utils.SuccessResponse("Timeline", timeline))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	orders, err := h.OrderService.ListOrders(actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Orders", orders))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	orderID := chi.URLParam(r, "orderId")

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	orderData, err := h.OrderService.UpdateOrderStatus(actor, orderID, req.Status, req.PublicationURL)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateStatus: %v", err))
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Status updated", orderData))
}

func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	orderID := chi.URLParam(r, "orderId")

	var req models.ContentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	orderData, err := h.OrderService.UpdateOrderContent(actor, orderID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateContent: %v", err))
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Content updated", orderData))
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
		sendJSON(w, http.StatusConflict, utils.ErrorResponse("Invalid transition", err.Error()))
	default:
		sendJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Operation failed", err.Error()))
	}
}
