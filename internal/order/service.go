package order

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-linkmarket/internal/apperrors"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/models"
)

type DBLayer interface {
	CreateOrder(order models.Order) error
	GetOrderByID(id string) (*models.Order, error)
	UpdateOrderStatus(order models.Order) error
	UpdateOrderContent(order models.Order) error
	GetOrdersByBuyer(buyerID string) ([]models.Order, error)
	GetOrdersByPublisher(publisherID string) ([]models.Order, error)
}

type OutletReader interface {
	GetOutletByID(id string) (*models.MediaOutlet, error)
	GetNicheByID(id string) (*models.Niche, error)
}

type KafkaPublisher interface {
	PublishOrderCreated(order models.Order) error
	PublishOrderStatusChanged(order models.Order) error
	PublishOrderContentUpdated(order models.Order) error
}

// PaymentProvider creates the external payment redirect at checkout.
type PaymentProvider interface {
	CreateCheckoutSession(order models.Order) (string, error)
}

// Forward transitions, plus the rejection side channel out of early states.
var allowedTransitions = map[string][]string{
	models.StatusRequested:       {models.StatusAccepted, models.StatusRejected},
	models.StatusAccepted:        {models.StatusContentReceived, models.StatusRejected},
	models.StatusContentReceived: {models.StatusPublished},
	models.StatusPublished:       {models.StatusVerified},
	models.StatusVerified:        {},
	models.StatusRejected:        {},
}

type OrderService struct {
	DB       DBLayer
	Outlets  OutletReader
	Kafka    KafkaPublisher
	Payments PaymentProvider
	logger   *logger.Logger
}

func NewOrderService(db DBLayer, outlets OutletReader, kafka KafkaPublisher, payments PaymentProvider, log *logger.Logger) *OrderService {
	return &OrderService{DB: db, Outlets: outlets, Kafka: kafka, Payments: payments, logger: log}
}

// ---------------- ORDERS ----------------

func (s *OrderService) GetOrder(actor models.Actor, id string) (*models.Order, error) {
	order, err := s.loadOrder(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.BuyerID != actor.ID && order.PublisherID != actor.ID {
		return nil, fmt.Errorf("%w: order %s does not belong to caller", apperrors.ErrPermissionDenied, id)
	}
	return order, nil
}

// PlaceOrder runs buyer checkout: prices the placement from the listing and
// niche multiplier, creates the order in requested, and builds the payment
// redirect. The final price is frozen here and never recomputed.
func (s *OrderService) PlaceOrder(actor models.Actor, req models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {
	if !actor.HasRole(models.RoleBuyer) && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only buyers can place orders", apperrors.ErrPermissionDenied)
	}

	outlet, err := s.Outlets.GetOutletByID(req.OutletID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: outlet %s", apperrors.ErrNotFound, req.OutletID)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	if !outlet.Orderable() || outlet.Price == nil {
		return nil, fmt.Errorf("outlet %s is not orderable", req.OutletID)
	}

	basePrice := *outlet.Price
	multiplier := 1.0
	if req.NicheID != "" {
		niche, err := s.Outlets.GetNicheByID(req.NicheID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: niche %s", apperrors.ErrNotFound, req.NicheID)
			}
			return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
		}
		if niche.Multiplier < 0 {
			return nil, fmt.Errorf("niche %s has invalid multiplier %f", req.NicheID, niche.Multiplier)
		}
		multiplier = niche.Multiplier
	}

	order := models.Order{
		OrderID:         uuid.NewString(),
		BuyerID:         actor.ID,
		PublisherID:     outlet.PublisherID,
		OutletID:        outlet.OutletID,
		NicheID:         req.NicheID,
		Status:          models.StatusRequested,
		Currency:        outlet.Currency,
		BasePrice:       basePrice,
		PriceMultiplier: multiplier,
		FinalPrice:      basePrice * multiplier,
		Briefing:        req.Briefing,
		AnchorText:      req.AnchorText,
		TargetURL:       req.TargetURL,
		CreatedAt:       time.Now(),
	}

	if err := s.DB.CreateOrder(order); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishOrderCreated(order); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("publish order created failed: %v", err))
		}
	}

	resp := &models.PlaceOrderResponse{Order: &order}
	if s.Payments != nil {
		checkoutURL, err := s.Payments.CreateCheckoutSession(order)
		if err != nil {
			// The order exists; the buyer can re-trigger payment from the UI.
			s.logger.Error("PAYMENT", fmt.Sprintf("checkout session for order %s failed: %v", order.OrderID, err))
			return resp, fmt.Errorf("order created but checkout session failed: %w", err)
		}
		resp.CheckoutURL = checkoutURL
	}

	s.logger.LogOrder("PLACE", order.OrderID, fmt.Sprintf("buyer=%s outlet=%s final=%.2f %s",
		actor.ID, outlet.OutletID, order.FinalPrice, order.Currency))
	return resp, nil
}

// UpdateOrderStatus applies a lifecycle transition. Only an admin, or the
// publisher assigned to the order, may transition it. Transitions are
// forward-only; a publication URL is required to reach published.
func (s *OrderService) UpdateOrderStatus(actor models.Actor, orderID, newStatus, publicationURL string) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		if !actor.HasRole(models.RolePublisher) || order.PublisherID != actor.ID {
			return nil, fmt.Errorf("%w: caller may not transition order %s", apperrors.ErrPermissionDenied, orderID)
		}
	}

	if models.StatusIndex(newStatus) == -1 && newStatus != models.StatusRejected {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidTransition, newStatus)
	}
	if !transitionAllowed(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, order.Status, newStatus)
	}

	if newStatus == models.StatusPublished {
		if publicationURL == "" {
			return nil, fmt.Errorf("%w: published requires a publication url", apperrors.ErrInvalidTransition)
		}
		order.PublicationURL = publicationURL
		now := time.Now()
		order.PublicationDate = &now
	}

	order.Status = newStatus
	order.UpdatedAt = time.Now()

	if err := s.DB.UpdateOrderStatus(*order); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishOrderStatusChanged(*order); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("publish status change failed: %v", err))
		}
	}

	s.logger.LogOrder("STATUS", orderID, fmt.Sprintf("-> %s by %s", newStatus, actor.ID))
	return order, nil
}

// UpdateOrderContent edits briefing, anchor text and target URL. Only an
// admin, or the buyer who owns the order, may edit; edits are locked once
// the order has reached published. All three fields are persisted as given,
// empty strings included.
func (s *OrderService) UpdateOrderContent(actor models.Actor, orderID string, req models.ContentUpdateRequest) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		if !actor.HasRole(models.RoleBuyer) || order.BuyerID != actor.ID {
			return nil, fmt.Errorf("%w: caller may not edit order %s", apperrors.ErrPermissionDenied, orderID)
		}
	}

	pubIdx := models.StatusIndex(models.StatusPublished)
	if idx := models.StatusIndex(order.Status); idx >= pubIdx && idx != -1 {
		return nil, fmt.Errorf("%w: content is locked once published", apperrors.ErrInvalidTransition)
	}

	order.Briefing = req.Briefing
	order.AnchorText = req.AnchorText
	order.TargetURL = req.TargetURL
	order.UpdatedAt = time.Now()

	if err := s.DB.UpdateOrderContent(*order); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishOrderContentUpdated(*order); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("publish content update failed: %v", err))
		}
	}

	return order, nil
}

// ListOrders returns the caller's own orders: buyers see what they bought,
// publishers see what they fulfil.
func (s *OrderService) ListOrders(actor models.Actor) ([]models.Order, error) {
	if actor.HasRole(models.RolePublisher) {
		orders, err := s.DB.GetOrdersByPublisher(actor.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
		}
		return orders, nil
	}
	orders, err := s.DB.GetOrdersByBuyer(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return orders, nil
}

func (s *OrderService) loadOrder(id string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %s", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return order, nil
}

func transitionAllowed(from, to string) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
