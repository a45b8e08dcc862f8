package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Canonical order statuses, in lifecycle order. Rejected sits outside the
// forward sequence and is reachable only from requested/accepted.
const (
	StatusRequested       = "requested"
	StatusAccepted        = "accepted"
	StatusContentReceived = "content_received"
	StatusPublished       = "published"
	StatusVerified        = "verified"
	StatusRejected        = "rejected"
)

// StatusSequence is the forward path an order moves through.
var StatusSequence = []string{
	StatusRequested,
	StatusAccepted,
	StatusContentReceived,
	StatusPublished,
	StatusVerified,
}

// StatusIndex returns the position of a status in the forward sequence,
// or -1 for rejected/unknown values.
func StatusIndex(status string) int {
	for i, s := range StatusSequence {
		if s == status {
			return i
		}
	}
	return -1
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID     string `bun:"order_id,pk" json:"order_id"`
	BuyerID     string `bun:"buyer_id,notnull" json:"buyer_id"`
	PublisherID string `bun:"publisher_id,notnull" json:"publisher_id"`
	OutletID    string `bun:"outlet_id,notnull" json:"outlet_id"`
	NicheID     string `bun:"niche_id,nullzero" json:"niche_id,omitempty"`

	Status   string `bun:"status,notnull" json:"status"`
	Currency string `bun:"currency,notnull" json:"currency"`

	// FinalPrice is BasePrice * PriceMultiplier frozen at order creation.
	BasePrice       float64 `bun:"base_price,notnull" json:"base_price"`
	PriceMultiplier float64 `bun:"price_multiplier,notnull" json:"price_multiplier"`
	FinalPrice      float64 `bun:"final_price,notnull" json:"final_price"`

	Briefing   string `bun:"briefing,nullzero" json:"briefing,omitempty"`
	AnchorText string `bun:"anchor_text,nullzero" json:"anchor_text,omitempty"`
	TargetURL  string `bun:"target_url,nullzero" json:"target_url,omitempty"`

	PublicationURL  string     `bun:"publication_url,nullzero" json:"publication_url,omitempty"`
	PublicationDate *time.Time `bun:"publication_date,nullzero" json:"publication_date,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// PlaceOrderRequest is the checkout payload from the buyer.
type PlaceOrderRequest struct {
	OutletID   string `json:"outlet_id"`
	NicheID    string `json:"niche_id,omitempty"`
	Briefing   string `json:"briefing,omitempty"`
	AnchorText string `json:"anchor_text,omitempty"`
	TargetURL  string `json:"target_url,omitempty"`
}

// PlaceOrderResponse carries the created order plus the payment redirect.
type PlaceOrderResponse struct {
	Order       *Order `json:"order"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// StatusUpdateRequest is the publisher/admin transition payload.
type StatusUpdateRequest struct {
	Status         string `json:"status"`
	PublicationURL string `json:"publication_url,omitempty"`
}

// ContentUpdateRequest is the buyer/admin content edit payload.
type ContentUpdateRequest struct {
	Briefing   string `json:"briefing"`
	AnchorText string `json:"anchor_text"`
	TargetURL  string `json:"target_url"`
}
