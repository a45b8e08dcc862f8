package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Listing is the marketplace-visible, orderable representation of an
// approved outlet. Created inactive by the import pipeline and flipped on
// once the outlet passes admin review.
type Listing struct {
	bun.BaseModel `bun:"table:listings"`

	ListingID string    `bun:"listing_id,pk" json:"listing_id"`
	OutletID  string    `bun:"outlet_id,unique,notnull" json:"outlet_id"`
	IsActive  bool      `bun:"is_active,notnull,default:false" json:"is_active"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}
