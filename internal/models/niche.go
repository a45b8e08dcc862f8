package models

import "github.com/uptrace/bun"

// Niche is a topical tag with a pricing multiplier applied at checkout.
type Niche struct {
	bun.BaseModel `bun:"table:niches"`

	NicheID string `bun:"niche_id,pk" json:"niche_id"`
	Name    string `bun:"name,unique,notnull" json:"name"`
	// Multiplier scales an outlet's base price for orders in this niche.
	// Always >= 0; 1.0 means no adjustment.
	Multiplier float64 `bun:"multiplier,notnull,default:1" json:"multiplier"`
}
