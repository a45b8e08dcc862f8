package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Outlet review statuses. An outlet starts pending and only an admin moves it.
const (
	OutletStatusPending  = "pending"
	OutletStatusApproved = "approved"
	OutletStatusRejected = "rejected"
)

// Tri-state for "accepts content without a license disclosure".
const (
	LicenseYes     = "yes"
	LicenseNo      = "no"
	LicenseDepends = "depends"
)

// Sponsor tag handling.
const (
	SponsorTagYes = "yes"
	SponsorTagNo  = "no"

	SponsorTagTypeText  = "text"
	SponsorTagTypeImage = "image"
)

var (
	LicenseValues        = []string{LicenseYes, LicenseNo, LicenseDepends}
	SponsorTagValues     = []string{SponsorTagYes, SponsorTagNo}
	SponsorTagTypeValues = []string{SponsorTagTypeText, SponsorTagTypeImage}
)

// ParseEnum matches value against allowed case-insensitively and returns the
// canonical lower-cased form. ok is false when the value is absent or invalid.
func ParseEnum(value string, allowed []string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return a, true
		}
	}
	return "", false
}

type MediaOutlet struct {
	bun.BaseModel `bun:"table:media_outlets"`

	OutletID string `bun:"outlet_id,pk" json:"outlet_id"`
	// Domain is stored normalized (scheme and www stripped, lower case)
	// and is unique across the marketplace.
	Domain string `bun:"domain,unique,notnull" json:"domain"`

	// Price is the admin-set selling price; null until review adds a margin
	// over the publisher's asking price.
	Price         *float64 `bun:"price,nullzero" json:"price,omitempty"`
	PurchasePrice float64  `bun:"purchase_price,notnull" json:"purchase_price"`
	Currency      string   `bun:"currency,notnull" json:"currency"`

	Country  string   `bun:"country,nullzero" json:"country,omitempty"`
	Language string   `bun:"language,nullzero" json:"language,omitempty"`
	Category string   `bun:"category,nullzero" json:"category,omitempty"`
	Niches   []string `bun:"niches,array" json:"niches,omitempty"`

	Guidelines   string `bun:"guidelines,nullzero" json:"guidelines,omitempty"`
	LeadTimeDays int    `bun:"lead_time_days,notnull" json:"lead_time_days"`

	AcceptsNoLicense string `bun:"accepts_no_license_status,notnull" json:"accepts_no_license_status"`
	SponsorTagStatus string `bun:"sponsor_tag_status,notnull" json:"sponsor_tag_status"`
	SponsorTagType   string `bun:"sponsor_tag_type,notnull" json:"sponsor_tag_type"`

	Source      string    `bun:"source,nullzero" json:"source,omitempty"`
	PublisherID string    `bun:"publisher_id,notnull" json:"publisher_id"`
	Status      string    `bun:"status,notnull" json:"status"`
	SubmittedBy string    `bun:"submitted_by,notnull" json:"submitted_by"`
	SubmittedAt time.Time `bun:"submitted_at,notnull,default:current_timestamp" json:"submitted_at"`
	IsActive    bool      `bun:"is_active,notnull,default:false" json:"is_active"`
}

// Orderable reports whether the outlet may appear in the marketplace.
func (o *MediaOutlet) Orderable() bool {
	return o.Status == OutletStatusApproved && o.IsActive
}

// MarketplaceFilter narrows the browse query. Zero values mean "no filter".
type MarketplaceFilter struct {
	Country  string   `json:"country,omitempty"`
	Language string   `json:"language,omitempty"`
	Category string   `json:"category,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	SortBy   string   `json:"sort_by,omitempty"` // price | domain | submitted_at
	SortDesc bool     `json:"sort_desc,omitempty"`
}
