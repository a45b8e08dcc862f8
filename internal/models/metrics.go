package models

import (
	"time"

	"github.com/uptrace/bun"
)

// OutletMetrics holds third-party authority signals for one outlet (1:1).
// Only validated, non-null fields are ever persisted; the row is deleted
// together with its outlet.
type OutletMetrics struct {
	bun.BaseModel `bun:"table:outlet_metrics"`

	OutletID string `bun:"outlet_id,pk" json:"outlet_id"`

	AuthorityScore    *float64 `bun:"authority_score,nullzero" json:"authority_score,omitempty"`
	DomainAuthority   *float64 `bun:"domain_authority,nullzero" json:"domain_authority,omitempty"`
	AltAuthorityScore *float64 `bun:"alt_authority_score,nullzero" json:"alt_authority_score,omitempty"`
	SpamScore         *float64 `bun:"spam_score,nullzero" json:"spam_score,omitempty"`
	OrganicTraffic    *float64 `bun:"organic_traffic,nullzero" json:"organic_traffic,omitempty"`
	ReferringDomains  *float64 `bun:"referring_domains,nullzero" json:"referring_domains,omitempty"`

	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// HasValues reports whether any metric field is set.
func (m *OutletMetrics) HasValues() bool {
	return m.AuthorityScore != nil || m.DomainAuthority != nil ||
		m.AltAuthorityScore != nil || m.SpamScore != nil ||
		m.OrganicTraffic != nil || m.ReferringDomains != nil
}
