package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ms-linkmarket/internal/models"
)

// Recognized metric columns and their inclusive bounds. Out-of-bounds or
// unparseable values become warnings and null fields, never row failures.
var metricBounds = []struct {
	column string
	min    float64
	max    float64
	assign func(*models.OutletMetrics, *float64)
}{
	{"authority_score", 0, 100, func(m *models.OutletMetrics, v *float64) { m.AuthorityScore = v }},
	{"domain_authority", 0, 100, func(m *models.OutletMetrics, v *float64) { m.DomainAuthority = v }},
	{"alt_authority_score", 0, 100, func(m *models.OutletMetrics, v *float64) { m.AltAuthorityScore = v }},
	{"spam_score", 0, 100, func(m *models.OutletMetrics, v *float64) { m.SpamScore = v }},
	{"organic_traffic", 0, 1e12, func(m *models.OutletMetrics, v *float64) { m.OrganicTraffic = v }},
	{"referring_domains", 0, 1e9, func(m *models.OutletMetrics, v *float64) { m.ReferringDomains = v }},
}

// ValidateMetrics coerces the recognized metric columns of a row into a
// metrics record. It returns the record plus human-readable warnings for
// every value it had to drop.
func ValidateMetrics(row Row) (models.OutletMetrics, []string) {
	var metrics models.OutletMetrics
	var warnings []string

	for _, bound := range metricBounds {
		raw := strings.TrimSpace(row.Get(bound.column))
		if raw == "" {
			continue
		}

		cleaned := strings.ReplaceAll(strings.ReplaceAll(raw, ",", ""), " ", "")
		value, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			warnings = append(warnings, fmt.Sprintf("%s %q is not a number, dropped", bound.column, raw))
			continue
		}
		if value < bound.min || value > bound.max {
			warnings = append(warnings, fmt.Sprintf("%s %v is outside [%v, %v], dropped",
				bound.column, value, bound.min, bound.max))
			continue
		}

		v := value
		bound.assign(&metrics, &v)
	}

	return metrics, warnings
}
