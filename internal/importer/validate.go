package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ms-linkmarket/internal/models"
)

// Price bounds, inclusive.
const (
	MinPrice = 0
	MaxPrice = 1_000_000
)

// NormalizeDomain strips leading schemes and www prefixes, lower-cases and
// trims. Trimming repeats until the string is stable, so normalization is
// idempotent even for inputs like "www.www.example.com" or "example.com//".
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	for {
		prev := d
		d = strings.TrimPrefix(d, "http://")
		d = strings.TrimPrefix(d, "https://")
		d = strings.TrimPrefix(d, "www.")
		d = strings.TrimSuffix(d, "/")
		d = strings.TrimSpace(d)
		if d == prev {
			return d
		}
	}
}

// currency symbols and thousands separators stripped before price parsing
var priceStrip = strings.NewReplacer(
	",", "", " ", "", " ", "",
	"€", "", "$", "", "£", "", "¥", "",
)

// ParsePrice coerces a raw price cell to a float. Thousands separators and
// currency symbols are tolerated; the result must be a finite number within
// [MinPrice, MaxPrice].
func ParsePrice(raw string) (float64, error) {
	cleaned := priceStrip.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, fmt.Errorf("price is required")
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q is not a number", raw)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("price %q is not a finite number", raw)
	}
	if price < MinPrice || price > MaxPrice {
		return 0, fmt.Errorf("price %v is out of range [%d, %d]", price, MinPrice, MaxPrice)
	}

	return price, nil
}

// enumColumns are optional but constrained when present.
var enumColumns = []struct {
	name    string
	allowed []string
}{
	{"accepts_no_license_status", models.LicenseValues},
	{"sponsor_tag_status", models.SponsorTagValues},
	{"sponsor_tag_type", models.SponsorTagTypeValues},
}

// checkRow runs the shared domain, price and enum checks on one row and
// returns the normalized domain and parsed price.
func checkRow(row Row) (domain string, price float64, err error) {
	rawDomain := strings.TrimSpace(row.Get("domain"))
	if rawDomain == "" {
		return "", 0, fmt.Errorf("domain is required")
	}
	domain = NormalizeDomain(rawDomain)
	if len(domain) < 3 {
		return domain, 0, fmt.Errorf("domain %q is too short after normalization", domain)
	}

	price, err = ParsePrice(row.Get("price"))
	if err != nil {
		return domain, 0, err
	}

	for _, col := range enumColumns {
		raw := strings.TrimSpace(row.Get(col.name))
		if raw == "" {
			continue
		}
		if _, ok := models.ParseEnum(raw, col.allowed); !ok {
			return domain, 0, fmt.Errorf("invalid %s %q: allowed values are %s",
				col.name, raw, strings.Join(col.allowed, ", "))
		}
	}

	return domain, price, nil
}

// Validate is the dry run: each row is checked independently and nothing is
// persisted. Skipped stays 0 here; duplicate domains are only decided at
// commit time, though repeats within the batch are flagged as warnings.
func Validate(rows []Row) *Summary {
	summary := &Summary{}
	seen := make(map[string]int)

	for _, row := range rows {
		result := RowResult{Row: row.Line}

		domain, _, err := checkRow(row)
		result.Domain = domain
		if err != nil {
			result.Error = err.Error()
			summary.add(result)
			continue
		}

		if first, dup := seen[domain]; dup {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("domain %s repeats row %d and will be skipped at commit", domain, first))
		} else {
			seen[domain] = row.Line
		}

		result.Success = true
		summary.add(result)
	}

	return summary
}
