package importer_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-linkmarket/internal/importer"
)

func TestNormalizeDomain(t *testing.T) {
	cases := map[string]string{
		"https://www.TechDaily.com/": "techdaily.com",
		"http://example.com":         "example.com",
		"www.example.com":            "example.com",
		"  Example.COM  ":            "example.com",
		"sub.example.com/":           "sub.example.com",
		"www.www.example.com":        "example.com",
		"http://https://example.com": "example.com",
		"example.com//":              "example.com",
	}

	for input, want := range cases {
		assert.Equal(t, want, importer.NormalizeDomain(input), "input %q", input)
	}
}

func TestNormalizeDomainIdempotent(t *testing.T) {
	inputs := []string{
		"https://www.example.com/",
		"example.com",
		"WWW.Example.com",
		"www.www.example.com",
		"example.com//",
		"https://www.www.example.com///",
	}
	for _, input := range inputs {
		once := importer.NormalizeDomain(input)
		assert.Equal(t, once, importer.NormalizeDomain(once), "input %q", input)
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"250", 250, true},
		{"1,250.50", 1250.5, true},
		{"€450", 450, true},
		{"$ 99", 99, true},
		{"0", 0, true},
		{"1000000", 1_000_000, true},
		{"1000001", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tc := range cases {
		price, err := importer.ParsePrice(tc.raw)
		if tc.ok {
			assert.NoError(t, err, "raw %q", tc.raw)
			assert.Equal(t, tc.want, price, "raw %q", tc.raw)
		} else {
			assert.Error(t, err, "raw %q", tc.raw)
		}
	}
}

func validRow(line int, domain string) importer.Row {
	return importer.Row{
		Line: line,
		Fields: map[string]string{
			"domain":   domain,
			"price":    "250",
			"country":  "DE",
			"language": "en",
			"category": "Technology",
		},
	}
}

func TestValidateAllGood(t *testing.T) {
	summary := importer.Validate([]importer.Row{
		validRow(1, "one.example.com"),
		validRow(2, "two.example.com"),
	})

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)
}

func TestValidateReportsEachBadRow(t *testing.T) {
	rows := []importer.Row{
		validRow(1, "good.example.com"),
		validRow(2, ""),
		validRow(3, "also-good.example.com"),
	}
	rows[2].Fields["price"] = "not-a-price"

	summary := importer.Validate(rows)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	assert.Len(t, summary.Rows, 3)

	// Results keep input order, 1-indexed.
	for i, r := range summary.Rows {
		assert.Equal(t, i+1, r.Row)
	}
	assert.True(t, summary.Rows[0].Success)
	assert.Contains(t, summary.Rows[1].Error, "domain is required")
	assert.Contains(t, summary.Rows[2].Error, "not a number")
}

func TestValidateEnumMessageNamesFieldAndAllowedValues(t *testing.T) {
	row := validRow(1, "enum.example.com")
	row.Fields["accepts_no_license_status"] = "maybe"

	summary := importer.Validate([]importer.Row{row})

	assert.Equal(t, 1, summary.Failed)
	msg := summary.Rows[0].Error
	assert.Contains(t, msg, "accepts_no_license_status")
	assert.Contains(t, msg, `"maybe"`)
	assert.Contains(t, msg, "yes, no, depends")
}

func TestValidateEnumsAreCaseInsensitive(t *testing.T) {
	row := validRow(1, "enum.example.com")
	row.Fields["accepts_no_license_status"] = "Depends"
	row.Fields["sponsor_tag_status"] = "YES"
	row.Fields["sponsor_tag_type"] = "Image"

	summary := importer.Validate([]importer.Row{row})

	assert.Equal(t, 1, summary.Succeeded)
}

func TestValidateShortDomainAfterNormalization(t *testing.T) {
	summary := importer.Validate([]importer.Row{validRow(1, "https://www.ab/")})

	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, summary.Rows[0].Error, "too short")
}

func TestValidateWarnsOnIntraBatchDuplicate(t *testing.T) {
	summary := importer.Validate([]importer.Row{
		validRow(1, "dup.example.com"),
		validRow(2, "https://www.dup.example.com/"),
	})

	// Both rows pass the dry run; the repeat only carries a warning.
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Skipped)
	assert.Empty(t, summary.Rows[0].Warnings)
	assert.NotEmpty(t, summary.Rows[1].Warnings)
	assert.Contains(t, summary.Rows[1].Warnings[0], "dup.example.com")
}

func TestFailureDetailsCap(t *testing.T) {
	var rows []importer.Row
	for i := 1; i <= 15; i++ {
		row := validRow(i, fmt.Sprintf("bad%d.example.com", i))
		row.Fields["price"] = "not-a-price"
		rows = append(rows, row)
	}

	summary := importer.Validate(rows)
	assert.Equal(t, 15, summary.Failed)

	details, more := summary.FailureDetails(10)
	assert.Len(t, details, 10)
	assert.Equal(t, 5, more)
	assert.Contains(t, details[0], "row 1")
}
