package importer

import "fmt"

// RowResult is the per-row outcome of one validation or commit pass.
// Row numbers are 1-based and match input order. Skipped (duplicate domain)
// is a distinct outcome from failure.
type RowResult struct {
	Row      int      `json:"row"`
	Domain   string   `json:"domain,omitempty"`
	Success  bool     `json:"success"`
	Skipped  bool     `json:"skipped,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	OutletID string   `json:"outlet_id,omitempty"`
}

// Summary is the full report of one import phase. The phase itself always
// completes; row failures never abort the batch.
type Summary struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	Rows      []RowResult `json:"rows"`
}

func (s *Summary) add(r RowResult) {
	switch {
	case r.Skipped:
		s.Skipped++
	case r.Success:
		s.Succeeded++
	default:
		s.Failed++
	}
	s.Rows = append(s.Rows, r)
}

// FailureDetails returns up to max failure messages plus the count of
// failures beyond the cap, for compact user-facing reports.
func (s *Summary) FailureDetails(max int) ([]string, int) {
	var details []string
	remainder := 0
	for _, r := range s.Rows {
		if r.Success || r.Skipped {
			continue
		}
		if len(details) < max {
			details = append(details, fmt.Sprintf("row %d (%s): %s", r.Row, r.Domain, r.Error))
		} else {
			remainder++
		}
	}
	return details, remainder
}
