package loader

import "fmt"

// StructuralError is a fatal input problem: a missing top-level key, an empty
// record set or a required field absent from the export. A run that hits one
// produces no snapshot.
type StructuralError struct {
	Source string // "holdings", "transactions" or "performance"
	Field  string // missing key, column or path; empty when not field-specific
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s export: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("%s export: %s %q", e.Source, e.Reason, e.Field)
}

// Skip reasons recorded in Stats for dropped rows.
const (
	SkipEmptyScheme   = "empty_scheme"
	SkipZeroPosition  = "zero_position"
	SkipInvalidNumber = "invalid_number"
	SkipInvalidDate   = "invalid_date"
	SkipNonFinancial  = "non_financial"
	SkipNotRecord     = "not_a_record"
)

// Stats counts rows dropped per source and reason.
type Stats struct {
	Skipped map[string]int `json:"skipped"` // "source:reason" -> count
}

func (s *Stats) skip(source, reason string) {
	if s.Skipped == nil {
		s.Skipped = make(map[string]int)
	}
	s.Skipped[source+":"+reason]++
}

// Total returns the number of skipped rows across all sources.
func (s Stats) Total() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}
