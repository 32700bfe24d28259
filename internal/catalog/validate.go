package catalog

import (
	"sort"
	"strings"
)

// Violation messages mirror the public API contract and must not change
// without versioning the API. The list filter's year message lives with
// the HTTP layer; these four cover the record fields.
const (
	violationNameBlank   = "name must not be blank"
	violationYearInvalid = "year must be a positive number"
	violationCastBlank   = "cast must not be blank"
	violationDateMissing = "releaseDate cannot be null"
)

// Validate checks a candidate record against all field constraints and
// returns the violations sorted alphabetically, or nil when the record is
// valid. Every rule runs; nothing short-circuits, so a single response
// carries every problem at once.
//
// Rules: name non-blank, year strictly positive, every cast entry non-blank
// (an empty cast list is allowed), releaseDate present. ID is not validated:
// it is assigned by the store, not the client.
func Validate(m MovieInfo) []string {
	var violations []string

	if strings.TrimSpace(m.Name) == "" {
		violations = append(violations, violationNameBlank)
	}
	if m.Year <= 0 {
		violations = append(violations, violationYearInvalid)
	}
	for _, member := range m.Cast {
		if strings.TrimSpace(member) == "" {
			violations = append(violations, violationCastBlank)
			break
		}
	}
	if m.ReleaseDate.IsZero() {
		violations = append(violations, violationDateMissing)
	}

	sort.Strings(violations)
	return violations
}
