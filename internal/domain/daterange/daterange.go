// Package daterange normalizes user-supplied date boundaries into a
// canonical inclusive-start / exclusive-end pair of UTC ISO-8601 timestamps.
package daterange

import (
	"fmt"
	"time"

	"github.com/auditscope/auditscope/internal/domain"
)

const dateOnly = "2006-01-02"

// Bounds holds the normalized range boundaries. An empty string means the
// side was absent and no predicate should be emitted for it.
type Bounds struct {
	Lower string
	Upper string
}

// Normalize converts optional from/to inputs into canonical UTC timestamps.
//
// A bare date lower bound maps to midnight UTC of that date. A bare date
// upper bound maps to midnight UTC of the following day, turning the
// inclusive "through this date" intent into an exclusive boundary: callers
// expect date_to=2025-09-30 to include all of September 30th. Full
// timestamps are re-rendered with a Z suffix and otherwise left alone.
func Normalize(from, to string) (Bounds, error) {
	lower, err := normalizeSide(from, false)
	if err != nil {
		return Bounds{}, err
	}
	upper, err := normalizeSide(to, true)
	if err != nil {
		return Bounds{}, err
	}
	return Bounds{Lower: lower, Upper: upper}, nil
}

func normalizeSide(in string, upper bool) (string, error) {
	if in == "" {
		return "", nil
	}

	if d, err := time.ParseInLocation(dateOnly, in, time.UTC); err == nil {
		if upper {
			d = d.AddDate(0, 0, 1)
		}
		return d.Format(time.RFC3339), nil
	}

	if t, err := time.Parse(time.RFC3339, in); err == nil {
		return t.UTC().Format(time.RFC3339Nano), nil
	}

	return "", fmt.Errorf("unrecognized date %q: %w", in, domain.ErrValidation)
}
