package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INTERVAL - Half-open [Start, End) time slot
// =============================================================================

// Interval is a half-open time slot: Start is included, End is not.
// Back-to-back reservations ([9,10) then [10,11)) do not overlap.
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start.UTC(), End: end.UTC()}
}

// Validate checks the structural invariant Start < End.
func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidRequest)
	}
	return nil
}

// Overlaps reports whether two half-open intervals intersect:
// [a,b) and [c,d) overlap iff a < d && c < b.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Hours returns the exact fractional duration in hours as a decimal,
// so a 90-minute slot prices at 1.5 hours without float error.
func (iv Interval) Hours() decimal.Decimal {
	minutes := iv.End.Sub(iv.Start) / time.Minute
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}
