package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pcm/club-engine/domain"
)

func slot(startHour, endHour int) domain.Interval {
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	return domain.NewInterval(day.Add(time.Duration(startHour)*time.Hour), day.Add(time.Duration(endHour)*time.Hour))
}

// =============================================================================
// OVERLAP TESTS
// =============================================================================

func TestInterval_BackToBack_NoOverlap(t *testing.T) {
	// GIVEN: Two adjacent slots [9,10) and [10,11)
	// WHEN: Checking overlap
	// THEN: They do not overlap; the shared boundary instant belongs to
	//       the later slot only

	a := slot(9, 10)
	b := slot(10, 11)

	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))
}

func TestInterval_PartialOverlap_Detected(t *testing.T) {
	a := slot(9, 11)
	b := slot(10, 12)

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
}

func TestInterval_Containment_Detected(t *testing.T) {
	outer := slot(9, 13)
	inner := slot(10, 11)

	assert.True(t, outer.Overlaps(inner))
	assert.True(t, inner.Overlaps(outer))
}

func TestInterval_Identical_Detected(t *testing.T) {
	a := slot(9, 10)
	b := slot(9, 10)

	assert.True(t, a.Overlaps(b))
}

func TestInterval_Disjoint_NoOverlap(t *testing.T) {
	a := slot(9, 10)
	b := slot(14, 15)

	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))
}

// =============================================================================
// VALIDATION AND PRICING
// =============================================================================

func TestInterval_Validate(t *testing.T) {
	assert.NoError(t, slot(9, 10).Validate())

	assert.ErrorIs(t, slot(10, 9).Validate(), domain.ErrInvalidRequest, "inverted slot")
	assert.ErrorIs(t, slot(9, 9).Validate(), domain.ErrInvalidRequest, "zero-length slot")
}

func TestInterval_Hours_FractionalSlot(t *testing.T) {
	// GIVEN: A 90-minute slot
	// WHEN: Computing the billable duration
	// THEN: Exactly 1.5 hours, no float drift

	start := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	iv := domain.NewInterval(start, start.Add(90*time.Minute))

	assert.True(t, iv.Hours().Equal(domain.MustMoney("1.5")), "got %s", iv.Hours())
}

func TestInterval_Hours_WholeSlot(t *testing.T) {
	iv := slot(9, 11)
	assert.True(t, iv.Hours().Equal(domain.MustMoney("2")))
}
