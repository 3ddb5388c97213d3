package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stayworks/internal/interval"
	"stayworks/pkg/model"
)

const resolverPassID = "64f1b2a3c4d5e6f7a8b9c1a1"

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func basePass(base *int) *model.Pass {
	return &model.Pass{
		ID:                resolverPassID,
		Name:              "Hot Desk Day Pass",
		PriceCents:        2500,
		DurationDays:      1,
		BaseMaxCapacity:   base,
		IsCapacityLimited: base != nil,
	}
}

func override(id string, start, end string, max *int, priority int, createdAt string) *model.ScheduleOverride {
	return &model.ScheduleOverride{
		ID:          id,
		PassID:      resolverPassID,
		StartDate:   interval.MustDate(start),
		EndDate:     interval.MustDate(end),
		MaxCapacity: max,
		Priority:    priority,
		IsActive:    true,
		CreatedAt:   interval.MustDate(createdAt),
	}
}

func TestResolveCeiling_BaseWhenNoOverrides(t *testing.T) {
	c := ResolveCeiling(basePass(intPtr(20)), nil, interval.MustDate("2025-07-01"))

	assert.True(t, c.Limited)
	assert.Equal(t, 20, c.Max)
	assert.Equal(t, CeilingSourceBase, c.Source)
}

func TestResolveCeiling_UnlimitedBase(t *testing.T) {
	c := ResolveCeiling(basePass(nil), nil, interval.MustDate("2025-07-01"))

	assert.False(t, c.Limited)
	assert.Equal(t, CeilingSourceBase, c.Source)
}

func TestResolveCeiling_OverrideWins(t *testing.T) {
	overrides := []*model.ScheduleOverride{
		override("ov-1", "2025-07-01", "2025-07-31", intPtr(5), 10, "2025-06-01"),
	}

	c := ResolveCeiling(basePass(intPtr(20)), overrides, interval.MustDate("2025-07-15"))
	assert.True(t, c.Limited)
	assert.Equal(t, 5, c.Max)
	assert.Equal(t, CeilingSourceOverride, c.Source)
	assert.Equal(t, "ov-1", c.OverrideID)

	// A day outside the override range keeps the base ceiling.
	c = ResolveCeiling(basePass(intPtr(20)), overrides, interval.MustDate("2025-08-01"))
	assert.Equal(t, 20, c.Max)
	assert.Equal(t, CeilingSourceBase, c.Source)
}

func TestResolveCeiling_HigherPriorityWins(t *testing.T) {
	overrides := []*model.ScheduleOverride{
		override("ov-low", "2025-07-01", "2025-07-31", intPtr(10), 1, "2025-06-01"),
		override("ov-high", "2025-07-01", "2025-07-31", intPtr(3), 9, "2025-05-01"),
	}

	c := ResolveCeiling(basePass(intPtr(20)), overrides, interval.MustDate("2025-07-10"))
	assert.Equal(t, 3, c.Max)
	assert.Equal(t, "ov-high", c.OverrideID)
}

func TestResolveCeiling_NarrowerSpanBreaksPriorityTie(t *testing.T) {
	overrides := []*model.ScheduleOverride{
		override("ov-month", "2025-07-01", "2025-07-31", intPtr(10), 5, "2025-06-01"),
		override("ov-week", "2025-07-07", "2025-07-13", intPtr(4), 5, "2025-05-01"),
	}

	c := ResolveCeiling(basePass(intPtr(20)), overrides, interval.MustDate("2025-07-10"))
	assert.Equal(t, 4, c.Max)
	assert.Equal(t, "ov-week", c.OverrideID)
}

func TestResolveCeiling_NewerBreaksFullTie(t *testing.T) {
	overrides := []*model.ScheduleOverride{
		override("ov-old", "2025-07-01", "2025-07-31", intPtr(10), 5, "2025-06-01"),
		override("ov-new", "2025-07-01", "2025-07-31", intPtr(6), 5, "2025-06-15"),
	}

	c := ResolveCeiling(basePass(intPtr(20)), overrides, interval.MustDate("2025-07-10"))
	assert.Equal(t, 6, c.Max)
	assert.Equal(t, "ov-new", c.OverrideID)
}

func TestResolveCeiling_NilMaxKeepsBase(t *testing.T) {
	// The winning override marks the range without a limit; the base
	// applies and lower priority overrides are not consulted.
	overrides := []*model.ScheduleOverride{
		override("ov-marker", "2025-07-01", "2025-07-31", nil, 9, "2025-06-01"),
		override("ov-low", "2025-07-01", "2025-07-31", intPtr(2), 1, "2025-06-01"),
	}

	c := ResolveCeiling(basePass(intPtr(20)), overrides, interval.MustDate("2025-07-10"))
	assert.Equal(t, 20, c.Max)
	assert.Equal(t, CeilingSourceBase, c.Source)
}

func TestResolveCeiling_IgnoresInactive(t *testing.T) {
	ov := override("ov-1", "2025-07-01", "2025-07-31", intPtr(2), 9, "2025-06-01")
	ov.IsActive = false

	c := ResolveCeiling(basePass(intPtr(20)), []*model.ScheduleOverride{ov}, interval.MustDate("2025-07-10"))
	assert.Equal(t, 20, c.Max)
	assert.Equal(t, CeilingSourceBase, c.Source)
}

func TestResolveCeiling_InclusiveBounds(t *testing.T) {
	overrides := []*model.ScheduleOverride{
		override("ov-1", "2025-07-01", "2025-07-31", intPtr(5), 5, "2025-06-01"),
	}
	pass := basePass(intPtr(20))

	assert.Equal(t, 5, ResolveCeiling(pass, overrides, interval.MustDate("2025-07-01")).Max)
	assert.Equal(t, 5, ResolveCeiling(pass, overrides, interval.MustDate("2025-07-31")).Max)
	assert.Equal(t, 20, ResolveCeiling(pass, overrides, interval.MustDate("2025-08-01")).Max)
}

func TestCeilingAdmits(t *testing.T) {
	assert.True(t, Ceiling{Limited: false}.Admits(1_000_000))
	assert.True(t, Ceiling{Limited: true, Max: 5}.Admits(4))
	assert.False(t, Ceiling{Limited: true, Max: 5}.Admits(5))
	assert.False(t, Ceiling{Limited: true, Max: 0}.Admits(0))
}

func TestInOfferWindow(t *testing.T) {
	open := basePass(intPtr(10))
	assert.True(t, InOfferWindow(open, interval.MustDate("1999-01-01")))

	restricted := basePass(intPtr(10))
	restricted.IsDateRestricted = true
	restricted.AvailableFrom = timePtr(interval.MustDate("2025-08-01"))
	restricted.AvailableUntil = timePtr(interval.MustDate("2025-08-31"))

	assert.False(t, InOfferWindow(restricted, interval.MustDate("2025-07-31")))
	assert.True(t, InOfferWindow(restricted, interval.MustDate("2025-08-01")))
	assert.True(t, InOfferWindow(restricted, interval.MustDate("2025-08-31")))
	assert.False(t, InOfferWindow(restricted, interval.MustDate("2025-09-01")))

	halfOpen := basePass(intPtr(10))
	halfOpen.IsDateRestricted = true
	halfOpen.AvailableFrom = timePtr(interval.MustDate("2025-08-01"))
	assert.True(t, InOfferWindow(halfOpen, interval.MustDate("2030-01-01")))
}
