package service

import (
	"sort"
	"time"

	"stayworks/internal/interval"
	"stayworks/pkg/model"
)

const (
	CeilingSourceBase     = "base"
	CeilingSourceOverride = "override"

	ReasonNotYetAvailable   = "not_yet_available"
	ReasonNoLongerAvailable = "no_longer_available"
)

// Ceiling is the resolved admission limit for one pass on one day.
type Ceiling struct {
	Limited    bool   `json:"limited"`
	Max        int    `json:"max,omitempty"`
	Source     string `json:"source"`
	OverrideID string `json:"override_id,omitempty"`
}

// Admits reports whether a day with the given live demand can accept one
// more booking under this ceiling.
func (c Ceiling) Admits(demand int64) bool {
	return !c.Limited || demand < int64(c.Max)
}

// ResolveCeiling picks the capacity limit in force for the day. The winning
// override is the active one covering the day with the highest priority;
// ties go to the narrower date span, then the most recently created. An
// override without a max keeps the base ceiling in force.
func ResolveCeiling(pass *model.Pass, overrides []*model.ScheduleOverride, day time.Time) Ceiling {
	day = interval.Normalize(day)

	var covering []*model.ScheduleOverride
	for _, o := range overrides {
		if o.IsActive && o.PassID == pass.ID && o.Covers(day) {
			covering = append(covering, o)
		}
	}

	sort.SliceStable(covering, func(i, j int) bool {
		if covering[i].Priority != covering[j].Priority {
			return covering[i].Priority > covering[j].Priority
		}
		if covering[i].SpanDays() != covering[j].SpanDays() {
			return covering[i].SpanDays() < covering[j].SpanDays()
		}
		if !covering[i].CreatedAt.Equal(covering[j].CreatedAt) {
			return covering[i].CreatedAt.After(covering[j].CreatedAt)
		}
		return covering[i].ID < covering[j].ID
	})

	for _, o := range covering {
		if o.MaxCapacity != nil {
			return Ceiling{
				Limited:    true,
				Max:        *o.MaxCapacity,
				Source:     CeilingSourceOverride,
				OverrideID: o.ID,
			}
		}
		// The winner marks the range without changing the limit; lower
		// priority overrides do not get a say.
		break
	}

	if pass.Unlimited() {
		return Ceiling{Limited: false, Source: CeilingSourceBase}
	}
	return Ceiling{Limited: true, Max: *pass.BaseMaxCapacity, Source: CeilingSourceBase}
}

// InOfferWindow reports whether a date-restricted pass may be booked for the
// day. Both window bounds are inclusive; a nil bound leaves that side open.
func InOfferWindow(pass *model.Pass, day time.Time) bool {
	if !pass.IsDateRestricted {
		return true
	}
	day = interval.Normalize(day)
	if pass.AvailableFrom != nil && day.Before(interval.Normalize(*pass.AvailableFrom)) {
		return false
	}
	if pass.AvailableUntil != nil && day.After(interval.Normalize(*pass.AvailableUntil)) {
		return false
	}
	return true
}

// OfferWindowReason names which side of the offer window the day misses.
// Only meaningful for a day InOfferWindow rejected.
func OfferWindowReason(pass *model.Pass, day time.Time) string {
	day = interval.Normalize(day)
	if pass.AvailableFrom != nil && day.Before(interval.Normalize(*pass.AvailableFrom)) {
		return ReasonNotYetAvailable
	}
	return ReasonNoLongerAvailable
}
