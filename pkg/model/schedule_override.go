package model

import (
	"time"
)

// ScheduleOverride is a date-ranged, prioritized exception to a pass's base
// capacity ceiling. The range [start_date, end_date] is inclusive on both
// ends, unlike reservation ranges. A nil MaxCapacity keeps the base ceiling
// and exists only to mark the range.
type ScheduleOverride struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PassID      string    `json:"pass_id" bson:"pass_id" validate:"required,mongodb"`
	StartDate   time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" bson:"end_date" validate:"required,gtefield=StartDate"`
	MaxCapacity *int      `json:"max_capacity,omitempty" bson:"max_capacity,omitempty" validate:"omitempty,min=0,max=500"`
	Priority    int       `json:"priority" bson:"priority" validate:"min=0,max=1000"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Covers reports whether the inclusive override range contains day d.
func (o *ScheduleOverride) Covers(d time.Time) bool {
	return !d.Before(o.StartDate) && !d.After(o.EndDate)
}

// SpanDays is the number of days the override covers, used as a tie-break:
// narrower overrides beat wider ones at equal priority.
func (o *ScheduleOverride) SpanDays() int {
	return int(o.EndDate.Sub(o.StartDate).Hours()/24) + 1
}
