package model

import (
	"time"
)

const (
	PassBookingPending   = "pending"
	PassBookingConfirmed = "confirmed"
	PassBookingActive    = "active"
	PassBookingCompleted = "completed"
	PassBookingCancelled = "cancelled"
)

// PassBooking grants access to a pass for the fixed duration starting at
// StartDate. EndDate is derived at creation (StartDate + DurationDays,
// exclusive) so demand queries can filter on a stored range.
type PassBooking struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PassID       string    `json:"pass_id" bson:"pass_id" validate:"required,mongodb"`
	MemberID     string    `json:"member_id" bson:"member_id" validate:"required,min=2,max=100"`
	StartDate    time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	DurationDays int       `json:"duration_days" bson:"duration_days" validate:"required,min=1"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed active completed cancelled"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// CountsTowardDemand reports whether the booking consumes a capacity slot.
// Only cancellation releases the slot; completed bookings age out of demand
// because their occupied range no longer contains the queried date.
func (b *PassBooking) CountsTowardDemand() bool {
	return b.Status != PassBookingCancelled
}

// OccupiesDay reports whether day d falls inside the booking's occupied range.
func (b *PassBooking) OccupiesDay(d time.Time) bool {
	return !d.Before(b.StartDate) && d.Before(b.EndDate)
}

// PassBookingRequest asks for one admission against a pass starting at Date.
type PassBookingRequest struct {
	MemberID string    `json:"member_id" validate:"required,min=2,max=100"`
	Date     time.Time `json:"date" validate:"required"`
}
