package model

import (
	"time"
)

const (
	ReservationConfirmed  = "confirmed"
	ReservationCheckedIn  = "checked_in"
	ReservationCheckedOut = "checked_out"
	ReservationCancelled  = "cancelled"
)

// Reservation occupies a resource for the half-open day range
// [start_date, end_date). Dates are UTC midnights; a checkout day may be
// another reservation's checkin day.
type Reservation struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ResourceID string    `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	StayID     string    `json:"stay_id" bson:"stay_id" validate:"required,uuid4"`
	GuestID    string    `json:"guest_id" bson:"guest_id" validate:"required,min=2,max=100"`
	StartDate  time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	State      string    `json:"state" bson:"state" validate:"required,oneof=confirmed checked_in checked_out cancelled"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Occupies reports whether the reservation blocks its day range.
// Cancelled and checked-out reservations free their days.
func (r *Reservation) Occupies() bool {
	return r.State == ReservationConfirmed || r.State == ReservationCheckedIn
}
