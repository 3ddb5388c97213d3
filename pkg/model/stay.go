package model

import (
	"time"
)

// StaySegment is one leg of a requested stay: a resource and the half-open
// day range it should cover. Dates arrive as RFC3339 and are normalized to
// UTC midnight before admission.
type StaySegment struct {
	ResourceID string    `json:"resource_id" validate:"required,mongodb"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// StayRequest asks for admission of a full guest journey. A single-unit stay
// has one segment; a split stay has several contiguous segments across
// different resources.
type StayRequest struct {
	GuestID  string        `json:"guest_id" validate:"required,min=2,max=100"`
	Segments []StaySegment `json:"segments" validate:"required,min=1,max=8,dive"`
}

// Stay is the admitted result: one reservation per segment sharing a stay id.
type Stay struct {
	ID           string         `json:"id"`
	GuestID      string         `json:"guest_id"`
	Reservations []*Reservation `json:"reservations"`
	CreatedAt    time.Time      `json:"created_at"`
}
