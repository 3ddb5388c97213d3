package model

import (
	"time"
)

const (
	ResourceAvailable   = "available"
	ResourceUnavailable = "unavailable"
)

// Resource is a bookable apartment unit. Status is flipped by operators;
// an unavailable resource is never offerable regardless of its calendar.
type Resource struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title      string    `json:"title" bson:"title" validate:"required,min=2,max=100"`
	PriceCents int64     `json:"price_cents" bson:"price_cents" validate:"required,min=1"`
	Capacity   int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=20"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=available unavailable"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (r *Resource) Offerable() bool {
	return r.Status == ResourceAvailable
}
