package model

import (
	"time"
)

// Pass is a coworking capacity pool. BaseMaxCapacity is the default ceiling;
// nil together with IsCapacityLimited=false means unlimited. CurrentCapacity
// is a display cache refreshed by reconciliation and is never consulted for
// admission decisions.
type Pass struct {
	ID                string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name              string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	PriceCents        int64      `json:"price_cents" bson:"price_cents" validate:"required,min=1"`
	DurationDays      int        `json:"duration_days" bson:"duration_days" validate:"required,oneof=1 7 30"`
	BaseMaxCapacity   *int       `json:"base_max_capacity,omitempty" bson:"base_max_capacity,omitempty" validate:"omitempty,min=1,max=500"`
	IsCapacityLimited bool       `json:"is_capacity_limited" bson:"is_capacity_limited"`
	IsDateRestricted  bool       `json:"is_date_restricted" bson:"is_date_restricted"`
	AvailableFrom     *time.Time `json:"available_from,omitempty" bson:"available_from,omitempty"`
	AvailableUntil    *time.Time `json:"available_until,omitempty" bson:"available_until,omitempty"`
	CurrentCapacity   int        `json:"current_capacity" bson:"current_capacity" validate:"omitempty,min=0"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Unlimited reports whether the pass base ceiling admits regardless of demand.
func (p *Pass) Unlimited() bool {
	return !p.IsCapacityLimited || p.BaseMaxCapacity == nil
}
