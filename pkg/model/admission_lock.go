package model

import "time"

// AdmissionLock is an advisory lock serializing admission attempts for one
// resource or one pass. Acquisition is an insert with a deterministic _id;
// a duplicate key error means another attempt holds the key. ExpiresAt is
// TTL-indexed so crashed holders cannot wedge a key forever.
type AdmissionLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
