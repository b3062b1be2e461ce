package models

import "time"

// UsernameReservation binds a globally unique handle to one account.
// The document key is the normalized handle itself.
type UsernameReservation struct {
	Username  string    `bson:"username" json:"username"`
	UID       string    `bson:"uid" json:"uid"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"` // denormalized for lookup
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
