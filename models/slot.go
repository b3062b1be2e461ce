package models

import "time"

// Windows is the fixed set of bookable time windows per day.
var Windows = []string{
	"09:00-10:00",
	"10:00-11:00",
	"11:00-12:00",
	"13:00-14:00",
	"14:00-15:00",
}

// IsValidWindow reports whether w is one of the bookable windows.
func IsValidWindow(w string) bool {
	for _, win := range Windows {
		if w == win {
			return true
		}
	}
	return false
}

// SlotKey identifies a slot by calendar date and time window.
type SlotKey struct {
	Date   string `json:"date"`   // "YYYY-MM-DD"
	Window string `json:"window"` // e.g., "09:00-10:00"
}

// String returns the composite document identifier, e.g. "2025-06-01_09:00-10:00".
func (k SlotKey) String() string {
	return k.Date + "_" + k.Window
}

// Slot tracks booked units against capacity for one (date, window) pair.
// Slots are created lazily on the first booking and never deleted.
type Slot struct {
	Date        string    `bson:"date" json:"date"`
	Window      string    `bson:"window" json:"window"`
	Capacity    int       `bson:"capacity" json:"capacity"`
	BookedCount int       `bson:"bookedCount" json:"bookedCount"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Key returns the slot's composite key.
func (s Slot) Key() SlotKey {
	return SlotKey{Date: s.Date, Window: s.Window}
}

// Remaining returns how many units are still bookable.
func (s Slot) Remaining() int {
	r := s.Capacity - s.BookedCount
	if r < 0 {
		return 0
	}
	return r
}
