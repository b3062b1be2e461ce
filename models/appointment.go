package models

import "time"

// AppointmentStatus enumerates the appointment lifecycle states.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusPaid      AppointmentStatus = "PAID"
	StatusApproved  AppointmentStatus = "APPROVED"
	StatusRejected  AppointmentStatus = "REJECTED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

// Terminal reports whether the status frees the appointment's slot unit and
// permits rebooking of the same appointment key.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// CanTransition reports whether the status machine allows from → to.
// Forward path is PENDING → PAID → APPROVED; both terminal states are
// reachable from any non-terminal state.
func CanTransition(from, to AppointmentStatus) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case StatusPaid:
		return from == StatusPending
	case StatusApproved:
		return from == StatusPaid
	case StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// AppointmentID derives the deterministic document key for a booking, so that
// duplicate attempts for the same user and slot collide on write.
func AppointmentID(uid, date, window string) string {
	return uid + "_" + date + "_" + window
}

// Appointment is a user's booking for one (date, window) slot.
//
// LedgerSlot is the key of the slot whose bookedCount currently carries this
// appointment's unit; it is the idempotency anchor for the change-notification
// mirrors. Empty means no ledger unit is held.
type Appointment struct {
	ID                 string            `bson:"id" json:"id"`
	UserID             string            `bson:"userId" json:"userId"`
	Date               string            `bson:"date" json:"date"`
	Window             string            `bson:"window" json:"window"`
	Status             AppointmentStatus `bson:"status" json:"status"`
	PaymentMethod      string            `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	VerifiedByFunction bool              `bson:"verifiedByFunction" json:"verifiedByFunction"`
	VerifiedAt         *time.Time        `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	LedgerSlot         string            `bson:"ledgerSlot,omitempty" json:"ledgerSlot,omitempty"`
	CreatedAt          time.Time         `bson:"createdAt" json:"createdAt"`
	LastRescheduledAt  *time.Time        `bson:"lastRescheduledAt,omitempty" json:"lastRescheduledAt,omitempty"`
}

// SlotKey returns the slot the appointment is currently scheduled into.
func (a Appointment) SlotKey() SlotKey {
	return SlotKey{Date: a.Date, Window: a.Window}
}

// Active reports whether the appointment occupies ledger capacity.
func (a Appointment) Active() bool {
	return !a.Status.Terminal()
}
