package models

import "time"

// Role enumerates the account roles assigned at signup.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleCashier Role = "CASHIER"
	RoleAdmin   Role = "ADMIN"
	RoleGuest   Role = "GUEST"
)

// User is the role document written once per account-created event.
// The document key is the account uid.
type User struct {
	UID       string    `bson:"uid" json:"uid"`
	Email     string    `bson:"email" json:"email"`
	Role      Role      `bson:"role" json:"role"`
	FCMToken  string    `bson:"fcmToken,omitempty" json:"fcmToken,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Clearance holds a student's permit document reference.
// The document key is the account uid.
type Clearance struct {
	UID             string     `bson:"uid" json:"uid"`
	PermitURL       string     `bson:"permitUrl" json:"permitUrl"`
	PermitReady     bool       `bson:"permitReady" json:"permitReady"`
	PermitUpdatedAt *time.Time `bson:"permitUpdatedAt,omitempty" json:"permitUpdatedAt,omitempty"`
}

// ReminderPayload is the asynq task payload for appointment reminders.
type ReminderPayload struct {
	AppointmentID string `json:"appointmentId"`
	UserID        string `json:"userId"`
	Date          string `json:"date"`
	Window        string `json:"window"`
	Title         string `json:"title"`
	Body          string `json:"body"`
}
