// Package events carries appointment change notifications: every committed
// appointment create/update/delete is published as an event, and subscribed
// handlers defensively mirror the corresponding ledger mutation. Handlers
// must tolerate replay and out-of-order delivery across appointment IDs.
package events

import (
	"context"
	"time"

	"campusbook/models"

	"github.com/google/uuid"
)

// EventType enumerates appointment document mutations.
type EventType string

const (
	AppointmentCreated EventType = "appointment.created"
	AppointmentUpdated EventType = "appointment.updated"
	AppointmentDeleted EventType = "appointment.deleted"
)

// AppointmentEvent is one change notification. Before is nil for creates,
// After is nil for deletes.
type AppointmentEvent struct {
	ID            string              `json:"id"`
	Type          EventType           `json:"type"`
	AppointmentID string              `json:"appointmentId"`
	Before        *models.Appointment `json:"before,omitempty"`
	After         *models.Appointment `json:"after,omitempty"`
	OccurredAt    time.Time           `json:"occurredAt"`
}

// NewAppointmentEvent builds an event with a fresh ID and timestamp.
func NewAppointmentEvent(t EventType, apptID string, before, after *models.Appointment) AppointmentEvent {
	return AppointmentEvent{
		ID:            uuid.New().String(),
		Type:          t,
		AppointmentID: apptID,
		Before:        before,
		After:         after,
		OccurredAt:    time.Now(),
	}
}

// Handler consumes one event. Handlers are fire-and-forget from the
// publisher's perspective and must not panic.
type Handler func(ctx context.Context, evt AppointmentEvent)

// Bus publishes appointment events to subscribed handlers.
type Bus interface {
	Publish(ctx context.Context, evt AppointmentEvent) error
	Subscribe(h Handler)
}
