package tasks

import (
	"context"
	"encoding/json"
	"time"

	"campusbook/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// reminderHour is the local hour on the appointment day when the reminder fires.
const reminderHour = 7

// reminderFireAt returns the reminder's delivery time for an appointment
// date: reminderHour on the morning of the appointment day. Asynq delivers
// a past ProcessAt immediately, which covers same-day bookings.
func reminderFireAt(date string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(reminderHour * time.Hour), nil
}

// NewReminderTask builds the asynq task for one appointment reminder.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// ReminderScheduler enqueues appointment reminders on asynq. Implements
// appointment.ReminderScheduler.
type ReminderScheduler struct {
	Client *asynq.Client
}

// ScheduleReminder enqueues a push reminder for the morning of the
// appointment. Appointments booked for today fire immediately.
func (r *ReminderScheduler) ScheduleReminder(ctx context.Context, appt models.Appointment) error {
	fireAt, err := reminderFireAt(appt.Date)
	if err != nil {
		return err
	}

	payload := models.ReminderPayload{
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		Date:          appt.Date,
		Window:        appt.Window,
		Title:         "Appointment today",
		Body:          "Your appointment is scheduled for " + appt.Window + ".",
	}
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	_, err = r.Client.EnqueueContext(ctx, task, opts...)
	return err
}
