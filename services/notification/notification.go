// Package notification sends thin push notifications through FCM. Delivery
// mechanics stay out of the transactional core: a missing device token or a
// send failure is logged, never surfaced to the booking path.
package notification

import (
	"context"

	"campusbook/database/store"
	"campusbook/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Service pushes user-facing notifications.
type Service interface {
	SendUserPush(ctx context.Context, uid, title, body string, data map[string]string) error
	NotifyPaid(ctx context.Context, appt models.Appointment)
}

// DefaultService is the production implementation. FCM may be nil (e.g. in
// development without credentials); sends then degrade to log lines, which
// is also how the original system simulated its email delivery.
type DefaultService struct {
	Store  store.Store
	FCM    *messaging.Client
	Logger *zap.Logger
}

// NewService wires a DefaultService.
func NewService(st store.Store, fcm *messaging.Client, logger *zap.Logger) *DefaultService {
	return &DefaultService{Store: st, FCM: fcm, Logger: logger}
}

func (s *DefaultService) SendUserPush(ctx context.Context, uid, title, body string, data map[string]string) error {
	var user models.User
	found, err := s.Store.Get(ctx, store.CollUsers, uid, &user)
	if err != nil {
		return err
	}
	if !found || user.FCMToken == "" || s.FCM == nil {
		s.Logger.Info("push skipped, no deliverable device",
			zap.String("uid", uid),
			zap.String("title", title))
		return nil
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := s.FCM.Send(ctx, msg); err != nil {
		return err
	}
	return nil
}

// NotifyPaid tells the student their payment was recorded. Implements
// events.PaidNotifier.
func (s *DefaultService) NotifyPaid(ctx context.Context, appt models.Appointment) {
	err := s.SendUserPush(ctx, appt.UserID,
		"Payment received",
		"Your appointment on "+appt.Date+" ("+appt.Window+") is paid.",
		map[string]string{"appointmentId": appt.ID})
	if err != nil {
		s.Logger.Warn("failed to send paid notification",
			zap.String("appointmentId", appt.ID),
			zap.Error(err))
	}
}
