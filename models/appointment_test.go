package models

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPaid, StatusApproved, true},
		{StatusPending, StatusApproved, false},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusRejected, true},
		{StatusPaid, StatusCancelled, true},
		{StatusApproved, StatusCancelled, true},
		{StatusPaid, StatusPaid, false},
		{StatusCancelled, StatusPaid, false},
		{StatusRejected, StatusCancelled, false},
		{StatusCancelled, StatusCancelled, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for status, want := range map[AppointmentStatus]bool{
		StatusPending:   false,
		StatusPaid:      false,
		StatusApproved:  false,
		StatusRejected:  true,
		StatusCancelled: true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestAppointmentID(t *testing.T) {
	got := AppointmentID("u1", "2025-06-01", "09:00-10:00")
	if got != "u1_2025-06-01_09:00-10:00" {
		t.Fatalf("AppointmentID = %q", got)
	}
}

func TestIsValidWindow(t *testing.T) {
	for _, w := range Windows {
		if !IsValidWindow(w) {
			t.Errorf("IsValidWindow(%q) = false", w)
		}
	}
	for _, w := range []string{"", "08:00-09:00", "12:00-13:00", "9:00-10:00"} {
		if IsValidWindow(w) {
			t.Errorf("IsValidWindow(%q) = true", w)
		}
	}
}
