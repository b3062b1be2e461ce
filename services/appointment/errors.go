package appointment

import "errors"

var (
	ErrInvalidDate       = errors.New("date must be a valid YYYY-MM-DD calendar date")
	ErrDateInPast        = errors.New("date must not be in the past")
	ErrInvalidWindow     = errors.New("window is not one of the bookable time windows")
	ErrAlreadyBooked     = errors.New("an active appointment already exists for this user and slot")
	ErrTooManyActive     = errors.New("active appointment limit reached for this account")
	ErrNotFound          = errors.New("appointment not found")
	ErrNotOwner          = errors.New("appointment belongs to another account")
	ErrInvalidTransition = errors.New("status transition not allowed")
)
