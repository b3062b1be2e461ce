package appointment

import (
	"time"

	"campusbook/models"
)

const dateLayout = "2006-01-02"

// validateSlot checks the date format, rejects past dates, and checks the
// window against the fixed bookable set. Validation runs before any
// transaction starts.
func (s *DefaultService) validateSlot(date, window string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidDate
	}
	// Lexicographic compare is calendar order for YYYY-MM-DD.
	if date < s.now().Format(dateLayout) {
		return ErrDateInPast
	}
	if !models.IsValidWindow(window) {
		return ErrInvalidWindow
	}
	return nil
}
