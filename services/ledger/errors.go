package ledger

import "errors"

var (
	// ErrSlotFull is returned when an increment would push bookedCount past
	// capacity. The enclosing transaction must abort.
	ErrSlotFull = errors.New("slot is at full capacity")

	// ErrSourceSlotMissing signals a consistency violation: the slot document
	// expected to carry an active appointment's unit does not exist. It is
	// logged as an anomaly by callers and never auto-repaired.
	ErrSourceSlotMissing = errors.New("source slot document missing")
)
