package orders

import (
	"errors"
	"fmt"

	"brista-coffee/models"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInvalidToken      = errors.New("rating token does not match")
)

// completed and cancelled are terminal.
var transitions = map[string][]string{
	models.StatusPending:   {models.StatusPreparing, models.StatusCancelled},
	models.StatusPreparing: {models.StatusReady, models.StatusCancelled},
	models.StatusReady:     {models.StatusCompleted, models.StatusCancelled},
}

func KnownStatus(status string) bool {
	switch status {
	case models.StatusPending, models.StatusPreparing, models.StatusReady,
		models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses lists where an order in status may move.
func NextStatuses(status string) []string {
	return append([]string(nil), transitions[status]...)
}

func checkTransition(from, to string) error {
	if !KnownStatus(to) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
