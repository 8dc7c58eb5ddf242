package service

import (
	"fmt"

	"ivyresort/internal/models"
)

const (
	ActionConfirm  = "confirm"
	ActionCheckIn  = "check-in"
	ActionCheckOut = "check-out"
	ActionCancel   = "cancel"
	ActionDelete   = "delete"
)

// transitionMap lists the statuses each action may start from. Delete is
// absent because any reservation can be soft-deleted.
var transitionMap = map[string][]string{
	ActionConfirm:  {models.StatusPending},
	ActionCheckIn:  {models.StatusConfirmed},
	ActionCheckOut: {models.StatusConfirmed, models.StatusCheckedIn},
	ActionCancel:   {models.StatusPending, models.StatusConfirmed, models.StatusCheckedIn},
}

// actionTarget maps each action to the status it produces.
var actionTarget = map[string]string{
	ActionConfirm:  models.StatusConfirmed,
	ActionCheckIn:  models.StatusCheckedIn,
	ActionCheckOut: models.StatusCheckedOut,
	ActionCancel:   models.StatusCancelled,
	ActionDelete:   models.StatusDeleted,
}

// ValidTransition reports whether action is allowed from the current status.
func ValidTransition(action, current string) bool {
	if action == ActionDelete {
		return true
	}
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == current {
			return true
		}
	}
	return false
}

// TransitionError explains a rejected status change.
func TransitionError(action, current string) error {
	return fmt.Errorf("cannot %s a reservation in status %q", action, current)
}
