package statemachine

import (
	"fmt"
	"strings"

	"saree-api/models"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From   models.OrderStatus `json:"from"`
	To     models.OrderStatus `json:"to"`
	Actors []models.UserRole  `json:"actors"`
}

var (
	adminOnly       = []models.UserRole{models.RoleAdmin}
	adminOrDriver   = []models.UserRole{models.RoleAdmin, models.RoleDriver}
	adminOrCustomer = []models.UserRole{models.RoleAdmin, models.RoleCustomer}
)

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Back office accepts or rejects; the customer may withdraw a pending order
	{From: models.StatusPending, To: models.StatusConfirmed, Actors: adminOnly},
	{From: models.StatusPending, To: models.StatusCancelled, Actors: adminOrCustomer},
	// Kitchen progress
	{From: models.StatusConfirmed, To: models.StatusPreparing, Actors: adminOnly},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actors: adminOnly},
	{From: models.StatusPreparing, To: models.StatusReady, Actors: adminOnly},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actors: adminOnly},
	// Courier leg
	{From: models.StatusReady, To: models.StatusPickedUp, Actors: adminOrDriver},
	{From: models.StatusReady, To: models.StatusCancelled, Actors: adminOnly},
	{From: models.StatusPickedUp, To: models.StatusDelivered, Actors: adminOrDriver},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		for _, a := range t.Actors {
			m[transitionKey{t.From, t.To, a}] = true
		}
	}
	return m
}()

// TransitionError is returned for any move outside the table.
type TransitionError struct {
	From    models.OrderStatus
	To      models.OrderStatus
	Actor   models.UserRole
	Allowed []models.OrderStatus
}

func (e *TransitionError) Error() string {
	allowed := "none (terminal state)"
	if len(e.Allowed) > 0 {
		parts := make([]string, len(e.Allowed))
		for i, s := range e.Allowed {
			parts[i] = string(s)
		}
		allowed = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("invalid transition: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		e.From, e.To, e.Actor, e.From, allowed)
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// NextFor narrows ValidTransitionsFrom to what a given actor may do.
func NextFor(status models.OrderStatus, actor models.UserRole) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, s := range ValidTransitionsFrom(status) {
		if transitionMap[transitionKey{status, s, actor}] {
			nexts = append(nexts, s)
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor models.UserRole) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return &TransitionError{From: from, To: to, Actor: actor, Allowed: NextFor(from, actor)}
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}
