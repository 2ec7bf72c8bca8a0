package statemachine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saree-api/models"
)

func TestCanTransition_HappyPath(t *testing.T) {
	path := []models.OrderStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusPreparing,
		models.StatusReady, models.StatusPickedUp, models.StatusDelivered,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, CanTransition(path[i], path[i+1], models.RoleAdmin), "%s → %s", path[i], path[i+1])
	}
}

func TestCanTransition_RejectsBackwardsAndSkips(t *testing.T) {
	cases := []struct{ from, to models.OrderStatus }{
		{models.StatusDelivered, models.StatusPending},
		{models.StatusPending, models.StatusDelivered},
		{models.StatusPickedUp, models.StatusCancelled},
		{models.StatusCancelled, models.StatusConfirmed},
		{models.StatusConfirmed, models.StatusConfirmed},
	}
	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to, models.RoleAdmin)
		require.Error(t, err, "%s → %s", tc.from, tc.to)

		var te *TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, tc.from, te.From)
		assert.Equal(t, tc.to, te.To)
	}
}

func TestCanTransition_ActorGating(t *testing.T) {
	assert.NoError(t, CanTransition(models.StatusReady, models.StatusPickedUp, models.RoleDriver))
	assert.NoError(t, CanTransition(models.StatusPickedUp, models.StatusDelivered, models.RoleDriver))
	assert.Error(t, CanTransition(models.StatusPending, models.StatusConfirmed, models.RoleDriver))

	assert.NoError(t, CanTransition(models.StatusPending, models.StatusCancelled, models.RoleCustomer))
	assert.Error(t, CanTransition(models.StatusConfirmed, models.StatusCancelled, models.RoleCustomer))
}

func TestTransitionError_ListsAllowedStatesForActor(t *testing.T) {
	err := CanTransition(models.StatusReady, models.StatusDelivered, models.RoleDriver)
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, []models.OrderStatus{models.StatusPickedUp}, te.Allowed)
	assert.Contains(t, te.Error(), "picked_up")
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusDelivered))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.False(t, IsTerminal(models.StatusPickedUp))
}

func TestEveryNonTerminalStateExceptPickedUpCanCancel(t *testing.T) {
	for _, s := range []models.OrderStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusPreparing, models.StatusReady,
	} {
		assert.Contains(t, ValidTransitionsFrom(s), models.StatusCancelled, string(s))
	}
	assert.NotContains(t, ValidTransitionsFrom(models.StatusPickedUp), models.StatusCancelled)
}
