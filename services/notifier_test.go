package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saree-api/models"
)

func TestMarkReadCoversBroadcasts(t *testing.T) {
	f := newFixture(t)
	notifier := NewNotifier(f.db, f.hub)
	ctx := t.Context()

	alert, _, err := notifier.ToRole(ctx, models.RoleDriver, Push{
		Type: models.NotificationDriverAlert, Title: "Rush hour", Message: "Extra orders downtown",
	})
	require.NoError(t, err)
	direct, err := notifier.ToUser(ctx, models.RoleCustomer, f.customer.ID, Push{
		Type: models.NotificationSystem, Title: "Welcome", Message: "Hello",
	})
	require.NoError(t, err)

	listed, err := notifier.List(ctx, models.RoleDriver, f.driver.ID, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, alert.ID, listed[0].ID)

	require.NoError(t, notifier.MarkRead(ctx, models.RoleDriver, f.driver.ID, alert.ID))
	listed, err = notifier.List(ctx, models.RoleDriver, f.driver.ID, 10)
	require.NoError(t, err)
	assert.True(t, listed[0].IsRead)

	// outside the caller's audience
	assert.ErrorIs(t, notifier.MarkRead(ctx, models.RoleCustomer, f.customer.ID, alert.ID), ErrNotFound)
	assert.ErrorIs(t, notifier.MarkRead(ctx, models.RoleDriver, f.driver.ID, direct.ID), ErrNotFound)
	require.NoError(t, notifier.MarkRead(ctx, models.RoleCustomer, f.customer.ID, direct.ID))
}
