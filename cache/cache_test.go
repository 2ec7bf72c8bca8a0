package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCacheAlwaysLoads(t *testing.T) {
	c := Disabled()
	ctx := context.Background()
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"a"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Remember(ctx, c, KeyCategories, time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, got)
	}
	assert.Equal(t, 3, calls)
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Close())
}

func TestRememberPropagatesLoadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Remember(context.Background(), Disabled(), KeySections, time.Minute, func() (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestConnectWithoutAddressIsDisabled(t *testing.T) {
	c, err := Connect(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, c.Enabled())
	c.Forget(context.Background(), KeyPublicSettings)
}
