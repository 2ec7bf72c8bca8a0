package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saree-api/testutil"
)

func TestNumericSettingsSurviveTheStore(t *testing.T) {
	db := testutil.NewDB(t)
	settings := NewSettingService(db)

	for key, raw := range map[string]string{
		SettingDeliveryFee:          `500`,
		SettingMinimumOrder:         `1000.5`,
		SettingServiceFeePercentage: `"2.5"`,
	} {
		_, err := settings.Upsert(t.Context(), SettingInput{Key: key, Value: json.RawMessage(raw), IsPublic: true})
		require.NoError(t, err, key)
	}

	fee, ok, err := SettingFloat(db, SettingDeliveryFee)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 500.0, fee)

	minimum, _, err := SettingFloat(db, SettingMinimumOrder)
	require.NoError(t, err)
	assert.Equal(t, 1000.5, minimum)

	pct, _, err := SettingFloat(db, SettingServiceFeePercentage)
	require.NoError(t, err)
	assert.Equal(t, 2.5, pct)

	rows, err := settings.Public(t.Context())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.JSONEq(t, `500`, string(rows[0].Value))
}

func TestUpsertReplacesValue(t *testing.T) {
	db := testutil.NewDB(t)
	settings := NewSettingService(db)

	_, err := settings.Upsert(t.Context(), SettingInput{Key: SettingDeliveryFee, Value: json.RawMessage(`500`)})
	require.NoError(t, err)
	saved, err := settings.Upsert(t.Context(), SettingInput{Key: SettingDeliveryFee, Value: json.RawMessage(`750`), IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, "750", string(saved.Value))
	assert.True(t, saved.IsPublic)

	fee, _, err := SettingFloat(db, SettingDeliveryFee)
	require.NoError(t, err)
	assert.Equal(t, 750.0, fee)

	_, err = settings.Upsert(t.Context(), SettingInput{Key: "broken", Value: json.RawMessage(`{`)})
	assert.ErrorIs(t, err, ErrUnprocessable)
}

func TestMissingSettingIsNotAnError(t *testing.T) {
	_, ok, err := SettingFloat(testutil.NewDB(t), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}
