package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveAndLoad(t *testing.T) {
	store := NewMemoryStore()

	addressID := uint(3)
	saved := &CheckoutSession{
		DeliveryOption:  "delivery",
		AddressID:       &addressID,
		PaymentIntentID: "pi_test_123",
		Amount:          27000,
	}

	err := store.Save(42, saved, time.Minute)
	require.NoError(t, err)

	loaded, err := store.Load(42)
	require.NoError(t, err)
	assert.Equal(t, "delivery", loaded.DeliveryOption)
	require.NotNil(t, loaded.AddressID)
	assert.Equal(t, uint(3), *loaded.AddressID)
	assert.Equal(t, "pi_test_123", loaded.PaymentIntentID)
	assert.Equal(t, int64(27000), loaded.Amount)
}

func TestMemoryStore_LoadMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Load(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()

	err := store.Save(7, &CheckoutSession{DeliveryOption: "pickup"}, -time.Second)
	require.NoError(t, err)

	_, err = store.Load(7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()

	err := store.Save(9, &CheckoutSession{DeliveryOption: "pickup"}, time.Minute)
	require.NoError(t, err)

	err = store.Clear(9)
	require.NoError(t, err)

	_, err = store.Load(9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	store := NewMemoryStore()

	err := store.Save(5, &CheckoutSession{DeliveryOption: "pickup", Amount: 100}, time.Minute)
	require.NoError(t, err)

	first, err := store.Load(5)
	require.NoError(t, err)
	first.Amount = 999

	second, err := store.Load(5)
	require.NoError(t, err)
	assert.Equal(t, int64(100), second.Amount)
}
