package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	ownerID := uuid.New()

	t.Run("creates store successfully", func(t *testing.T) {
		store, err := NewStore(ownerID, "mama-nkechi-provisions", "Mama Nkechi Provisions")

		require.NoError(t, err)
		assert.NotNil(t, store)
		assert.Equal(t, "mama-nkechi-provisions", store.Slug)
		assert.Equal(t, "Mama Nkechi Provisions", store.Name)
		assert.Equal(t, ownerID, store.OwnerID)
		assert.Equal(t, StoreStatusActive, store.Status)
		assert.Equal(t, "NGN", store.Currency)
		assert.True(t, store.VATRate.Equal(decimal.NewFromFloat(0.075)))
	})

	t.Run("lowercases the slug", func(t *testing.T) {
		store, err := NewStore(ownerID, "Lagos-Gadgets", "Lagos Gadgets")

		require.NoError(t, err)
		assert.Equal(t, "lagos-gadgets", store.Slug)
	})

	t.Run("fails with empty owner", func(t *testing.T) {
		store, err := NewStore(uuid.Nil, "shop", "Shop")

		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("fails with empty slug", func(t *testing.T) {
		store, err := NewStore(ownerID, "", "Shop")

		assert.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "slug cannot be empty")
	})

	t.Run("fails with invalid slug characters", func(t *testing.T) {
		for _, slug := range []string{"my shop", "shop_1", "shop!", "-shop", "shop-"} {
			store, err := NewStore(ownerID, slug, "Shop")
			assert.Error(t, err, "slug %q should be rejected", slug)
			assert.Nil(t, store)
		}
	})

	t.Run("fails with empty name", func(t *testing.T) {
		store, err := NewStore(ownerID, "shop", "")

		assert.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})
}

func TestStoreSetVATRate(t *testing.T) {
	store := mustNewStore(t)

	t.Run("accepts a fractional rate", func(t *testing.T) {
		err := store.SetVATRate(decimal.NewFromFloat(0.15))

		require.NoError(t, err)
		assert.True(t, store.VATRate.Equal(decimal.NewFromFloat(0.15)))
	})

	t.Run("accepts zero", func(t *testing.T) {
		err := store.SetVATRate(decimal.Zero)

		require.NoError(t, err)
		assert.True(t, store.VATRate.IsZero())
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		err := store.SetVATRate(decimal.NewFromFloat(-0.05))

		assert.Error(t, err)
	})

	t.Run("rejects rate above one", func(t *testing.T) {
		err := store.SetVATRate(decimal.NewFromFloat(7.5))

		assert.Error(t, err)
	})
}

func TestStoreStatusTransitions(t *testing.T) {
	t.Run("deactivate then activate", func(t *testing.T) {
		store := mustNewStore(t)

		require.NoError(t, store.Deactivate())
		assert.Equal(t, StoreStatusInactive, store.Status)
		assert.False(t, store.IsActive())

		require.NoError(t, store.Activate())
		assert.True(t, store.IsActive())
	})

	t.Run("activate fails when already active", func(t *testing.T) {
		store := mustNewStore(t)

		assert.Error(t, store.Activate())
	})

	t.Run("suspend", func(t *testing.T) {
		store := mustNewStore(t)

		require.NoError(t, store.Suspend())
		assert.Equal(t, StoreStatusSuspended, store.Status)
		assert.Error(t, store.Suspend())
	})

	t.Run("transitions bump the version", func(t *testing.T) {
		store := mustNewStore(t)
		initial := store.GetVersion()

		require.NoError(t, store.Deactivate())
		assert.Equal(t, initial+1, store.GetVersion())
	})
}

func TestStorePublicURL(t *testing.T) {
	store := mustNewStore(t)

	assert.Equal(t, "https://storelink.ng/store/test-shop", store.PublicURL("storelink.ng"))
}

func TestStoreSetContact(t *testing.T) {
	store := mustNewStore(t)

	err := store.SetContact("+2348012345678", "Owner@Example.COM", "12 Allen Avenue, Ikeja")

	require.NoError(t, err)
	assert.Equal(t, "+2348012345678", store.ContactPhone)
	assert.Equal(t, "owner@example.com", store.ContactEmail)
	assert.Equal(t, "12 Allen Avenue, Ikeja", store.Address)
}

func mustNewStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(uuid.New(), "test-shop", "Test Shop")
	require.NoError(t, err)
	return store
}
