package services

import (
	"context"
	"testing"

	"geniustrading/models"
	"geniustrading/storage"
	"geniustrading/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsOverrides(t *testing.T) {
	store := storage.NewMemory()
	acc := NewAccounts(store)
	u := registerUser(t, store, "alice")
	ctx := context.Background()

	got, err := acc.SetRole(ctx, u.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	got, err = acc.SetKycStatus(ctx, u.ID, models.KycApproved)
	require.NoError(t, err)
	assert.Equal(t, models.KycApproved, got.KycStatus)

	got, err = acc.SetBalance(ctx, u.ID, 12345)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), got.Balance)

	_, err = acc.SetRole(ctx, u.ID, "root")
	assertKind(t, err, utils.ErrValidation)
	_, err = acc.SetKycStatus(ctx, u.ID, "done")
	assertKind(t, err, utils.ErrValidation)
	_, err = acc.SetBalance(ctx, u.ID, -1)
	assertKind(t, err, utils.ErrValidation)

	_, err = acc.SetRole(ctx, 999, models.RoleUser)
	assertKind(t, err, utils.ErrNotFound)
	_, err = acc.SetBalance(ctx, 999, 0)
	assertKind(t, err, utils.ErrNotFound)
	_, err = acc.Get(ctx, 999)
	assertKind(t, err, utils.ErrNotFound)
}

func TestRegistry(t *testing.T) {
	store := storage.NewMemory()
	reg := NewRegistry(store)
	ctx := context.Background()

	a, err := reg.CreateDepositAddress(ctx, "bitcoin", "bc1-first")
	require.NoError(t, err)
	_, err = reg.CreateDepositAddress(ctx, "bitcoin", "bc1-dup")
	require.NoError(t, err)

	all, err := reg.DepositAddresses(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := reg.DepositAddress(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = reg.DepositAddress(ctx, "usdt")
	assertKind(t, err, utils.ErrNotFound)

	updated, err := reg.UpdateDepositAddress(ctx, a.ID, "bc1-new")
	require.NoError(t, err)
	assert.Equal(t, "bc1-new", updated.Address)

	_, err = reg.UpdateDepositAddress(ctx, 999, "x")
	assertKind(t, err, utils.ErrNotFound)

	err = reg.CreateTestimonial(ctx, &models.Testimonial{Name: "A", Location: "B", Message: "C", Rating: 6})
	assertKind(t, err, utils.ErrValidation)
	require.NoError(t, reg.CreateTestimonial(ctx, &models.Testimonial{Name: "A", Location: "B", Message: "C", Rating: 5}))
}

func TestSeedSampleDataIsIdempotent(t *testing.T) {
	store := storage.NewMemory()
	ctx := context.Background()

	require.NoError(t, SeedSampleData(ctx, store))
	require.NoError(t, SeedSampleData(ctx, store))

	ts, _ := store.ListTestimonials(ctx)
	assert.Len(t, ts, 4)
	for _, tm := range ts {
		require.NotNil(t, tm.Avatar)
		assert.Contains(t, *tm.Avatar, "https://images.unsplash.com/")
	}
	addrs, _ := store.ListDepositAddresses(ctx)
	assert.Len(t, addrs, 4)

	btc, err := store.GetDepositAddressByMethod(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh", btc.Address)
}
