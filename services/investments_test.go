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

func TestCreateInvestmentUnguarded(t *testing.T) {
	store := storage.NewMemory()
	svc := NewInvestments(store, false)
	u := registerUser(t, store, "alice")
	ctx := context.Background()

	// TODO: creation is accepted with zero balance and no KYC; enable
	// LEDGER_STRICT by default once clients send plan-consistent values.
	inv, err := svc.Create(ctx, u, InvestmentInput{PlanType: "starter", Amount: 100000, DailyReturn: 2500, Duration: 30})
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentActive, inv.Status)
	assert.Equal(t, int64(2500), inv.DailyReturn)
	assert.Equal(t, int64(0), balanceOf(t, store, u.ID))

	// client-supplied values are stored verbatim
	odd, err := svc.Create(ctx, u, InvestmentInput{PlanType: "custom", Amount: 1, DailyReturn: 999, Duration: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(999), odd.DailyReturn)

	mine, err := svc.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestCreateInvestmentBasicValidation(t *testing.T) {
	store := storage.NewMemory()
	svc := NewInvestments(store, false)
	u := registerUser(t, store, "alice")
	ctx := context.Background()

	_, err := svc.Create(ctx, u, InvestmentInput{PlanType: "starter", Amount: 0, Duration: 30})
	assertKind(t, err, utils.ErrValidation)

	_, err = svc.Create(ctx, u, InvestmentInput{PlanType: "", Amount: 10, Duration: 30})
	assertKind(t, err, utils.ErrValidation)
}

func TestCreateInvestmentStrict(t *testing.T) {
	store := storage.NewMemory()
	svc := NewInvestments(store, true)
	u := registerUser(t, store, "alice")
	ctx := context.Background()
	in := InvestmentInput{PlanType: "starter", Amount: 100000, DailyReturn: 1, Duration: 1}

	_, err := svc.Create(ctx, u, in)
	assertKind(t, err, utils.ErrForbidden)

	u, err = store.UpdateUserKycStatus(ctx, u.ID, models.KycApproved)
	require.NoError(t, err)

	_, err = svc.Create(ctx, u, in)
	assertKind(t, err, utils.ErrValidation)
	assert.Equal(t, "Insufficient balance", err.Error())
	all, _ := svc.ListAll(ctx)
	assert.Empty(t, all)

	_, err = store.SetUserBalance(ctx, u.ID, 150000)
	require.NoError(t, err)

	inv, err := svc.Create(ctx, u, in)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), inv.DailyReturn)
	assert.Equal(t, 30, inv.Duration)
	assert.Equal(t, int64(50000), balanceOf(t, store, u.ID))

	_, err = svc.Create(ctx, u, InvestmentInput{PlanType: "premium", Amount: 100})
	assertKind(t, err, utils.ErrValidation)

	_, err = svc.Create(ctx, u, InvestmentInput{PlanType: "gold", Amount: 100})
	assertKind(t, err, utils.ErrValidation)
}
