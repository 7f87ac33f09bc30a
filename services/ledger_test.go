package services

import (
	"context"
	"sync"
	"testing"

	"geniustrading/models"
	"geniustrading/storage"
	"geniustrading/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBalanceEffect(t *testing.T) {
	cases := []struct {
		name   string
		typ    string
		prev   string
		next   string
		strict bool
		want   BalanceEffect
	}{
		{"deposit approve", models.TxDeposit, models.TxPending, models.TxApproved, false, BalanceEffect{Credit: 500}},
		{"deposit re-approve", models.TxDeposit, models.TxApproved, models.TxApproved, false, BalanceEffect{}},
		{"deposit reverse", models.TxDeposit, models.TxApproved, models.TxRejected, false, BalanceEffect{Debit: 500, Floored: true}},
		{"deposit reject pending", models.TxDeposit, models.TxPending, models.TxRejected, false, BalanceEffect{}},
		{"deposit complete", models.TxDeposit, models.TxPending, models.TxCompleted, false, BalanceEffect{}},
		{"deposit approve from rejected", models.TxDeposit, models.TxRejected, models.TxApproved, false, BalanceEffect{Credit: 500}},
		{"withdrawal approve", models.TxWithdrawal, models.TxPending, models.TxApproved, false, BalanceEffect{}},
		{"withdrawal complete", models.TxWithdrawal, models.TxPending, models.TxCompleted, false, BalanceEffect{}},
		{"withdrawal reject", models.TxWithdrawal, models.TxApproved, models.TxRejected, false, BalanceEffect{}},
		{"strict withdrawal approve", models.TxWithdrawal, models.TxPending, models.TxApproved, true, BalanceEffect{Debit: 500}},
		{"strict withdrawal complete after approve", models.TxWithdrawal, models.TxApproved, models.TxCompleted, true, BalanceEffect{}},
		{"strict withdrawal refund", models.TxWithdrawal, models.TxCompleted, models.TxFailed, true, BalanceEffect{Credit: 500}},
		{"strict withdrawal reject pending", models.TxWithdrawal, models.TxPending, models.TxRejected, true, BalanceEffect{}},
		{"profit never moves", models.TxProfit, models.TxPending, models.TxApproved, true, BalanceEffect{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeBalanceEffect(tc.typ, tc.prev, tc.next, 500, tc.strict))
		})
	}
}

func submit(t *testing.T, l *Ledger, u *models.User, typ string, amount int64) *models.Transaction {
	t.Helper()
	in := TransactionInput{Type: typ, Amount: amount, PaymentMethod: "bitcoin"}
	if typ == models.TxWithdrawal {
		in.WalletAddress = "bc1qexample"
	}
	tx, err := l.CreateTransaction(context.Background(), u, in)
	require.NoError(t, err)
	return tx
}

func TestCreateTransactionDefaults(t *testing.T) {
	store := storage.NewMemory()
	l := NewLedger(store, false)
	u := registerUser(t, store, "alice")

	tx := submit(t, l, u, models.TxDeposit, 5000)
	assert.Equal(t, models.TxPending, tx.Status)
	assert.Equal(t, "USD", tx.Currency)
	assert.Regexp(t, `^DEP-`, tx.Reference)

	// default mode accepts a withdrawal larger than the balance
	w := submit(t, l, u, models.TxWithdrawal, 1_000_000)
	assert.Equal(t, models.TxPending, w.Status)
	assert.Equal(t, int64(0), balanceOf(t, store, u.ID))
}

func TestCreateTransactionValidation(t *testing.T) {
	store := storage.NewMemory()
	l := NewLedger(store, false)
	u := registerUser(t, store, "alice")
	ctx := context.Background()

	_, err := l.CreateTransaction(ctx, u, TransactionInput{Type: models.TxProfit, Amount: 10, PaymentMethod: "x"})
	assertKind(t, err, utils.ErrValidation)

	_, err = l.CreateTransaction(ctx, u, TransactionInput{Type: models.TxDeposit, Amount: 0, PaymentMethod: "x"})
	assertKind(t, err, utils.ErrValidation)

	_, err = l.CreateTransaction(ctx, u, TransactionInput{Type: models.TxWithdrawal, Amount: 10, PaymentMethod: "bitcoin"})
	assertKind(t, err, utils.ErrValidation)
}

func TestStrictTransactionLimits(t *testing.T) {
	store := storage.NewMemory()
	l := NewLedger(store, true)
	u := registerUser(t, store, "alice")
	ctx := context.Background()

	_, err := l.CreateTransaction(ctx, u, TransactionInput{Type: models.TxDeposit, Amount: 99, PaymentMethod: "bitcoin"})
	assertKind(t, err, utils.ErrValidation)

	_, err = l.CreateTransaction(ctx, u, TransactionInput{Type: models.TxWithdrawal, Amount: 1000, PaymentMethod: "bitcoin", WalletAddress: "w"})
	assertKind(t, err, utils.ErrValidation)
	assert.Equal(t, "Insufficient balance", err.Error())
}

func TestApproveDepositCreditsOnce(t *testing.T) {
	store := storage.NewMemory()
	l := NewLedger(store, false)
	u := registerUser(t, store, "alice")
	ctx := context.Background()
	tx := submit(t, l, u, models.TxDeposit, 5000)

	updated, err := l.ReviewTransaction(ctx, tx.ID, models.TxApproved, "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.TxApproved, updated.Status)
	assert.Equal(t, "looks good", *updated.AdminNotes)
	assert.Equal(t, int64(5000), balanceOf(t, store, u.ID))

	_, err = l.ReviewTransaction(ctx, tx.ID, models.TxApproved, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balanceOf(t, store, u.ID))

	again, err := store.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "looks good", *again.AdminNotes)
}

func TestRejectApprovedDepositFloorsAtZero(t *testing.T) {
	store := storage.NewMemory()
	l := NewLedger(store, false)
	u := registerUser(t, store, "alice")
	ctx := context.Background()

	tx := submit(t, l, u, models.TxDeposit, 800)
	_, err := l.ReviewTransaction(ctx, tx.ID, models.TxApproved, "")
	require.NoError(t, err)

	// spend part of it elsewhere so balance is 500 < 800
	_, err = store.SetUserBalance(ctx, u.ID, 500)
	require.NoError(t, err)

	_, err = l.ReviewTransaction(ctx, tx.ID, models.TxRejected, "chargeback")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balanceOf(t, store, u.ID))
}

func TestWithdrawalTransitionsNeverMoveBalance(t *testing.T) {
	store := storage.NewMemory()
	l := NewLedger(store, false)
	u := registerUser(t, store, "alice")
	ctx := context.Background()
	_, err := store.SetUserBalance(ctx, u.ID, 3000)
	require.NoError(t, err)

	tx := submit(t, l, u, models.TxWithdrawal, 2000)
	for _, status := range []string{models.TxApproved, models.TxCompleted, models.TxRejected, models.TxFailed, models.TxPending} {
		_, err := l.ReviewTransaction(ctx, tx.ID, status, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3000), balanceOf(t, store, u.ID), status)
	}
}

func TestStrictWithdrawalDebitsAndRefunds(t *testing.T) {
	store := storage.NewMemory()
	l := NewLedger(store, true)
	u := registerUser(t, store, "alice")
	ctx := context.Background()
	_, err := store.SetUserBalance(ctx, u.ID, 3000)
	require.NoError(t, err)
	u.Balance = 3000

	tx := submit(t, l, u, models.TxWithdrawal, 2000)
	_, err = l.ReviewTransaction(ctx, tx.ID, models.TxApproved, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balanceOf(t, store, u.ID))

	_, err = l.ReviewTransaction(ctx, tx.ID, models.TxFailed, "bounced")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), balanceOf(t, store, u.ID))
}

func TestStrictWithdrawalInsufficientLeavesStatus(t *testing.T) {
	store := storage.NewMemory()
	l := NewLedger(store, true)
	u := registerUser(t, store, "alice")
	ctx := context.Background()
	_, err := store.SetUserBalance(ctx, u.ID, 2000)
	require.NoError(t, err)
	u.Balance = 2000

	tx := submit(t, l, u, models.TxWithdrawal, 2000)
	_, err = store.SetUserBalance(ctx, u.ID, 100)
	require.NoError(t, err)

	_, err = l.ReviewTransaction(ctx, tx.ID, models.TxApproved, "")
	assertKind(t, err, utils.ErrValidation)

	got, _ := store.GetTransaction(ctx, tx.ID)
	assert.Equal(t, models.TxPending, got.Status)
	assert.Equal(t, int64(100), balanceOf(t, store, u.ID))
}

func TestReviewTransactionErrors(t *testing.T) {
	store := storage.NewMemory()
	l := NewLedger(store, false)
	ctx := context.Background()

	_, err := l.ReviewTransaction(ctx, 404, models.TxApproved, "")
	assertKind(t, err, utils.ErrNotFound)

	_, err = l.ReviewTransaction(ctx, 1, "done", "")
	assertKind(t, err, utils.ErrValidation)
}

func TestConcurrentApprovalsCreditOnce(t *testing.T) {
	store := storage.NewMemory()
	l := NewLedger(store, false)
	u := registerUser(t, store, "alice")
	tx := submit(t, l, u, models.TxDeposit, 5000)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.ReviewTransaction(context.Background(), tx.ID, models.TxApproved, "")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5000), balanceOf(t, store, u.ID))
}

func TestListAllStatusFilter(t *testing.T) {
	store := storage.NewMemory()
	l := NewLedger(store, false)
	u := registerUser(t, store, "alice")
	ctx := context.Background()
	a := submit(t, l, u, models.TxDeposit, 100)
	submit(t, l, u, models.TxDeposit, 200)
	_, err := l.ReviewTransaction(ctx, a.ID, models.TxApproved, "")
	require.NoError(t, err)

	pending, err := l.ListAll(ctx, models.TxPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := l.ListAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = l.ListAll(ctx, "bogus")
	assertKind(t, err, utils.ErrValidation)

	mine, err := l.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
