package services

import (
	"context"
	"errors"
	"strings"

	"geniustrading/logger"
	"geniustrading/metrics"
	"geniustrading/models"
	"geniustrading/storage"
	"geniustrading/utils"

	"github.com/rs/zerolog"
)

// Minimums applied only in strict mode, in cents.
const (
	MinDepositAmount    int64 = 100
	MinWithdrawalAmount int64 = 1000
)

type TransactionInput struct {
	Type          string
	Amount        int64
	Currency      string
	PaymentMethod string
	WalletAddress string
	BankDetails   string
}

// BalanceEffect is what a status change does to the owner's balance.
// At most one of Credit and Debit is non-zero.
type BalanceEffect struct {
	Credit  int64
	Debit   int64
	Floored bool // clamp at zero instead of refusing an overdraft
}

func (e BalanceEffect) None() bool {
	return e.Credit == 0 && e.Debit == 0
}

// ComputeBalanceEffect decides the balance change for moving a transaction
// from prev to next.
//
// Deposits credit on entering approved and are reversed, floored at zero,
// when an approved deposit is rejected. Withdrawals never touch the balance
// unless strict is set, in which case approving or completing a pending
// withdrawal debits it and rejecting or failing a paid-out one refunds it.
func ComputeBalanceEffect(txType, prev, next string, amount int64, strict bool) BalanceEffect {
	switch txType {
	case models.TxDeposit:
		if next == models.TxApproved && prev != models.TxApproved {
			return BalanceEffect{Credit: amount}
		}
		if next == models.TxRejected && prev == models.TxApproved {
			return BalanceEffect{Debit: amount, Floored: true}
		}
	case models.TxWithdrawal:
		if !strict {
			return BalanceEffect{}
		}
		paidOut := func(s string) bool { return s == models.TxApproved || s == models.TxCompleted }
		if paidOut(next) && prev == models.TxPending {
			return BalanceEffect{Debit: amount}
		}
		if (next == models.TxRejected || next == models.TxFailed) && paidOut(prev) {
			return BalanceEffect{Credit: amount}
		}
	}
	return BalanceEffect{}
}

// Ledger owns transactions and every balance change they cause.
type Ledger struct {
	store  storage.Storage
	strict bool
	log    zerolog.Logger
}

func NewLedger(store storage.Storage, strict bool) *Ledger {
	return &Ledger{store: store, strict: strict, log: logger.For("ledger")}
}

// CreateTransaction records a pending deposit or withdrawal request.
func (l *Ledger) CreateTransaction(ctx context.Context, user *models.User, in TransactionInput) (*models.Transaction, error) {
	if in.Type != models.TxDeposit && in.Type != models.TxWithdrawal {
		return nil, utils.NewError(utils.ErrValidation, "type must be deposit or withdrawal")
	}
	if in.Amount <= 0 {
		return nil, utils.NewError(utils.ErrValidation, "amount must be greater than 0")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, utils.NewError(utils.ErrValidation, "paymentMethod is required")
	}
	if in.Type == models.TxWithdrawal && strings.TrimSpace(in.WalletAddress) == "" {
		return nil, utils.NewError(utils.ErrValidation, "walletAddress is required for withdrawals")
	}
	if l.strict {
		if err := l.checkLimits(user, in); err != nil {
			return nil, err
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}
	prefix := "DEP"
	if in.Type == models.TxWithdrawal {
		prefix = "WDR"
	}

	tx := &models.Transaction{
		UserID:        user.ID,
		Type:          in.Type,
		Amount:        in.Amount,
		Currency:      currency,
		Status:        models.TxPending,
		PaymentMethod: utils.StringPtr(strings.TrimSpace(in.PaymentMethod)),
		WalletAddress: utils.StringPtr(strings.TrimSpace(in.WalletAddress)),
		BankDetails:   utils.StringPtr(strings.TrimSpace(in.BankDetails)),
	}
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		tx.ID = 0
		tx.Reference = utils.GenerateReference(prefix, user.ID)
		if err = l.store.CreateTransaction(ctx, tx); !errors.Is(err, storage.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	metrics.RecordTransactionCreated(tx.Type)
	l.log.Info().Uint("user_id", user.ID).Str("reference", tx.Reference).Str("type", tx.Type).Int64("amount", tx.Amount).Msg("transaction submitted")
	return tx, nil
}

func (l *Ledger) checkLimits(user *models.User, in TransactionInput) error {
	switch in.Type {
	case models.TxDeposit:
		if in.Amount < MinDepositAmount {
			return utils.NewError(utils.ErrValidation, "Minimum deposit is 1.00")
		}
	case models.TxWithdrawal:
		if in.Amount < MinWithdrawalAmount {
			return utils.NewError(utils.ErrValidation, "Minimum withdrawal is 10.00")
		}
		if in.Amount > user.Balance {
			return utils.NewError(utils.ErrValidation, "Insufficient balance")
		}
	}
	return nil
}

func (l *Ledger) ListForUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	return l.store.ListTransactionsByUser(ctx, userID)
}

// ListAll returns every transaction, optionally filtered by status.
func (l *Ledger) ListAll(ctx context.Context, status string) ([]models.Transaction, error) {
	if status != "" && !models.ValidTxStatus(status) {
		return nil, utils.NewError(utils.ErrValidation, "invalid status filter")
	}
	return l.store.ListTransactions(ctx, status)
}

// ReviewTransaction applies an admin decision. Reading the current status,
// moving the balance and writing the new status happen in one database
// transaction with the row locked, so concurrent reviews cannot double credit.
func (l *Ledger) ReviewTransaction(ctx context.Context, id uint, status, adminNotes string) (*models.Transaction, error) {
	if !models.ValidTxStatus(status) {
		return nil, utils.NewError(utils.ErrValidation, "status must be one of: pending, approved, completed, rejected, failed")
	}

	var (
		updated *models.Transaction
		prev    string
		effect  BalanceEffect
	)
	err := l.store.WithTx(ctx, func(s storage.Storage) error {
		tx, err := s.GetTransactionForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return utils.NewError(utils.ErrNotFound, "Transaction not found")
			}
			return err
		}
		prev = tx.Status
		effect = ComputeBalanceEffect(tx.Type, tx.Status, status, tx.Amount, l.strict)
		if err := applyEffect(ctx, s, tx.UserID, effect); err != nil {
			return err
		}
		updated, err = s.UpdateTransactionStatus(ctx, id, status, strings.TrimSpace(adminNotes))
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransactionReview(updated.Type, status)
	metrics.RecordBalanceMovement("credit", effect.Credit)
	metrics.RecordBalanceMovement("debit", effect.Debit)
	l.log.Info().
		Uint("transaction_id", id).
		Str("type", updated.Type).
		Str("from", prev).
		Str("to", status).
		Int64("credit", effect.Credit).
		Int64("debit", effect.Debit).
		Msg("transaction reviewed")
	return updated, nil
}

func applyEffect(ctx context.Context, s storage.Storage, userID uint, e BalanceEffect) error {
	var err error
	switch {
	case e.Credit > 0:
		err = s.CreditBalance(ctx, userID, e.Credit)
	case e.Debit > 0 && e.Floored:
		err = s.DebitBalanceFloored(ctx, userID, e.Debit)
	case e.Debit > 0:
		err = s.DebitBalance(ctx, userID, e.Debit)
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return utils.NewError(utils.ErrNotFound, "User not found")
	case errors.Is(err, storage.ErrInsufficientFunds):
		return utils.NewError(utils.ErrValidation, "Insufficient balance")
	}
	return err
}
