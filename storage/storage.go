// Package storage persists users, ledger records, KYC submissions, sessions
// and the public registries. Balance changes are single atomic statements so
// callers can compose them inside WithTx without read-modify-write races.
package storage

import (
	"context"
	"errors"
	"time"

	"geniustrading/models"
)

var (
	ErrNotFound          = errors.New("storage: record not found")
	ErrDuplicate         = errors.New("storage: duplicate record")
	ErrInsufficientFunds = errors.New("storage: insufficient funds")
)

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountAdmins(ctx context.Context) (int64, error)
	UpdateUserRole(ctx context.Context, id uint, role string) (*models.User, error)
	UpdateUserKycStatus(ctx context.Context, id uint, status string) (*models.User, error)
	SetUserBalance(ctx context.Context, id uint, balance int64) (*models.User, error)

	// CreditBalance adds amount to the user's balance.
	CreditBalance(ctx context.Context, id uint, amount int64) error
	// DebitBalance subtracts amount, failing with ErrInsufficientFunds
	// instead of going below zero.
	DebitBalance(ctx context.Context, id uint, amount int64) error
	// DebitBalanceFloored subtracts amount, clamping the result at zero.
	DebitBalanceFloored(ctx context.Context, id uint, amount int64) error
}

type Transactions interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	// GetTransactionForUpdate reads the row with a write lock; use inside WithTx.
	GetTransactionForUpdate(ctx context.Context, id uint) (*models.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID uint) ([]models.Transaction, error)
	ListTransactions(ctx context.Context, status string) ([]models.Transaction, error)
	// UpdateTransactionStatus sets status, and adminNotes only when non-empty.
	UpdateTransactionStatus(ctx context.Context, id uint, status, adminNotes string) (*models.Transaction, error)
}

type Investments interface {
	CreateInvestment(ctx context.Context, inv *models.Investment) error
	ListInvestmentsByUser(ctx context.Context, userID uint) ([]models.Investment, error)
	ListInvestments(ctx context.Context) ([]models.Investment, error)
}

type Kycs interface {
	CreateKyc(ctx context.Context, k *models.Kyc) error
	GetKyc(ctx context.Context, id uint) (*models.Kyc, error)
	// GetLatestKycByUser returns the most recent submission.
	GetLatestKycByUser(ctx context.Context, userID uint) (*models.Kyc, error)
	ListKyc(ctx context.Context, status string) ([]models.Kyc, error)
	// UpdateKycStatus sets status, and rejectionReason only when non-empty.
	UpdateKycStatus(ctx context.Context, id uint, status, rejectionReason string) (*models.Kyc, error)
}

type Registry interface {
	ListDepositAddresses(ctx context.Context) ([]models.DepositAddress, error)
	GetDepositAddressByMethod(ctx context.Context, method string) (*models.DepositAddress, error)
	CreateDepositAddress(ctx context.Context, a *models.DepositAddress) error
	UpdateDepositAddress(ctx context.Context, id uint, address string) (*models.DepositAddress, error)

	ListTestimonials(ctx context.Context) ([]models.Testimonial, error)
	CreateTestimonial(ctx context.Context, t *models.Testimonial) error
}

type Sessions interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	TouchSession(ctx context.Context, id string, lastSeen, expiresAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Storage is the full persistence surface used by the services.
type Storage interface {
	Users
	Transactions
	Investments
	Kycs
	Registry
	Sessions

	// WithTx runs fn against a Storage bound to one database transaction.
	// Returning an error rolls every change back.
	WithTx(ctx context.Context, fn func(Storage) error) error
}
