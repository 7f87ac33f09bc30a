package services

import (
	"context"
	"errors"
	"strings"

	"geniustrading/logger"
	"geniustrading/models"
	"geniustrading/storage"
	"geniustrading/utils"

	"github.com/rs/zerolog"
)

// Accounts holds the admin overrides on user records.
type Accounts struct {
	store storage.Storage
	log   zerolog.Logger
}

func NewAccounts(store storage.Storage) *Accounts {
	return &Accounts{store: store, log: logger.For("accounts")}
}

func (a *Accounts) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := a.store.GetUser(ctx, id)
	return u, userErr(err)
}

func (a *Accounts) List(ctx context.Context) ([]models.User, error) {
	return a.store.ListUsers(ctx)
}

func (a *Accounts) SetRole(ctx context.Context, id uint, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, utils.NewError(utils.ErrValidation, "role must be user or admin")
	}
	u, err := a.store.UpdateUserRole(ctx, id, role)
	if err != nil {
		return nil, userErr(err)
	}
	a.log.Info().Uint("user_id", id).Str("role", role).Msg("role changed")
	return u, nil
}

// SetKycStatus overrides the user's kycStatus without touching KYC records.
func (a *Accounts) SetKycStatus(ctx context.Context, id uint, status string) (*models.User, error) {
	if !models.ValidKycStatus(status) {
		return nil, utils.NewError(utils.ErrValidation, "kycStatus must be one of: pending, approved, rejected")
	}
	u, err := a.store.UpdateUserKycStatus(ctx, id, status)
	if err != nil {
		return nil, userErr(err)
	}
	a.log.Info().Uint("user_id", id).Str("kyc_status", status).Msg("kyc status overridden")
	return u, nil
}

func (a *Accounts) SetBalance(ctx context.Context, id uint, balance int64) (*models.User, error) {
	if balance < 0 {
		return nil, utils.NewError(utils.ErrValidation, "balance cannot be negative")
	}
	u, err := a.store.SetUserBalance(ctx, id, balance)
	if err != nil {
		return nil, userErr(err)
	}
	a.log.Warn().Uint("user_id", id).Int64("balance", balance).Msg("balance overridden")
	return u, nil
}

func userErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return utils.NewError(utils.ErrNotFound, "User not found")
	}
	return err
}

// Registry serves deposit addresses and testimonials.
type Registry struct {
	store storage.Storage
}

func NewRegistry(store storage.Storage) *Registry {
	return &Registry{store: store}
}

func (r *Registry) DepositAddresses(ctx context.Context) ([]models.DepositAddress, error) {
	return r.store.ListDepositAddresses(ctx)
}

func (r *Registry) DepositAddress(ctx context.Context, method string) (*models.DepositAddress, error) {
	a, err := r.store.GetDepositAddressByMethod(ctx, strings.TrimSpace(method))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewError(utils.ErrNotFound, "Deposit address not found")
	}
	return a, err
}

// CreateDepositAddress does not reject a second address for the same method.
func (r *Registry) CreateDepositAddress(ctx context.Context, method, address string) (*models.DepositAddress, error) {
	method, address = strings.TrimSpace(method), strings.TrimSpace(address)
	if method == "" || address == "" {
		return nil, utils.NewError(utils.ErrValidation, "method and address are required")
	}
	a := &models.DepositAddress{Method: method, Address: address}
	if err := r.store.CreateDepositAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Registry) UpdateDepositAddress(ctx context.Context, id uint, address string) (*models.DepositAddress, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, utils.NewError(utils.ErrValidation, "address is required")
	}
	a, err := r.store.UpdateDepositAddress(ctx, id, address)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewError(utils.ErrNotFound, "Deposit address not found")
	}
	return a, err
}

func (r *Registry) Testimonials(ctx context.Context) ([]models.Testimonial, error) {
	return r.store.ListTestimonials(ctx)
}

func (r *Registry) CreateTestimonial(ctx context.Context, t *models.Testimonial) error {
	if t.Rating < 1 || t.Rating > 5 {
		return utils.NewError(utils.ErrValidation, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.Message) == "" {
		return utils.NewError(utils.ErrValidation, "name and message are required")
	}
	return r.store.CreateTestimonial(ctx, t)
}
