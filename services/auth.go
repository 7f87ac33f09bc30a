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
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Auth owns credentials: registration, password checks and admin creation.
type Auth struct {
	store storage.Storage
	cost  int
	log   zerolog.Logger
}

func NewAuth(store storage.Storage, bcryptCost int) *Auth {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Auth{store: store, cost: bcryptCost, log: logger.For("auth")}
}

// Register creates a regular user with zero balance and pending KYC.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return a.create(ctx, in, models.RoleUser, models.KycPending)
}

// CreateAdmin creates an account with the admin role.
func (a *Auth) CreateAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	return a.create(ctx, in, models.RoleAdmin, models.KycApproved)
}

func (a *Auth) create(ctx context.Context, in RegisterInput, role, kycStatus string) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	// emails are stored lowercased so uniqueness holds on every backend
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" {
		return nil, utils.NewError(utils.ErrValidation, "Username and email are required")
	}
	if len(in.Password) < 6 {
		return nil, utils.NewError(utils.ErrValidation, "Password must be at least 6 characters")
	}

	if _, err := a.store.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, utils.NewError(utils.ErrConflict, "Username already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if _, err := a.store.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, utils.NewError(utils.ErrConflict, "Email already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: utils.StringPtr(strings.TrimSpace(in.FirstName)),
		LastName:  utils.StringPtr(strings.TrimSpace(in.LastName)),
		Balance:   0,
		Role:      role,
		KycStatus: kycStatus,
		IsActive:  true,
	}
	if err := a.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// lost a race with a concurrent registration
			return nil, utils.NewError(utils.ErrConflict, "Username or email already exists")
		}
		return nil, err
	}
	a.log.Info().Uint("user_id", u.ID).Str("role", role).Msg("user created")
	return u, nil
}

// Authenticate checks username and password. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (a *Auth) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := a.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, utils.NewError(utils.ErrUnauthorized, "Invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, utils.NewError(utils.ErrUnauthorized, "Invalid credentials")
	}
	if !u.IsActive {
		return nil, utils.NewError(utils.ErrForbidden, "Account is disabled")
	}
	return u, nil
}
