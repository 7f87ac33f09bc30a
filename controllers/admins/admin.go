// Package admins serves the /api/admin endpoints. Every route is mounted
// behind RequireAdmin.
package admins

import (
	"context"
	"net/http"
	"strings"
	"time"

	"geniustrading/logger"
	"geniustrading/middleware"
	"geniustrading/services"
	"geniustrading/utils"
)

// Presigner produces temporary download links for stored KYC documents.
type Presigner interface {
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type Handler struct {
	auth        *services.Auth
	accounts    *services.Accounts
	ledger      *services.Ledger
	investments *services.Investments
	kyc         *services.Kyc
	registry    *services.Registry
	docs        Presigner
}

type Deps struct {
	Auth        *services.Auth
	Accounts    *services.Accounts
	Ledger      *services.Ledger
	Investments *services.Investments
	Kyc         *services.Kyc
	Registry    *services.Registry
	Documents   Presigner
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		auth:        d.Auth,
		accounts:    d.Accounts,
		ledger:      d.Ledger,
		investments: d.Investments,
		kyc:         d.Kyc,
		registry:    d.Registry,
		docs:        d.Documents,
	}
}

type CreateAdminRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

// POST /api/admin/create-admin
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	log := logger.For("admin")
	user, err := h.auth.CreateAdmin(r.Context(), services.RegisterInput{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	})
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	actor, _ := utils.GetUserID(r)
	log.Info().Uint("actor_id", actor).Uint("admin_id", user.ID).Msg("admin account created")
	utils.WriteOK(w, http.StatusCreated, "Admin created successfully", map[string]interface{}{"user": user})
}
