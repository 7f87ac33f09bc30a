package admins

import (
	"net/http"

	"geniustrading/logger"
	"geniustrading/middleware"
	"geniustrading/utils"
)

// GET /api/admin/users
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		utils.WriteError(w, logger.For("admin"), err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", users)
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// PUT /api/admin/users/{id}/role
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	log := logger.For("admin")
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	var req UpdateRoleRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	user, err := h.accounts.SetRole(r.Context(), id, req.Role)
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	actor, _ := utils.GetUserID(r)
	log.Info().Uint("actor_id", actor).Uint("user_id", id).Str("role", req.Role).Msg("role changed")
	utils.WriteOK(w, http.StatusOK, "User role updated", map[string]interface{}{"user": user})
}

type UpdateKycStatusRequest struct {
	KycStatus string `json:"kycStatus" validate:"required,oneof=pending approved rejected"`
}

// PUT /api/admin/users/{id}/kyc
func (h *Handler) UpdateUserKyc(w http.ResponseWriter, r *http.Request) {
	log := logger.For("admin")
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	var req UpdateKycStatusRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	user, err := h.accounts.SetKycStatus(r.Context(), id, req.KycStatus)
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "User KYC status updated", map[string]interface{}{"user": user})
}

type UpdateBalanceRequest struct {
	Balance *int64 `json:"balance" validate:"required,gte=0"`
}

// PUT /api/admin/users/{id}/balance sets the balance outright.
func (h *Handler) UpdateUserBalance(w http.ResponseWriter, r *http.Request) {
	log := logger.For("admin")
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	var req UpdateBalanceRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	user, err := h.accounts.SetBalance(r.Context(), id, *req.Balance)
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	actor, _ := utils.GetUserID(r)
	log.Warn().Uint("actor_id", actor).Uint("user_id", id).Int64("balance", *req.Balance).Msg("balance overridden")
	utils.WriteOK(w, http.StatusOK, "User balance updated", map[string]interface{}{"user": user})
}
