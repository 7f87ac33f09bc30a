package auth

import (
	"errors"
	"net/http"
	"strings"

	"geniustrading/logger"
	"geniustrading/metrics"
	"geniustrading/middleware"
	"geniustrading/utils"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	log := logger.For("login")
	username := strings.TrimSpace(req.Username)

	if locked, retry := h.guard.Locked(r.Context(), username); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: "Too many login attempts, please try again later",
			Data:    map[string]interface{}{"retry_after_seconds": int(retry.Seconds())},
		})
		return
	}

	user, err := h.auth.Authenticate(r.Context(), username, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrUnauthorized) {
			h.guard.Fail(r.Context(), username)
			metrics.RecordLoginFailure()
			log.Info().Str("username", username).Msg("failed login")
		}
		utils.WriteError(w, log, err)
		return
	}

	h.guard.Reset(r.Context(), username)
	h.startSession(w, r, http.StatusOK, "Login successful", user)
}
