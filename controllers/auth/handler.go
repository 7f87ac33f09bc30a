// Package auth serves registration, login and logout.
package auth

import (
	"net/http"
	"time"

	"geniustrading/logger"
	"geniustrading/middleware"
	"geniustrading/models"
	"geniustrading/services"
	"geniustrading/sessions"
	"geniustrading/utils"
)

type Handler struct {
	auth     *services.Auth
	sessions *sessions.Manager
	guard    *middleware.LoginGuard
}

func NewHandler(auth *services.Auth, m *sessions.Manager, guard *middleware.LoginGuard) *Handler {
	return &Handler{auth: auth, sessions: m, guard: guard}
}

type sessionResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	AccessExpire time.Time    `json:"access_expire"`
}

// startSession logs user in on this response and writes the envelope.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, status int, message string, user *models.User) {
	issued, err := h.sessions.Start(r.Context(), w, user)
	if err != nil {
		utils.WriteError(w, logger.For("auth"), err)
		return
	}
	utils.WriteOK(w, status, message, sessionResponse{User: user, AccessToken: issued.Token, AccessExpire: issued.ExpiresAt})
}
