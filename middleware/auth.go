package middleware

import (
	"context"
	"errors"
	"net/http"

	"geniustrading/logger"
	"geniustrading/models"
	"geniustrading/sessions"
	"geniustrading/storage"
	"geniustrading/utils"
)

// Authenticator resolves the request's session and loads the current user.
// Only the user id lives in the session; everything else is read fresh on
// each request so role and status changes apply immediately.
type Authenticator struct {
	sessions *sessions.Manager
	users    storage.Users
}

func NewAuthenticator(m *sessions.Manager, users storage.Users) *Authenticator {
	return &Authenticator{sessions: m, users: users}
}

func unauthorized(w http.ResponseWriter) {
	utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Authentication required"})
}

// authenticate writes the failure response itself and returns nil on failure.
func (a *Authenticator) authenticate(w http.ResponseWriter, r *http.Request) *http.Request {
	log := logger.For("auth")
	sess, err := a.sessions.Resolve(r.Context(), w, r)
	if err != nil {
		if !errors.Is(err, sessions.ErrNoSession) {
			log.Error().Err(err).Str("request_id", utils.GetRequestID(r)).Msg("session lookup failed")
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
			return nil
		}
		unauthorized(w)
		return nil
	}
	user, err := a.users.GetUser(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			unauthorized(w)
			return nil
		}
		log.Error().Err(err).Uint("user_id", sess.UserID).Msg("load session user failed")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return nil
	}
	if !user.IsActive {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Account is disabled"})
		return nil
	}

	ctx := context.WithValue(r.Context(), utils.UserIDKey, user.ID)
	ctx = context.WithValue(ctx, utils.UserRoleKey, user.Role)
	ctx = context.WithValue(ctx, utils.UserKey, user)
	ctx = context.WithValue(ctx, utils.SessionIDKey, sess.ID)
	return r.WithContext(ctx)
}

// RequireAuth rejects requests without a live session with 401.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r = a.authenticate(w, r); r == nil {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the user loaded by RequireAuth.
func CurrentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(utils.UserKey).(*models.User)
	return u, ok && u != nil
}
