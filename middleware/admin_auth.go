package middleware

import (
	"net/http"

	"geniustrading/logger"
	"geniustrading/utils"
)

// RequireAdmin authenticates the request and then requires the admin role,
// answering 403 for everyone else before any handler runs.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r = a.authenticate(w, r); r == nil {
			return
		}
		user, _ := CurrentUser(r)
		if !user.IsAdmin() {
			log := logger.For("auth")
			log.Warn().
				Uint("user_id", user.ID).
				Str("path", r.URL.Path).
				Msg("admin route denied")
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
