package auth

import (
	"net/http"

	"geniustrading/logger"
	"geniustrading/utils"
)

// Logout deletes the server-side session, which revokes both the cookie and
// any bearer token issued for it. Logging out without a session succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		utils.WriteError(w, logger.For("logout"), err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Logged out successfully", nil)
}
