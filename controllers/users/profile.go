package users

import (
	"net/http"

	"geniustrading/middleware"
	"geniustrading/utils"
)

// GET /api/user
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Authentication required"})
		return
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", map[string]interface{}{"user": user})
}
