package admins

import (
	"net/http"

	"geniustrading/logger"
	"geniustrading/utils"
)

// GET /api/admin/investments
func (h *Handler) GetInvestments(w http.ResponseWriter, r *http.Request) {
	list, err := h.investments.ListAll(r.Context())
	if err != nil {
		utils.WriteError(w, logger.For("admin"), err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", list)
}
