package admins

import (
	"net/http"
	"strings"

	"geniustrading/logger"
	"geniustrading/middleware"
	"geniustrading/utils"
)

// GET /api/admin/transactions?status=
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	list, err := h.ledger.ListAll(r.Context(), status)
	if err != nil {
		utils.WriteError(w, logger.For("admin"), err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", list)
}

type ReviewTransactionRequest struct {
	Status     string `json:"status" validate:"required,oneof=pending approved completed rejected failed"`
	AdminNotes string `json:"adminNotes" validate:"max=2000"`
}

// PUT /api/admin/transactions/{id}
func (h *Handler) ReviewTransaction(w http.ResponseWriter, r *http.Request) {
	log := logger.For("admin")
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	var req ReviewTransactionRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	tx, err := h.ledger.ReviewTransaction(r.Context(), id, req.Status, strings.TrimSpace(req.AdminNotes))
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Transaction updated", tx)
}
