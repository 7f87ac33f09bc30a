package admins

import (
	"net/http"
	"strings"
	"time"

	"geniustrading/logger"
	"geniustrading/middleware"
	"geniustrading/models"
	"geniustrading/utils"
)

const documentURLExpiry = 15 * time.Minute

type KycResponse struct {
	models.Kyc
	DocumentURL string `json:"documentUrl,omitempty"`
}

// GET /api/admin/kyc?status=
func (h *Handler) GetKyc(w http.ResponseWriter, r *http.Request) {
	log := logger.For("admin")
	list, err := h.kyc.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	out := make([]KycResponse, 0, len(list))
	for _, rec := range list {
		item := KycResponse{Kyc: rec}
		if h.docs != nil && rec.DocumentKey != nil {
			url, err := h.docs.PresignURL(r.Context(), *rec.DocumentKey, documentURLExpiry)
			if err != nil {
				// the listing is still useful without the link
				log.Warn().Err(err).Uint("kyc_id", rec.ID).Msg("presign kyc document failed")
			} else {
				item.DocumentURL = url
			}
		}
		out = append(out, item)
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", out)
}

type ReviewKycRequest struct {
	Status          string `json:"status" validate:"required,oneof=pending approved rejected"`
	RejectionReason string `json:"rejectionReason" validate:"max=2000"`
}

// PUT /api/admin/kyc/{id}
func (h *Handler) ReviewKyc(w http.ResponseWriter, r *http.Request) {
	log := logger.For("admin")
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	var req ReviewKycRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	rec, err := h.kyc.Review(r.Context(), id, req.Status, strings.TrimSpace(req.RejectionReason))
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "KYC updated", rec)
}
