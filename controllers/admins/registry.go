package admins

import (
	"net/http"
	"strings"

	"geniustrading/logger"
	"geniustrading/middleware"
	"geniustrading/models"
	"geniustrading/utils"
)

type CreateDepositAddressRequest struct {
	Method  string `json:"method" validate:"required,max=32"`
	Address string `json:"address" validate:"required,max=500"`
}

// POST /api/admin/deposit-addresses
func (h *Handler) CreateDepositAddress(w http.ResponseWriter, r *http.Request) {
	var req CreateDepositAddressRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	addr, err := h.registry.CreateDepositAddress(r.Context(), strings.TrimSpace(req.Method), strings.TrimSpace(req.Address))
	if err != nil {
		utils.WriteError(w, logger.For("admin"), err)
		return
	}
	utils.WriteOK(w, http.StatusCreated, "Deposit address created", addr)
}

type UpdateDepositAddressRequest struct {
	Address string `json:"address" validate:"required,max=500"`
}

// PUT /api/admin/deposit-addresses/{id}
func (h *Handler) UpdateDepositAddress(w http.ResponseWriter, r *http.Request) {
	log := logger.For("admin")
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	var req UpdateDepositAddressRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	addr, err := h.registry.UpdateDepositAddress(r.Context(), id, strings.TrimSpace(req.Address))
	if err != nil {
		utils.WriteError(w, log, err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Deposit address updated", addr)
}

type CreateTestimonialRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Location string `json:"location" validate:"required,max=100"`
	Message  string `json:"message" validate:"required,max=2000"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Avatar   string `json:"avatar" validate:"max=255"`
}

// POST /api/admin/testimonials
func (h *Handler) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var req CreateTestimonialRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	t := &models.Testimonial{
		Name:     strings.TrimSpace(req.Name),
		Location: strings.TrimSpace(req.Location),
		Message:  strings.TrimSpace(req.Message),
		Rating:   req.Rating,
		Avatar:   utils.StringPtr(strings.TrimSpace(req.Avatar)),
	}
	if err := h.registry.CreateTestimonial(r.Context(), t); err != nil {
		utils.WriteError(w, logger.For("admin"), err)
		return
	}
	utils.WriteOK(w, http.StatusCreated, "Testimonial created", t)
}
