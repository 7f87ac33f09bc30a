package users

import (
	"net/http"
	"strings"

	"geniustrading/logger"
	"geniustrading/middleware"
	"geniustrading/services"
	"geniustrading/utils"
)

type CreateInvestmentRequest struct {
	PlanType    string `json:"planType" validate:"required,max=32"`
	Amount      int64  `json:"amount" validate:"gt=0"`
	DailyReturn int64  `json:"dailyReturn" validate:"gte=0"`
	Duration    int    `json:"duration" validate:"gte=0"`
}

// POST /api/investments
func (h *Handler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	var req CreateInvestmentRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	inv, err := h.investments.Create(r.Context(), user, services.InvestmentInput{
		PlanType:    strings.TrimSpace(req.PlanType),
		Amount:      req.Amount,
		DailyReturn: req.DailyReturn,
		Duration:    req.Duration,
	})
	if err != nil {
		utils.WriteError(w, logger.For("investments"), err)
		return
	}
	utils.WriteOK(w, http.StatusCreated, "Investment created", inv)
}

// GET /api/investments
func (h *Handler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	uid, _ := utils.GetUserID(r)
	list, err := h.investments.ListForUser(r.Context(), uid)
	if err != nil {
		utils.WriteError(w, logger.For("investments"), err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", list)
}
