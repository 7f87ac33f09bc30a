package controllers

import (
	"net/http"
	"strings"

	"geniustrading/middleware"
	"geniustrading/services"
	"geniustrading/utils"
)

// PlanListHandler returns the investment plan catalogue.
func PlanListHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteOK(w, http.StatusOK, "Successfully", services.Plans())
}

type QuoteRequest struct {
	PlanType string `json:"planType" validate:"required,max=32"`
	Amount   int64  `json:"amount" validate:"gt=0"`
}

// PlanQuoteHandler previews the returns of investing amount in a plan.
func PlanQuoteHandler(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	q, ok := services.QuotePlan(strings.TrimSpace(req.PlanType), req.Amount)
	if !ok {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Plan not found"})
		return
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", q)
}
