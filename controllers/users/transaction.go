package users

import (
	"net/http"
	"strings"

	"geniustrading/logger"
	"geniustrading/middleware"
	"geniustrading/services"
	"geniustrading/utils"
)

type CreateTransactionRequest struct {
	Type          string `json:"type" validate:"required,oneof=deposit withdrawal"`
	Amount        int64  `json:"amount" validate:"gt=0"`
	Currency      string `json:"currency" validate:"max=8"`
	PaymentMethod string `json:"paymentMethod" validate:"required,max=32"`
	WalletAddress string `json:"walletAddress" validate:"max=255"`
	BankDetails   string `json:"bankDetails" validate:"max=2000"`
}

// POST /api/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r)
	var req CreateTransactionRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	tx, err := h.ledger.CreateTransaction(r.Context(), user, services.TransactionInput{
		Type:          req.Type,
		Amount:        req.Amount,
		Currency:      strings.TrimSpace(req.Currency),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		WalletAddress: strings.TrimSpace(req.WalletAddress),
		BankDetails:   strings.TrimSpace(req.BankDetails),
	})
	if err != nil {
		utils.WriteError(w, logger.For("transactions"), err)
		return
	}
	utils.WriteOK(w, http.StatusCreated, "Transaction created", tx)
}

// GET /api/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid, _ := utils.GetUserID(r)
	list, err := h.ledger.ListForUser(r.Context(), uid)
	if err != nil {
		utils.WriteError(w, logger.For("transactions"), err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", list)
}
