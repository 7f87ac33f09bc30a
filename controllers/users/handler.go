// Package users serves the authenticated user's own resources.
package users

import (
	"context"
	"io"

	"geniustrading/services"
)

// DocumentStore receives uploaded KYC documents. Nil disables uploads.
type DocumentStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

type Handler struct {
	ledger      *services.Ledger
	investments *services.Investments
	kyc         *services.Kyc
	docs        DocumentStore
}

func NewHandler(ledger *services.Ledger, investments *services.Investments, kyc *services.Kyc, docs DocumentStore) *Handler {
	return &Handler{ledger: ledger, investments: investments, kyc: kyc, docs: docs}
}
