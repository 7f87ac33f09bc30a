package models

import "time"

const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
	TxProfit     = "profit"
)

const (
	TxPending   = "pending"
	TxApproved  = "approved"
	TxCompleted = "completed"
	TxRejected  = "rejected"
	TxFailed    = "failed"
)

type Transaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"userId"`
	Reference     string    `gorm:"size:64;not null;uniqueIndex" json:"reference"`
	Type          string    `gorm:"size:16;not null" json:"type"`
	Amount        int64     `gorm:"not null" json:"amount"`
	Currency      string    `gorm:"size:8;not null;default:'USD'" json:"currency"`
	Status        string    `gorm:"size:16;not null;default:'pending';index" json:"status"`
	PaymentMethod *string   `gorm:"size:32" json:"paymentMethod"`
	WalletAddress *string   `gorm:"size:255" json:"walletAddress"`
	BankDetails   *string   `gorm:"type:text" json:"bankDetails"`
	AdminNotes    *string   `gorm:"type:text" json:"adminNotes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func ValidTxStatus(status string) bool {
	switch status {
	case TxPending, TxApproved, TxCompleted, TxRejected, TxFailed:
		return true
	}
	return false
}
