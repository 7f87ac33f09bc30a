package models

import "time"

// DepositAddress is where users are told to send funds for a payment method.
// Method is not unique; lookups return the oldest row.
type DepositAddress struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Method    string    `gorm:"size:32;not null;index" json:"method"`
	Address   string    `gorm:"type:text;not null" json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (DepositAddress) TableName() string {
	return "deposit_addresses"
}
