package models

import "time"

const (
	InvestmentActive    = "active"
	InvestmentCompleted = "completed"
	InvestmentPaused    = "paused"
)

// Investment is immutable once created. DailyReturn is an absolute amount in
// cents per day, declared at creation and never accrued.
type Investment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	PlanType    string    `gorm:"size:32;not null" json:"planType"`
	Amount      int64     `gorm:"not null" json:"amount"`
	DailyReturn int64     `gorm:"not null" json:"dailyReturn"`
	Duration    int       `gorm:"not null" json:"duration"`
	Status      string    `gorm:"size:16;not null;default:'active'" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Investment) TableName() string {
	return "investments"
}
