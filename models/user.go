package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	KycPending  = "pending"
	KycApproved = "approved"
	KycRejected = "rejected"
)

// User balances are kept in cents and never go negative.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	FirstName *string   `gorm:"size:100" json:"firstName"`
	LastName  *string   `gorm:"size:100" json:"lastName"`
	Balance   int64     `gorm:"not null;default:0;check:chk_users_balance,balance >= 0" json:"balance"`
	Role      string    `gorm:"size:16;not null;default:'user'" json:"role"`
	KycStatus string    `gorm:"size:16;not null;default:'pending'" json:"kycStatus"`
	IsActive  bool      `gorm:"not null;default:true" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

func ValidKycStatus(status string) bool {
	switch status {
	case KycPending, KycApproved, KycRejected:
		return true
	}
	return false
}
