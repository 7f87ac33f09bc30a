package models

import "time"

type Kyc struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"userId"`
	DocumentType    string    `gorm:"size:32;not null" json:"documentType"`
	DocumentNumber  string    `gorm:"size:64;not null" json:"documentNumber"`
	FullName        string    `gorm:"size:150;not null" json:"fullName"`
	DateOfBirth     string    `gorm:"size:32;not null" json:"dateOfBirth"`
	Nationality     string    `gorm:"size:64;not null" json:"nationality"`
	Address         string    `gorm:"type:text;not null" json:"address"`
	PhoneNumber     string    `gorm:"size:32;not null" json:"phoneNumber"`
	DocumentKey     *string   `gorm:"size:255" json:"documentKey,omitempty"`
	Status          string    `gorm:"size:16;not null;default:'pending';index" json:"status"`
	RejectionReason *string   `gorm:"type:text" json:"rejectionReason"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Kyc) TableName() string {
	return "kyc"
}
