package models

import "time"

type Testimonial struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Location  string    `gorm:"size:100;not null" json:"location"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Rating    int       `gorm:"not null" json:"rating"`
	Avatar    *string   `gorm:"size:255" json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}
