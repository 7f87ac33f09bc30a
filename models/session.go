package models

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Session is the server-side half of a login. Only the opaque ID leaves the
// server, as a cookie or as the sid claim of a bearer token.
type Session struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	ExpiresAt  time.Time `gorm:"not null;index" json:"expiresAt"`
	LastSeenAt time.Time `gorm:"not null" json:"lastSeenAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Session) TableName() string {
	return "sessions"
}

func NewSession(userID uint, ttl time.Duration) (*Session, error) {
	id, err := generateRandomID(32)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:         id,
		UserID:     userID,
		ExpiresAt:  now.Add(ttl),
		LastSeenAt: now,
		CreatedAt:  now,
	}, nil
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func generateRandomID(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
