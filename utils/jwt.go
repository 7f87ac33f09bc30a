package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// SessionClaims is the bearer form of a server-side session. The token is
// only valid while the session it names still exists.
type SessionClaims struct {
	UserID    uint   `json:"id"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type TokenSigner struct {
	secret   []byte
	audience string
	issuer   string
}

func NewTokenSigner(secret, audience, issuer string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), audience: audience, issuer: issuer}
}

// Issue signs an HS256 token for the session, expiring with it.
func (s *TokenSigner) Issue(userID uint, role, sessionID string, expiresAt time.Time) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("token secret is not set")
	}
	now := time.Now()
	claims := SessionClaims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        sessionID,
			Issuer:    s.issuer,
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses the token and checks signature, exp, nbf, aud and iss.
func (s *TokenSigner) Validate(tokenStr string) (*SessionClaims, error) {
	opts := []jwt.ParserOption{
		// exact HS256 only, to avoid algorithm confusion
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
