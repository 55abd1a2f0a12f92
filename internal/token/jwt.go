package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/homescout/internal/model"
)

// DefaultSessionTTL is how long a remembered session stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

const typeSession = "session"

// Claims represents JWT claims with token type and user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	TokenType string    `json:"typ"`
}

var _ model.TokenManager = (*JWT)(nil)

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

// NewJWT creates a session token manager. A non-positive ttl falls back to DefaultSessionTTL.
func NewJWT(secretKey string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &JWT{secretKey: secretKey, ttl: ttl, now: time.Now}
}

// GenerateSessionToken creates a signed token remembering the user.
func (j *JWT) GenerateSessionToken(userID uuid.UUID) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		UserID:    userID,
		TokenType: typeSession,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ParseSessionToken validates the token and extracts the user ID.
func (j *JWT) ParseSessionToken(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return uuid.Nil, fmt.Errorf("%w: %w", model.ErrSessionExpired, err)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: failed to parse session token: %w", model.ErrSessionInvalid, err)
	}
	if !token.Valid {
		return uuid.Nil, model.ErrSessionInvalid
	}
	if claims.TokenType != typeSession {
		return uuid.Nil, fmt.Errorf("%w: token type mismatch: %s", model.ErrSessionInvalid, claims.TokenType)
	}
	if claims.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: no user", model.ErrSessionInvalid)
	}
	return claims.UserID, nil
}
