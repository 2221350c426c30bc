package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storeadmin/backend/internal/infrastructure/config"
)

// TokenType represents the type of a locally issued token
type TokenType string

const (
	TokenTypeID      TokenType = "id"
	TokenTypeSession TokenType = "session"
)

// IDTokenExpiration bounds the window between sign-in and session creation
const IDTokenExpiration = 5 * time.Minute

// Token errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrMissingUID       = errors.New("missing uid in claims")
)

// Claims represents the JWT claims of local tokens
type Claims struct {
	jwt.RegisteredClaims
	UID       string    `json:"uid"`
	Email     string    `json:"email,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// IssuedAtTime returns the issued-at claim
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// ExpiresAtTime returns the expiration claim
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// RemainingTTL returns the time until the token expires
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if remaining := time.Until(c.ExpiresAt.Time); remaining > 0 {
		return remaining
	}
	return 0
}

// TokenService signs and validates HS256 tokens for the local identity provider
type TokenService struct {
	secret  []byte
	issuer  string
	session time.Duration
	now     func() time.Time
}

// NewTokenService creates a token service
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret:  []byte(cfg.Secret),
		issuer:  cfg.Issuer,
		session: cfg.SessionExpiration,
		now:     time.Now,
	}
}

// SessionExpiration returns the default session lifetime
func (s *TokenService) SessionExpiration() time.Duration {
	return s.session
}

// Issue signs a token of the given type for uid
func (s *TokenService) Issue(tokenType TokenType, uid, email string, ttl time.Duration) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   uid,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UID:       uid,
		Email:     email,
		TokenType: tokenType,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Validate parses a token and checks its signature, lifetime and type
func (s *TokenService) Validate(tokenString string, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expected {
		return nil, ErrInvalidTokenType
	}
	if claims.UID == "" {
		return nil, ErrMissingUID
	}
	return claims, nil
}
