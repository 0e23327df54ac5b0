package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AjaySisodiyaa/ourTubeApi/internal/models"
)

// DefaultTokenTTL keeps tokens valid for a year, matching the long-lived
// sessions the web client expects.
const DefaultTokenTTL = 365 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims embeds a profile snapshot so the client can render the signed-in
// channel without a follow-up request. The snapshot reflects the profile at
// issue time; the channel id in Subject is the only authoritative field.
type Claims struct {
	ChannelName string `json:"channelName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*TokenManager)

// WithTokenTTL overrides the default token lifetime.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(m *TokenManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewTokenManager(secret string, opts ...TokenOption) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("token secret required")
	}
	manager := &TokenManager{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(manager)
	}
	return manager, nil
}

// Issue signs a token for the channel.
func (m *TokenManager) Issue(channel models.Channel) (string, error) {
	now := m.now()
	claims := Claims{
		ChannelName: channel.ChannelName,
		Email:       channel.Email,
		Phone:       channel.Phone,
		LogoURL:     channel.LogoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   channel.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and returns its claims. Expired, malformed, or
// differently-signed tokens all map to ErrInvalidToken.
func (m *TokenManager) Verify(tokenString string) (Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(token *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
