package auth

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrMissingSubject    = errors.New("token subject missing")
	ErrMissingSecret     = errors.New("JWT_SECRET is required")
	ErrMissingExpiration = errors.New("JWT_EXPIRATION is required")
)

// TokenManager issues and validates HS256 signed tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*TokenManager)

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewTokenManager requires both a secret and a positive lifetime.
func NewTokenManager(secret string, ttl time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		return nil, ErrMissingExpiration
	}
	m := &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Issue signs a token for subject that expires after the configured lifetime.
func (m *TokenManager) Issue(subject string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", ErrMissingSubject
	}
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate checks signature, expiry and subject, returning the subject.
func (m *TokenManager) Validate(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

// PeekSubject reads the subject claim without verifying the signature.
// Callers must still validate the token before trusting it.
func PeekSubject(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

// Settings holds the token configuration every process must provide.
type Settings struct {
	Secret     string
	Expiration time.Duration
}

// LoadSettings reads JWT_SECRET and JWT_EXPIRATION. Both are mandatory.
func LoadSettings() (Settings, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return Settings{}, ErrMissingSecret
	}
	rawExpiration := strings.TrimSpace(os.Getenv("JWT_EXPIRATION"))
	if rawExpiration == "" {
		return Settings{}, ErrMissingExpiration
	}
	expiration, err := ParseExpiration(rawExpiration)
	if err != nil {
		return Settings{}, err
	}
	return Settings{Secret: secret, Expiration: expiration}, nil
}

// ParseExpiration accepts a Go duration ("1h") or a bare number of milliseconds.
func ParseExpiration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if millis <= 0 {
			return 0, fmt.Errorf("JWT_EXPIRATION must be positive")
		}
		return time.Duration(millis) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("JWT_EXPIRATION must be a positive duration or millisecond count")
	}
	return d, nil
}
