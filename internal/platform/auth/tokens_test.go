package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tokens, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	subject, err := tokens.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "alice", subject)

	peeked, err := PeekSubject(token)
	require.NoError(t, err)
	require.Equal(t, "alice", peeked)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer, err := NewTokenManager(testSecret, time.Minute, WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)
	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	later, err := NewTokenManager(testSecret, time.Minute, WithClock(func() time.Time { return issuedAt.Add(2 * time.Minute) }))
	require.NoError(t, err)
	_, err = later.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	other, err := NewTokenManager("another-secret-entirely-different-value", time.Hour)
	require.NoError(t, err)
	token, err := other.Issue("mallory")
	require.NoError(t, err)

	tokens, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	_, err = tokens.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsMissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tokens, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	_, err = tokens.Validate(token)
	require.ErrorIs(t, err, ErrMissingSubject)
}

func TestTokenManager_RejectsMissingExpiry(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "alice"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tokens, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	_, err = tokens.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManager_RequiresConfiguration(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	require.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewTokenManager(testSecret, 0)
	require.ErrorIs(t, err, ErrMissingExpiration)
}

func TestPeekSubject_Garbage(t *testing.T) {
	_, err := PeekSubject("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseExpiration(t *testing.T) {
	d, err := ParseExpiration("3600000")
	require.NoError(t, err)
	require.Equal(t, time.Hour, d)

	d, err = ParseExpiration("15m")
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, d)

	_, err = ParseExpiration("-5")
	require.Error(t, err)

	_, err = ParseExpiration("soon")
	require.Error(t, err)
}

func TestLoadSettings_RequiresSecretAndExpiration(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRATION", "3600000")
	_, err := LoadSettings()
	require.ErrorIs(t, err, ErrMissingSecret)

	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_EXPIRATION", "")
	_, err = LoadSettings()
	require.ErrorIs(t, err, ErrMissingExpiration)

	t.Setenv("JWT_EXPIRATION", "3600000")
	settings, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, testSecret, settings.Secret)
	require.Equal(t, time.Hour, settings.Expiration)
}

func TestParseAuthorizationHeader(t *testing.T) {
	credential, err := ParseAuthorizationHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", credential.Token())
	require.Equal(t, "Bearer abc.def.ghi", credential.AuthorizationHeader())
	require.Equal(t, "Bearer ***", credential.String())

	for _, header := range []string{"", "Basic Zm9vOmJhcg==", "Bearer ", "bearer abc"} {
		_, err := ParseAuthorizationHeader(header)
		require.ErrorIs(t, err, ErrMissingCredential, header)
	}
}
