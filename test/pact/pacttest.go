//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

const (
	ConsumerName          = "order-service"
	InventoryProviderName = "inventory-service"
	IAMProviderName       = "iam-service"

	StateSKUInStock      = "SKU-1 has 10 units in stock"
	StateSKUMissing      = "SKU-404 is not stocked"
	StateUserExists      = "user pact-user exists"
	StateTokenIssued     = "a token was issued to pact-user"
	StateNoTokenAccepted = "no token is accepted"
)

const (
	InStockSKU = "SKU-1"
	MissingSKU = "SKU-404"

	Username = "pact-user"
	Password = "pact-pass"

	// TokenSecret and TokenIssuedAt make the issued token byte-for-byte reproducible
	// on both sides of the contract.
	TokenSecret = "pact-shared-secret"
)

// TokenIssuedAt is the fixed clock the contract token is minted and checked with.
var TokenIssuedAt = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

// TokenManager returns the deterministic token manager used by consumer and provider.
func TokenManager(t testing.TB) *auth.TokenManager {
	t.Helper()
	tokens, err := auth.NewTokenManager(TokenSecret, time.Hour, auth.WithClock(func() time.Time { return TokenIssuedAt }))
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return tokens
}

// ValidToken is the token the contract records for pact-user.
func ValidToken(t testing.TB) string {
	t.Helper()
	token, err := TokenManager(t).Issue(Username)
	if err != nil {
		t.Fatalf("issue contract token: %v", err)
	}
	return token
}

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path between the order service and provider.
func PactFile(t testing.TB, provider string) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+provider+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
