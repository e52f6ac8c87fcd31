package iam

import (
	"fmt"
	"os"
	"strings"

	identitydomain "github.com/Apurer/go-gin-order-service/internal/domains/identity/domain"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

// Config carries environment-driven settings for the credential issuer.
type Config struct {
	Port  string
	Auth  auth.Settings
	Users []*identitydomain.User
}

// LoadConfig reads PORT, the token settings and the IAM_USERS directory.
func LoadConfig() (Config, error) {
	settings, err := auth.LoadSettings()
	if err != nil {
		return Config{}, err
	}
	users, err := identitydomain.ParseDirectory(os.Getenv("IAM_USERS"))
	if err != nil {
		return Config{}, fmt.Errorf("IAM_USERS: %w", err)
	}
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8083"
	}
	return Config{Port: port, Auth: settings, Users: users}, nil
}
