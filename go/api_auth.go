package orderserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	identityapp "github.com/Apurer/go-gin-order-service/internal/domains/identity/application"
	identityports "github.com/Apurer/go-gin-order-service/internal/domains/identity/ports"
)

const (
	messageLoginSucceeded     = "Login successful"
	messageInvalidCredentials = "Invalid credentials"
	maxTokenBytes             = 16 << 10
)

// AuthAPI exposes the credential issuer.
type AuthAPI struct {
	service identityports.Service
}

func NewAuthAPI(service identityports.Service) *AuthAPI {
	return &AuthAPI{service: service}
}

// Post /api/v1/auth/login
// Exchange username and password for a token
func (api *AuthAPI) Login(c *gin.Context) {
	var payload LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	token, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, identityapp.ErrAuthentication) {
			c.JSON(http.StatusUnauthorized, AuthResponse{Message: messageInvalidCredentials})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: &token, Message: messageLoginSucceeded})
}

// Post /api/v1/auth/validate
// Validate a raw token carried in the request body
func (api *AuthAPI) Validate(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTokenBytes))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	token := strings.TrimPrefix(strings.TrimSpace(string(raw)), "Bearer ")
	subject, err := api.service.Validate(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ValidationResponse{Valid: false})
		return
	}
	c.JSON(http.StatusOK, ValidationResponse{Valid: true, Subject: subject})
}
