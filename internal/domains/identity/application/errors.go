package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-order-service/internal/domains/identity/ports"
)

var (
	// ErrAuthentication wraps login failures.
	ErrAuthentication = errors.New("authentication failed")
	// ErrInvalidToken wraps every token that does not validate.
	ErrInvalidToken = errors.New("invalid token")
)

func mapLoginError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrNotFound) || errors.Is(err, ports.ErrInvalidCredentials) {
		return fmt.Errorf("%w: %w", ErrAuthentication, ports.ErrInvalidCredentials)
	}
	return err
}
