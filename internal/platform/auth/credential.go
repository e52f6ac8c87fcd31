// Package auth carries bearer credentials across service boundaries and
// guards inbound HTTP requests.
package auth

import (
	"errors"
	"strings"
)

const bearerPrefix = "Bearer "

// ErrMissingCredential indicates no usable bearer token was supplied.
var ErrMissingCredential = errors.New("bearer credential missing")

// Credential is an opaque bearer token. It is forwarded verbatim to
// downstream services and never minted by this process on a caller's behalf.
type Credential string

// ParseAuthorizationHeader extracts the token from an "Authorization: Bearer" value.
func ParseAuthorizationHeader(header string) (Credential, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMissingCredential
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrMissingCredential
	}
	return Credential(token), nil
}

// IsZero reports whether no token is present.
func (c Credential) IsZero() bool {
	return strings.TrimSpace(string(c)) == ""
}

// Token returns the raw token.
func (c Credential) Token() string {
	return string(c)
}

// AuthorizationHeader renders the header value for outbound requests.
func (c Credential) AuthorizationHeader() string {
	return bearerPrefix + string(c)
}

// String keeps tokens out of logs.
func (c Credential) String() string {
	if c.IsZero() {
		return ""
	}
	return "Bearer ***"
}

// Principal is the authenticated identity bound to a request.
type Principal struct {
	Subject       string
	Authenticated bool
}
