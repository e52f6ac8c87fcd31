package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrSubjectMismatch indicates the validated subject differs from the token claim.
var ErrSubjectMismatch = errors.New("token subject mismatch")

// Validator decides whether a bearer credential is acceptable.
type Validator interface {
	Validate(ctx context.Context, credential Credential) (Principal, error)
}

// LocalValidator verifies tokens in-process with the shared signing secret.
type LocalValidator struct {
	tokens *TokenManager
}

func NewLocalValidator(tokens *TokenManager) *LocalValidator {
	return &LocalValidator{tokens: tokens}
}

func (v *LocalValidator) Validate(_ context.Context, credential Credential) (Principal, error) {
	if v == nil || v.tokens == nil {
		return Principal{}, errors.New("local validator not configured")
	}
	subject, err := v.tokens.Validate(credential.Token())
	if err != nil {
		return Principal{}, err
	}
	return Principal{Subject: subject, Authenticated: true}, nil
}

// TokenIntrospector asks the credential issuer whether a token is valid.
type TokenIntrospector interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// RemoteValidator delegates to the credential issuer over the network.
type RemoteValidator struct {
	issuer TokenIntrospector
}

func NewRemoteValidator(issuer TokenIntrospector) *RemoteValidator {
	return &RemoteValidator{issuer: issuer}
}

func (v *RemoteValidator) Validate(ctx context.Context, credential Credential) (Principal, error) {
	if v == nil || v.issuer == nil {
		return Principal{}, errors.New("remote validator not configured")
	}
	subject, err := v.issuer.ValidateToken(ctx, credential.Token())
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if strings.TrimSpace(subject) == "" {
		// Issuers that answer a bare 2xx vouch for the token without naming its subject.
		subject, err = PeekSubject(credential.Token())
		if err != nil {
			return Principal{}, err
		}
	}
	return Principal{Subject: subject, Authenticated: true}, nil
}

var (
	_ Validator = (*LocalValidator)(nil)
	_ Validator = (*RemoteValidator)(nil)
)
