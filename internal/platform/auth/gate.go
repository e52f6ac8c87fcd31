package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/go-gin-order-service/internal/shared/errors"
)

const (
	principalKey  = "auth.principal"
	credentialKey = "auth.credential"
)

// DefaultExemptPrefixes are never inspected by the gate.
var DefaultExemptPrefixes = []string{"/healthz", "/readyz", "/actuator", "/api/v1/auth"}

// Gate is the inbound credential filter. It is parameterized by a Validator
// so local and remote validation share one code path.
type Gate struct {
	validator Validator
	exempt    []string
	logger    *slog.Logger
}

type GateOption func(*Gate)

func WithExemptPrefixes(prefixes ...string) GateOption {
	return func(g *Gate) {
		g.exempt = append([]string(nil), prefixes...)
	}
}

func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

func NewGate(validator Validator, opts ...GateOption) *Gate {
	g := &Gate{
		validator: validator,
		exempt:    DefaultExemptPrefixes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Middleware binds a principal for requests carrying a valid bearer token.
// Requests without a bearer header pass through unauthenticated; a present
// but unusable token is rejected with 401.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.isExempt(c.Request.URL.Path) {
			c.Next()
			return
		}
		credential, err := ParseAuthorizationHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.Next()
			return
		}
		principal, err := g.authenticate(c, credential)
		if err != nil {
			g.logWarn(c.Request.Context(), "rejected bearer credential",
				slog.String("path", c.Request.URL.Path), slog.String("error", err.Error()))
			apierrors.Abort(c, apierrors.ErrUnauthorized.WithDetail("Invalid or expired token"))
			return
		}
		c.Set(principalKey, principal)
		c.Set(credentialKey, credential)
		c.Next()
	}
}

// RequirePrincipal rejects requests the gate did not authenticate.
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, ok := PrincipalFromGin(c); ok && principal.Authenticated {
			c.Next()
			return
		}
		apierrors.Abort(c, apierrors.ErrUnauthorized.WithDetail("Authentication required"))
	}
}

// authenticate never lets a validator panic escape the gate.
func (g *Gate) authenticate(c *gin.Context, credential Credential) (principal Principal, err error) {
	defer func() {
		if r := recover(); r != nil {
			principal = Principal{}
			err = fmt.Errorf("%w: validator panic: %v", ErrInvalidToken, r)
		}
	}()
	subject, err := PeekSubject(credential.Token())
	if err != nil {
		return Principal{}, err
	}
	if existing, ok := PrincipalFromGin(c); ok && existing.Authenticated {
		return existing, nil
	}
	if g.validator == nil {
		return Principal{}, fmt.Errorf("%w: no validator configured", ErrInvalidToken)
	}
	validated, err := g.validator.Validate(c.Request.Context(), credential)
	if err != nil {
		return Principal{}, err
	}
	if validated.Subject != "" && validated.Subject != subject {
		return Principal{}, ErrSubjectMismatch
	}
	return Principal{Subject: subject, Authenticated: true}, nil
}

func (g *Gate) isExempt(path string) bool {
	for _, prefix := range g.exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *Gate) logWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	if g.logger == nil {
		return
	}
	g.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

// PrincipalFromGin returns the principal bound by the gate, if any.
func PrincipalFromGin(c *gin.Context) (Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok
}

// CredentialFromGin returns the credential the gate accepted for this request.
func CredentialFromGin(c *gin.Context) (Credential, bool) {
	value, ok := c.Get(credentialKey)
	if !ok {
		return "", false
	}
	credential, ok := value.(Credential)
	return credential, ok
}
