// Package auth supplies the bearer token the remote API client attaches to
// each call. The client never reads ambient state: it asks a
// CredentialProvider, which is either the incoming request (ContextProvider)
// or the last token seen for a caja (StoreProvider, used by background jobs).
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSesionExpirada means the remote API rejected the token (401) or the
	// token's exp claim is in the past. The UI must log in again.
	ErrSesionExpirada = errors.New("sesión expirada")
	// ErrSinCredenciales means no token is available for the call.
	ErrSinCredenciales = errors.New("sin credenciales")
)

// CredentialProvider returns the bearer token for the current operation.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to CredentialProvider.
type ProviderFunc func(ctx context.Context) (string, error)

func (f ProviderFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Static always returns the same token; used by the CLI and tests.
func Static(token string) CredentialProvider {
	return ProviderFunc(func(context.Context) (string, error) {
		if token == "" {
			return "", ErrSinCredenciales
		}
		return token, nil
	})
}

// ── Request-scoped token ──────────────────────────────────────────────────────

type tokenKey struct{}

// WithToken returns a copy of ctx carrying token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token stored by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenKey{}).(string)
	return tok, ok && tok != ""
}

// ContextProvider reads the token placed in the context by the gateway's
// bearer middleware. It is the provider used on the request path.
type ContextProvider struct {
	now func() time.Time
}

func NewContextProvider() *ContextProvider {
	return &ContextProvider{now: time.Now}
}

func (p *ContextProvider) Token(ctx context.Context) (string, error) {
	tok, ok := TokenFromContext(ctx)
	if !ok {
		return "", ErrSinCredenciales
	}
	if err := VerificarExpiracion(tok, p.now()); err != nil {
		return "", err
	}
	return tok, nil
}

// ── Expiry ───────────────────────────────────────────────────────────────────

// VerificarExpiracion inspects a JWT without verifying its signature (the
// gateway does not hold the signing key) and fails with ErrSesionExpirada when
// exp is in the past. Opaque, non-JWT tokens pass through unchecked.
func VerificarExpiracion(token string, now time.Time) error {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return ErrSesionExpirada
	}
	return nil
}
