// Package auth is the authentication seam of the application shell. The
// shipped implementations are an anonymous pass-through and a shared token
// checked against a bcrypt hash.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Principal identifies the caller of a request.
type Principal struct {
	Subject   string `json:"subject"`
	Anonymous bool   `json:"anonymous"`
}

// Authenticator resolves the principal of a request. It returns
// ErrUnauthenticated (or an HTTPError) to reject it.
type Authenticator interface {
	Authenticate(r *http.Request) (Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(r *http.Request) (Principal, error)

func (f AuthenticatorFunc) Authenticate(r *http.Request) (Principal, error) {
	return f(r)
}

// Anonymous accepts every request.
func Anonymous() Authenticator {
	return AuthenticatorFunc(func(*http.Request) (Principal, error) {
		return Principal{Subject: "anonymous", Anonymous: true}, nil
	})
}

// TokenCookie is the cookie the token authenticator reads when no
// Authorization header is present.
const TokenCookie = "formdesigner_token"

// Token checks a bearer token (Authorization header or TokenCookie) against a
// bcrypt hash.
type Token struct {
	hash    []byte
	subject string
}

// NewToken builds a token authenticator from a bcrypt hash.
func NewToken(hash string, subject string) (*Token, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, errors.New("auth: token hash is required")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("auth: invalid token hash: %w", err)
	}
	if subject == "" {
		subject = "designer"
	}
	return &Token{hash: []byte(hash), subject: subject}, nil
}

// HashToken returns the bcrypt hash to configure for token.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash token: %w", err)
	}
	return string(hash), nil
}

func (t *Token) Authenticate(r *http.Request) (Principal, error) {
	token := bearer(r)
	if token == "" {
		return Principal{}, ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword(t.hash, []byte(token)); err != nil {
		return Principal{}, fmt.Errorf("%w: token mismatch", ErrUnauthenticated)
	}
	return Principal{Subject: t.subject}, nil
}

func bearer(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
		return ""
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

type contextKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal installed by Middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// Middleware rejects requests the authenticator refuses, answering 401 (with a
// Bearer challenge) or the status carried by the error.
func Middleware(authenticator Authenticator) func(http.Handler) http.Handler {
	if authenticator == nil {
		authenticator = Anonymous()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authenticator.Authenticate(r)
			if err != nil {
				code := StatusCode(err)
				if code == http.StatusUnauthorized {
					w.Header().Set("WWW-Authenticate", `Bearer realm="formdesigner"`)
				}
				http.Error(w, http.StatusText(code), code)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}
