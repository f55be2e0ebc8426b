// Package auth issues and checks the credentials that gate the API. Two
// strategies share one Verifier interface: stateless JWTs and server-side
// sessions held in a remote store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNoCredential means the request carried no token at all.
	ErrNoCredential = errors.New("no credential provided")

	// ErrInvalidCredential covers bad signatures, expiry and unknown sessions.
	ErrInvalidCredential = errors.New("invalid credential")
)

const (
	StrategyJWT     = "jwt"
	StrategySession = "session"

	// SessionCookie is the cookie the session strategy sets and reads.
	SessionCookie = "sid"
)

// Credential is what a successful login hands back to the client.
type Credential struct {
	Token     string
	ExpiresAt time.Time
	// Cookie is set by strategies that also want a browser cookie.
	Cookie *http.Cookie
}

// Verifier issues credentials for an authenticated subject and resolves a
// presented credential back to its subject.
type Verifier interface {
	Issue(ctx context.Context, subject string) (Credential, error)
	Verify(ctx context.Context, r *http.Request) (subject string, err error)
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Options configures NewVerifier.
type Options struct {
	Strategy      string
	JWTSecret     string
	TokenTTL      time.Duration
	SessionSecret string
	SessionTTL    time.Duration
	SessionStore  SessionStore
	SecureCookie  bool
}

// NewVerifier builds the verifier named by opts.Strategy.
func NewVerifier(opts Options) (Verifier, error) {
	switch opts.Strategy {
	case "", StrategyJWT:
		return NewJWTVerifier(opts.JWTSecret, opts.TokenTTL)
	case StrategySession:
		if opts.SessionStore == nil {
			return nil, errors.New("session strategy needs a session store")
		}
		return NewSessionVerifier(opts.SessionStore, opts.SessionSecret, opts.SessionTTL, opts.SecureCookie)
	default:
		return nil, fmt.Errorf("unknown auth strategy %q", opts.Strategy)
	}
}
