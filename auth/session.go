package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

// SessionStore keeps session id -> subject mappings with a TTL.
type SessionStore interface {
	Save(ctx context.Context, id, subject string, ttl time.Duration) error
	Lookup(ctx context.Context, id string) (subject string, found bool, err error)
	Delete(ctx context.Context, id string) error
}

// SessionVerifier issues random session ids, signs them, and resolves them
// through a SessionStore. The signed id is accepted as a bearer token or as
// the sid cookie.
type SessionVerifier struct {
	store  SessionStore
	codec  *securecookie.SecureCookie
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionVerifier(store SessionStore, secret string, ttl time.Duration, secureCookie bool) (*SessionVerifier, error) {
	if secret == "" {
		return nil, errors.New("SESSION_SECRET not set")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	codec := securecookie.New([]byte(secret), nil).MaxAge(int(ttl.Seconds()))
	return &SessionVerifier{store: store, codec: codec, ttl: ttl, secure: secureCookie, now: time.Now}, nil
}

func (v *SessionVerifier) Issue(ctx context.Context, subject string) (Credential, error) {
	if subject == "" {
		return Credential{}, errors.New("empty subject")
	}

	id := uuid.NewString()
	if err := v.store.Save(ctx, id, subject, v.ttl); err != nil {
		return Credential{}, fmt.Errorf("save session: %w", err)
	}

	token, err := v.encode(id)
	if err != nil {
		return Credential{}, fmt.Errorf("encode session: %w", err)
	}
	exp := v.now().Add(v.ttl)
	return Credential{
		Token:     token,
		ExpiresAt: exp,
		Cookie: &http.Cookie{
			Name:     SessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  exp,
			MaxAge:   int(v.ttl.Seconds()),
			HttpOnly: true,
			Secure:   v.secure,
			SameSite: http.SameSiteLaxMode,
		},
	}, nil
}

func (v *SessionVerifier) Verify(ctx context.Context, r *http.Request) (string, error) {
	token, ok := BearerToken(r)
	if !ok {
		c, err := r.Cookie(SessionCookie)
		if err != nil || c.Value == "" {
			return "", ErrNoCredential
		}
		token = c.Value
	}

	id, err := v.decode(token)
	if err != nil {
		return "", ErrInvalidCredential
	}

	subject, found, err := v.store.Lookup(ctx, id)
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if !found {
		return "", ErrInvalidCredential
	}
	return subject, nil
}

// Revoke removes the session behind token. Unknown or badly signed tokens
// are ignored.
func (v *SessionVerifier) Revoke(ctx context.Context, token string) error {
	id, err := v.decode(token)
	if err != nil {
		return nil
	}
	return v.store.Delete(ctx, id)
}

// encode signs and timestamps id under the sid cookie name. The result is
// used both as the cookie value and as the bearer token.
func (v *SessionVerifier) encode(id string) (string, error) {
	return v.codec.Encode(SessionCookie, id)
}

func (v *SessionVerifier) decode(token string) (string, error) {
	var id string
	if err := v.codec.Decode(SessionCookie, token, &id); err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("empty session id")
	}
	return id, nil
}
