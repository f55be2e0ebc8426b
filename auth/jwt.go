package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is 120 days.
const DefaultTokenTTL = 120 * 24 * time.Hour

// JWTVerifier issues HS256 tokens and accepts them as bearer credentials.
type JWTVerifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTVerifier(secret string, ttl time.Duration) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTVerifier{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (v *JWTVerifier) Issue(ctx context.Context, subject string) (Credential, error) {
	if subject == "" {
		return Credential{}, errors.New("empty subject")
	}

	now := v.now()
	exp := now.Add(v.ttl)
	claims := jwt.MapClaims{
		"sub":    subject,
		"userId": subject,
		"iat":    now.Unix(),
		"exp":    exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return Credential{}, fmt.Errorf("sign token: %w", err)
	}
	return Credential{Token: signed, ExpiresAt: exp}, nil
}

func (v *JWTVerifier) Verify(ctx context.Context, r *http.Request) (string, error) {
	raw, ok := BearerToken(r)
	if !ok {
		return "", ErrNoCredential
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidCredential
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidCredential
	}
	return sub, nil
}
