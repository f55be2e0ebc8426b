package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"listscribe/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemorySessions() *KVSessionStore {
	return NewKVSessionStore(storage.NewMemoryStore(), "sess:")
}

type failingStore struct{ err error }

func (f failingStore) Save(context.Context, string, string, time.Duration) error { return f.err }
func (f failingStore) Lookup(context.Context, string) (string, bool, error)      { return "", false, f.err }
func (f failingStore) Delete(context.Context, string) error                      { return f.err }

func TestSessionVerifier_RoundTrip(t *testing.T) {
	v, err := NewSessionVerifier(newMemorySessions(), "session-secret", time.Hour, true)
	require.NoError(t, err)

	cred, err := v.Issue(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, cred.Cookie)
	assert.Equal(t, SessionCookie, cred.Cookie.Name)
	assert.Equal(t, cred.Token, cred.Cookie.Value)
	assert.True(t, cred.Cookie.HttpOnly)
	assert.True(t, cred.Cookie.Secure)

	t.Run("bearer", func(t *testing.T) {
		sub, err := v.Verify(context.Background(), bearerRequest(cred.Token))
		require.NoError(t, err)
		assert.Equal(t, "alice", sub)
	})

	t.Run("cookie", func(t *testing.T) {
		r := bearerRequest("")
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: cred.Token})
		sub, err := v.Verify(context.Background(), r)
		require.NoError(t, err)
		assert.Equal(t, "alice", sub)
	})

	t.Run("revoked", func(t *testing.T) {
		require.NoError(t, v.Revoke(context.Background(), cred.Token))
		_, err := v.Verify(context.Background(), bearerRequest(cred.Token))
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})
}

func TestSessionVerifier_Verify(t *testing.T) {
	store := newMemorySessions()
	v, err := NewSessionVerifier(store, "session-secret", time.Hour, false)
	require.NoError(t, err)

	other, err := NewSessionVerifier(store, "another-secret", time.Hour, false)
	require.NoError(t, err)
	forged, err := other.Issue(context.Background(), "mallory")
	require.NoError(t, err)
	valid, err := v.Issue(context.Background(), "alice")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"no credential", "", ErrNoCredential},
		{"unsigned id", "3f0e2a49-0000-0000-0000-000000000000", ErrInvalidCredential},
		{"bad encoding", "abc.!!!", ErrInvalidCredential},
		{"tampered token", tamper(valid.Token), ErrInvalidCredential},
		{"signed by another secret", forged.Token, ErrInvalidCredential},
		{"signed but unknown session", mustEncode(t, v, "never-saved"), ErrInvalidCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), bearerRequest(tt.token))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSessionVerifier_StoreFailure(t *testing.T) {
	boom := errors.New("redis: connection refused")
	v, err := NewSessionVerifier(failingStore{err: boom}, "session-secret", time.Hour, false)
	require.NoError(t, err)

	_, err = v.Issue(context.Background(), "alice")
	assert.ErrorIs(t, err, boom)

	_, err = v.Verify(context.Background(), bearerRequest(mustEncode(t, v, "some-id")))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
}

func mustEncode(t *testing.T, v *SessionVerifier, id string) string {
	t.Helper()
	token, err := v.encode(id)
	require.NoError(t, err)
	return token
}

// tamper swaps one character in the middle of token.
func tamper(token string) string {
	i := len(token) / 2
	c := byte('A')
	if token[i] == 'A' {
		c = 'B'
	}
	return token[:i] + string(c) + token[i+1:]
}

func TestNewSessionVerifier_RequiresSecret(t *testing.T) {
	_, err := NewSessionVerifier(newMemorySessions(), "", time.Hour, false)
	assert.Error(t, err)
}
