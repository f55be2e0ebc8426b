package auth

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"listscribe/storage"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis stores values in a map and records TTLs.
type fakeRedis struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	s := NewRedisSessionStore(rdb, "sess:")

	require.NoError(t, s.Save(ctx, "abc", "alice", time.Hour))
	assert.Equal(t, "alice", rdb.data["sess:abc"])
	assert.Equal(t, time.Hour, rdb.ttls["sess:abc"])

	sub, ok, err := s.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", sub)

	_, ok, err = s.Lookup(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "abc"))
	_, ok, err = s.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	s := NewKVSessionStore(kv, "sess:")

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "abc", "alice", time.Minute))

	sub, ok, err := s.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", sub)

	now = now.Add(2 * time.Minute)
	_, ok, err = s.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	_, stored, err := kv.Get(ctx, "sess:abc")
	require.NoError(t, err)
	assert.False(t, stored, "expired session should be removed")
}

// undeletableKV refuses every Delete.
type undeletableKV struct {
	storage.KV
	err error
}

func (u undeletableKV) Delete(context.Context, string) error { return u.err }

func TestKVSessionStore_ExpiredDeleteFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantLog bool
	}{
		{"delete fails", errors.New("sqlite: database is locked"), true},
		{"delete succeeds", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := slog.Default()
			slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
			t.Cleanup(func() { slog.SetDefault(prev) })

			ctx := context.Background()
			s := NewKVSessionStore(undeletableKV{KV: storage.NewMemoryStore(), err: tt.err}, "sess:")
			now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
			s.now = func() time.Time { return now }
			require.NoError(t, s.Save(ctx, "abc", "alice", time.Minute))

			now = now.Add(2 * time.Minute)
			_, ok, err := s.Lookup(ctx, "abc")
			require.NoError(t, err)
			assert.False(t, ok)

			if tt.wantLog {
				assert.Contains(t, buf.String(), "level=WARN")
				assert.Contains(t, buf.String(), "AUTH: Could not delete expired session")
				assert.Contains(t, buf.String(), "database is locked")
			} else {
				assert.NotContains(t, buf.String(), "Could not delete expired session")
			}
		})
	}
}
