package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"listscribe/storage"

	"github.com/redis/go-redis/v9"
)

// redisCmdable is the subset of redis.Cmdable used by RedisSessionStore.
type redisCmdable interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisSessionStore keeps sessions as plain string keys with a TTL.
type RedisSessionStore struct {
	rdb    redisCmdable
	prefix string
}

func NewRedisSessionStore(rdb redisCmdable, prefix string) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, prefix: prefix}
}

func (s *RedisSessionStore) Save(ctx context.Context, id, subject string, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.prefix+id, subject, ttl).Err()
}

func (s *RedisSessionStore) Lookup(ctx context.Context, id string) (string, bool, error) {
	subject, err := s.rdb.Get(ctx, s.prefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return subject, true, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.prefix+id).Err()
}

// KVSessionStore keeps sessions in a storage.KV. Expiry is checked on read
// and expired entries are removed lazily.
type KVSessionStore struct {
	kv     storage.KV
	prefix string
	now    func() time.Time
}

func NewKVSessionStore(kv storage.KV, prefix string) *KVSessionStore {
	return &KVSessionStore{kv: kv, prefix: prefix, now: time.Now}
}

type kvSession struct {
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *KVSessionStore) Save(ctx context.Context, id, subject string, ttl time.Duration) error {
	b, err := json.Marshal(kvSession{Subject: subject, ExpiresAt: s.now().Add(ttl)})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.prefix+id, b)
}

func (s *KVSessionStore) Lookup(ctx context.Context, id string) (string, bool, error) {
	b, ok, err := s.kv.Get(ctx, s.prefix+id)
	if err != nil || !ok {
		return "", false, err
	}

	var sess kvSession
	if err := json.Unmarshal(b, &sess); err != nil {
		return "", false, fmt.Errorf("decode session %s: %w", id, err)
	}
	if !s.now().Before(sess.ExpiresAt) {
		if err := s.kv.Delete(ctx, s.prefix+id); err != nil {
			slog.Warn("AUTH: Could not delete expired session", "id", id, "error", err)
		}
		return "", false, nil
	}
	return sess.Subject, true, nil
}

func (s *KVSessionStore) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, s.prefix+id)
}
