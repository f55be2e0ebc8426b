package storage

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"
)

// KV is a small key-value capability used for client-side durable state.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CachedResponse is a stored HTTP response keyed by its request URL.
type CachedResponse struct {
	URL      string
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// MemoryStore keeps KV entries and named response caches in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	kv     map[string][]byte
	caches map[string]map[string]CachedResponse
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		kv:     make(map[string][]byte),
		caches: make(map[string]map[string]CachedResponse),
	}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, key)
	return nil
}

func (m *MemoryStore) PutResponse(ctx context.Context, cache string, resp CachedResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.caches[cache]
	if !ok {
		entries = make(map[string]CachedResponse)
		m.caches[cache] = entries
	}
	resp.Header = resp.Header.Clone()
	resp.Body = append([]byte(nil), resp.Body...)
	if resp.StoredAt.IsZero() {
		resp.StoredAt = time.Now()
	}
	entries[resp.URL] = resp
	return nil
}

// MatchResponse searches every cache, in name order, for url.
func (m *MemoryStore) MatchResponse(ctx context.Context, url string) (CachedResponse, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, name := range m.sortedCacheNames() {
		if resp, ok := m.caches[name][url]; ok {
			resp.Header = resp.Header.Clone()
			resp.Body = append([]byte(nil), resp.Body...)
			return resp, true, nil
		}
	}
	return CachedResponse{}, false, nil
}

func (m *MemoryStore) CacheNames(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedCacheNames(), nil
}

func (m *MemoryStore) DeleteCache(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.caches[name]; !ok {
		return false, nil
	}
	delete(m.caches, name)
	return true, nil
}

func (m *MemoryStore) sortedCacheNames() []string {
	names := make([]string, 0, len(m.caches))
	for name := range m.caches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
