// Package offline keeps the client's static assets usable without a
// network: a versioned cache filled at install time, served cache-first,
// with old versions pruned on activation.
package offline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"listscribe"
	"listscribe/storage"

	"golang.org/x/sync/errgroup"
)

// CachePrefix is shared by every cache this package creates.
const CachePrefix = "offline-"

// DefaultVersion is bumped whenever DefaultPrecache changes.
const DefaultVersion = 2

// DefaultPrecache is the asset list stored at install time.
var DefaultPrecache = []string{
	"/index.html",
	"/client.js",
	"https://use.fontawesome.com/releases/v5.15.4/js/all.js",
	"https://cdnjs.cloudflare.com/ajax/libs/bulma/0.9.3/css/bulma.min.css",
	"images/icon-192.png",
	"images/icon-512.png",
}

// CacheStore holds named caches of responses keyed by URL.
type CacheStore interface {
	PutResponse(ctx context.Context, cache string, resp storage.CachedResponse) error
	MatchResponse(ctx context.Context, url string) (storage.CachedResponse, bool, error)
	CacheNames(ctx context.Context) ([]string, error)
	DeleteCache(ctx context.Context, name string) (bool, error)
}

// CacheName returns the cache name for a version, e.g. "offline-v2".
func CacheName(version int) string {
	return fmt.Sprintf("%sv%d", CachePrefix, version)
}

// Worker serves assets cache-first. network is used for every real fetch
// and must not route back through this worker's Transport.
type Worker struct {
	version  int
	origin   *url.URL
	precache []string
	store    CacheStore
	network  listscribe.HTTPClient
}

func NewWorker(store CacheStore, network listscribe.HTTPClient, origin string, version int, precache []string) (*Worker, error) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("offline: origin must be an absolute URL, got %q", origin)
	}
	if network == nil {
		network = http.DefaultClient
	}
	return &Worker{
		version:  version,
		origin:   u,
		precache: append([]string(nil), precache...),
		store:    store,
		network:  network,
	}, nil
}

// CacheName is the name of this worker's current cache.
func (w *Worker) CacheName() string { return CacheName(w.version) }

// Resolve turns a possibly relative asset path into an absolute URL.
func (w *Worker) Resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("offline: bad url %q: %w", ref, err)
	}
	if !u.IsAbs() && !strings.HasPrefix(ref, "/") {
		// Relative to the site root, as a page at "/" would see it.
		u.Path = "/" + u.Path
	}
	return w.origin.ResolveReference(u).String(), nil
}

// Install fetches every precache URL and stores them. If any fetch fails
// or returns a non-2xx status nothing is stored.
func (w *Worker) Install(ctx context.Context) error {
	fetched := make([]storage.CachedResponse, len(w.precache))

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range w.precache {
		g.Go(func() error {
			target, err := w.Resolve(ref)
			if err != nil {
				return err
			}
			req, err := http.NewRequestWithContext(gctx, http.MethodGet, target, nil)
			if err != nil {
				return err
			}
			resp, err := w.network.Do(req)
			if err != nil {
				return fmt.Errorf("offline: install %s: %w", target, err)
			}
			cached, err := capture(target, resp)
			if err != nil {
				return fmt.Errorf("offline: install %s: %w", target, err)
			}
			if cached.Status < 200 || cached.Status > 299 {
				return fmt.Errorf("offline: install %s: status %d", target, cached.Status)
			}
			fetched[i] = cached
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, c := range fetched {
		if err := w.store.PutResponse(ctx, w.CacheName(), c); err != nil {
			return fmt.Errorf("offline: store %s: %w", c.URL, err)
		}
	}
	slog.Info("OFFLINE: Installed", "cache", w.CacheName(), "assets", len(fetched))
	return nil
}

// Fetch answers req from any cache, falling back to the network. Network
// responses are cached only when they are 200 and same-origin. Non-GET
// requests always go to the network.
func (w *Worker) Fetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return w.network.Do(req)
	}

	key := req.URL.String()
	cached, ok, err := w.store.MatchResponse(ctx, key)
	if err != nil {
		slog.Warn("OFFLINE: Cache lookup failed, using network", "url", key, "error", err)
	}
	if ok {
		return replay(req, cached), nil
	}

	resp, err := w.network.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK || !w.sameOrigin(req.URL) {
		return resp, nil
	}

	captured, err := capture(key, resp)
	if err != nil {
		return nil, err
	}
	if err := w.store.PutResponse(ctx, w.CacheName(), captured); err != nil {
		slog.Warn("OFFLINE: Could not cache response", "url", key, "error", err)
	}
	return replay(req, captured), nil
}

// Activate deletes every offline cache except the current one and returns
// the names it removed.
func (w *Worker) Activate(ctx context.Context) ([]string, error) {
	names, err := w.store.CacheNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("offline: list caches: %w", err)
	}

	var deleted []string
	var errs []error
	for _, name := range names {
		if !strings.HasPrefix(name, CachePrefix) || name == w.CacheName() {
			continue
		}
		ok, err := w.store.DeleteCache(ctx, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("offline: delete %s: %w", name, err))
			continue
		}
		if ok {
			deleted = append(deleted, name)
		}
	}
	if len(deleted) > 0 {
		slog.Info("OFFLINE: Removed old caches", "caches", deleted)
	}
	return deleted, errors.Join(errs...)
}

func (w *Worker) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, w.origin.Scheme) && strings.EqualFold(u.Host, w.origin.Host)
}

// capture reads and closes resp.Body.
func capture(target string, resp *http.Response) (storage.CachedResponse, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return storage.CachedResponse{}, err
	}
	return storage.CachedResponse{
		URL:    target,
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
	}, nil
}

func replay(req *http.Request, c storage.CachedResponse) *http.Response {
	header := c.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", c.Status, http.StatusText(c.Status)),
		StatusCode:    c.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(c.Body)),
		ContentLength: int64(len(c.Body)),
		Request:       req,
	}
}

// Transport serves GET requests through a Worker.
type Transport struct {
	Worker *Worker
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.Worker.Fetch(req.Context(), req)
}
