package cache

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"annotation-service/internal/imaging"
	"annotation-service/internal/metrics"
)

// keyVersion is mixed into the digest input so a future change to the
// usage shape cannot collide with entries written by older builds.
const keyVersion = "v1"

// ErrCacheIO marks a local filesystem failure. Fatal to the current
// request, never retried.
var ErrCacheIO = errors.New("cache i/o failure")

// ResolveFunc turns an object id and usage into an upstream image URI.
// Supplied by the caller so the cache stays decoupled from the resolver
// registry.
type ResolveFunc func(ctx context.Context, objectID string, usage imaging.ImageRequest) (string, error)

// token is the reversible wire form of a cache request.
type token struct {
	ObjectID string              `json:"object_id"`
	Usage    imaging.ImageRequest `json:"usage"`
}

// Manager is a content-addressed on-disk cache for upstream images, keyed
// by (object id, usage). Entries expire by file modification time.
type Manager struct {
	path    string
	ttl     time.Duration // 0 means never expire
	sem     chan struct{} // bounds total concurrent downloads, not per-key
	http    *http.Client
	metrics *metrics.Metrics
}

// NewManager creates a Manager and ensures the cache directory exists.
func NewManager(path string, ttl time.Duration, concurrency int, timeout time.Duration) (*Manager, error) {
	if concurrency <= 0 {
		concurrency = 3
	}
	if timeout <= 0 {
		timeout = imaging.DefaultUpstreamTimeout
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, errors.Wrapf(ErrCacheIO, "creating cache directory %s: %v", path, err)
	}
	return &Manager{
		path:    path,
		ttl:     ttl,
		sem:     make(chan struct{}, concurrency),
		http:    &http.Client{Timeout: timeout},
		metrics: metrics.Default(),
	}, nil
}

// Encode serializes (object id, usage) into a URL-safe opaque token.
func Encode(objectID string, usage imaging.ImageRequest) string {
	raw, _ := json.Marshal(token{ObjectID: objectID, Usage: usage})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode reverses Encode.
func Decode(encoded string) (string, imaging.ImageRequest, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", imaging.ImageRequest{}, fmt.Errorf("undecodable cache token: %w", err)
	}
	var t token
	if err := json.Unmarshal(raw, &t); err != nil {
		return "", imaging.ImageRequest{}, fmt.Errorf("malformed cache token: %w", err)
	}
	return t.ObjectID, t.Usage, nil
}

// FileName derives the deterministic on-disk name for (object id, usage).
// Identical requests map to identical files; differing renderings of the
// same object cannot collide.
func FileName(objectID string, usage imaging.ImageRequest) string {
	input := fmt.Sprintf("%s|%s|%t|%d|%d", keyVersion, objectID, usage.Thumbnail, usage.Width, usage.Height)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Get returns the local path of the cached file for the given token,
// downloading it first on a miss or once the entry has gone stale.
//
// Two requests for the same token racing concurrently may both miss and
// both download. The downloads are idempotent and write to the same path,
// so the last writer wins; the semaphore still bounds total concurrency.
func (m *Manager) Get(ctx context.Context, encoded string, resolve ResolveFunc) (string, error) {
	objectID, usage, err := Decode(encoded)
	if err != nil {
		return "", err
	}

	path := filepath.Join(m.path, FileName(objectID, usage))
	if stat, err := os.Stat(path); err == nil {
		if m.ttl == 0 || time.Since(stat.ModTime()) < m.ttl {
			m.metrics.IncrementCacheHits()
			return path, nil
		}
		log.Printf("Cache entry for object %s is stale, refetching", objectID)
	}
	m.metrics.IncrementCacheMisses()

	uri, err := resolve(ctx, objectID, usage)
	if err != nil {
		return "", err
	}
	if err := m.download(ctx, uri, path); err != nil {
		return "", err
	}
	log.Printf("Cached %s as %s", uri, path)
	return path, nil
}

// download fetches the URI under the concurrency gate and writes the body
// to the cache file.
func (m *Manager) download(ctx context.Context, uri, path string) error {
	m.sem <- struct{}{}
	defer func() { <-m.sem }()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return errors.Wrapf(imaging.ErrUpstreamUnavailable, "building request for %s: %v", uri, err)
	}
	imaging.SetBrowserHeaders(req)

	resp, err := m.http.Do(req)
	if err != nil {
		m.metrics.IncrementCacheErrors("upstream")
		return errors.Wrapf(imaging.ErrUpstreamUnavailable, "fetching %s: %v", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.metrics.IncrementCacheErrors("upstream")
		return errors.Wrapf(imaging.ErrUpstreamUnavailable, "fetching %s: status %d", uri, resp.StatusCode)
	}

	file, err := os.Create(path)
	if err != nil {
		m.metrics.IncrementCacheErrors("io")
		return errors.Wrapf(ErrCacheIO, "creating %s: %v", path, err)
	}
	defer file.Close()

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		m.metrics.IncrementCacheErrors("io")
		os.Remove(path)
		return errors.Wrapf(ErrCacheIO, "writing %s: %v", path, err)
	}

	m.metrics.RecordDownloadLatency(time.Since(start).Milliseconds())
	m.metrics.AddDownloadBytes(written)
	return nil
}
