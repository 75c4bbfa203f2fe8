// Package store persists raw upstream payloads on disk, one JSON document
// per endpoint key, and answers repeat reads without a network call.
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fpl-query-mcp/internal/config"
	"fpl-query-mcp/internal/fetch"
	"fpl-query-mcp/internal/metrics"
)

// Entry is the on-disk envelope. Payload keeps the upstream bytes verbatim
// so a cached read round-trips byte-identical with the original response.
type Entry struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Fetcher is the one call the store needs from the network layer.
type Fetcher interface {
	Get(ctx context.Context, ep fetch.Endpoint) ([]byte, error)
}

// Store fronts the Fetcher with an in-memory payload map backed by the
// on-disk envelope files under root.
type Store struct {
	root    string
	policy  string
	fetcher Fetcher
	log     *zap.Logger
	metrics *metrics.Metrics

	flight singleflight.Group

	mu      sync.Mutex
	mem     map[string][]byte
	fetched map[string]bool // keys fetched during this process run
}

func New(root, policy string, fetcher Fetcher, log *zap.Logger, m *metrics.Metrics) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if policy == "" {
		policy = config.PolicyTrustDisk
	}
	return &Store{
		root:    root,
		policy:  policy,
		fetcher: fetcher,
		log:     log,
		metrics: m,
		mem:     make(map[string][]byte),
		fetched: make(map[string]bool),
	}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, key)
}

// GetOrFetch returns the raw payload for ep. Concurrent first access to the
// same key is collapsed to a single upstream fetch; every caller receives
// the same bytes. When refresh is set the cached copy is replaced
// unconditionally. A fetch failure is non-fatal if an earlier copy exists:
// the stale payload is returned instead.
func (s *Store) GetOrFetch(ctx context.Context, ep fetch.Endpoint, refresh bool) ([]byte, error) {
	v, err, _ := s.flight.Do(ep.Key, func() (any, error) {
		return s.getOrFetch(ctx, ep, refresh)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Store) getOrFetch(ctx context.Context, ep fetch.Endpoint, refresh bool) ([]byte, error) {
	if !refresh {
		if payload, ok := s.cached(ep.Key); ok {
			s.metrics.CacheHit(ep.Name)
			return payload, nil
		}
	}
	s.metrics.CacheMiss(ep.Name)

	payload, err := s.fetcher.Get(ctx, ep)
	if err != nil {
		if stale, ok := s.readDisk(ep.Key); ok {
			s.metrics.StaleFallback()
			s.log.Warn("upstream fetch failed, serving stale cached payload",
				zap.String("endpoint", ep.Path), zap.Error(err))
			s.remember(ep.Key, stale)
			return stale, nil
		}
		return nil, err
	}

	if err := s.writeDisk(ep.Key, payload); err != nil {
		return nil, err
	}
	s.remember(ep.Key, payload)
	return payload, nil
}

// cached reports whether a trusted copy exists, consulting memory first and
// falling back to disk according to the refresh policy.
func (s *Store) cached(key string) ([]byte, bool) {
	s.mu.Lock()
	payload, inMem := s.mem[key]
	fetchedThisRun := s.fetched[key]
	s.mu.Unlock()

	if inMem {
		return payload, true
	}
	if s.policy == config.PolicyRefreshOnStart && !fetchedThisRun {
		return nil, false
	}
	if payload, ok := s.readDisk(key); ok {
		s.remember(key, payload)
		return payload, true
	}
	return nil, false
}

func (s *Store) remember(key string, payload []byte) {
	s.mu.Lock()
	s.mem[key] = payload
	s.fetched[key] = true
	s.mu.Unlock()
}

func (s *Store) readDisk(key string) ([]byte, bool) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := sonic.Unmarshal(raw, &entry); err != nil {
		s.log.Warn("discarding unreadable cache file",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return []byte(entry.Payload), true
}

func (s *Store) writeDisk(key string, payload []byte) error {
	entry := Entry{FetchedAt: time.Now().UTC(), Payload: json.RawMessage(payload)}
	raw, err := sonic.Marshal(entry)
	if err != nil {
		return errors.Wrapf(err, "encode cache entry %s", key)
	}
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create cache dir for %s", key)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrapf(err, "write cache entry %s", key)
	}
	return nil
}
