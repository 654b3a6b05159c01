// Package cache is a content-addressed, TTL-bound store for expensive
// validator outputs. Each entry is one self-describing JSON file, so the
// cache directory can be deleted and rebuilt with no coordination.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/logging"
	"github.com/vigil-dev/vigil/pkg/paths"
)

// ComputeKey derives the cache key as a collision-resistant hash over
// its parts: bundle content, rule identity, and the exact
// validator/prompt parameters. Any input change changes the key, so a
// prompt-text edit invalidates the cache even without file changes.
func ComputeKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// entry is the on-disk representation of one cached value
type entry struct {
	Key        string    `json:"key"`
	Value      string    `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	TTLSeconds int64     `json:"ttl_seconds"`
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.CreatedAt.Add(time.Duration(e.TTLSeconds) * time.Second))
}

// Store is a file-backed cache. Writes go through a temp file and
// rename, so a reader never observes a partially written entry; a
// corrupt or partial file is simply a miss.
type Store struct {
	dir      string
	disabled bool
	logger   zerolog.Logger
}

// DefaultDir is the cache location used when none is configured
func DefaultDir() string {
	return paths.CacheDir()
}

// New creates a store rooted at dir. An empty dir selects DefaultDir.
// A disabled store bypasses lookup and storage entirely.
func New(dir string, disabled bool) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{
		dir:      dir,
		disabled: disabled,
		logger:   logging.GetLogger("cache"),
	}
}

// Disabled reports whether the store bypasses caching
func (s *Store) Disabled() bool {
	return s.disabled
}

// GetOrCompute returns the cached value for key when present and fresh,
// otherwise runs compute and stores its result. The bool result reports
// a cache hit. Cache read/write problems are never propagated as
// failures; only compute errors are returned.
func (s *Store) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (string, error)) (string, bool, error) {
	if !s.disabled {
		if value, ok := s.get(key); ok {
			s.logger.Debug().Str("key", shortKey(key)).Msg("cache hit")
			return value, true, nil
		}
	}

	value, err := compute(ctx)
	if err != nil {
		return "", false, err
	}

	if !s.disabled {
		if err := s.put(key, value, ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", shortKey(key)).Msg("cache write failed, continuing uncached")
		}
	}

	return value, false, nil
}

func (s *Store) get(key string) (string, bool) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Corrupt entries are misses, never failures
		s.logger.Debug().Str("key", shortKey(key)).Msg("corrupt cache entry treated as miss")
		return "", false
	}

	if e.Key != key || e.expired(time.Now()) {
		_ = os.Remove(s.path(key))
		return "", false
	}

	return e.Value, true
}

func (s *Store) put(key, value string, ttl time.Duration) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCacheWrite, "creating cache directory")
	}

	raw, err := json.Marshal(entry{
		Key:        key,
		Value:      value,
		CreatedAt:  time.Now().UTC(),
		TTLSeconds: int64(ttl / time.Second),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCacheWrite, "encoding cache entry")
	}

	// temp-file + rename keeps writes atomic per key
	tmp, err := os.CreateTemp(s.dir, "entry-*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.ErrCacheWrite, "creating cache temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCacheWrite, "writing cache entry")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCacheWrite, "closing cache temp file")
	}

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCacheWrite, "placing cache entry")
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
