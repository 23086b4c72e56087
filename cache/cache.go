package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrUnavailable marks every failure of the underlying storage. Callers test
// for it with errors.Is; the original cause stays wrapped.
var ErrUnavailable = errors.New("cache: store unavailable")

// Namespace is a logical group of keys that share a recomputation rule.
type Namespace string

// Key identifies at most one entry in a Store.
type Key struct {
	Namespace Namespace
	ID        string
}

func (k Key) String() string {
	return string(k.Namespace) + "/" + k.ID
}

// Entry is a serialized value and the instant after which it is stale.
type Entry struct {
	Value    []byte
	ExpireAt time.Time
}

// Expired reports whether the entry is stale at now.
func (e Entry) Expired(now time.Time) bool {
	return e.ExpireAt.Before(now)
}

// Store is a durable key/value store keyed by (namespace, id).
//
// Stores never judge staleness on behalf of the caller: Get may return an
// entry whose ExpireAt has passed. Put overwrites unconditionally.
type Store interface {
	// Get returns the entry stored under key, if any.
	Get(ctx context.Context, key Key) (bool, Entry, error)
	// Put stores entry under key, replacing any previous entry.
	Put(ctx context.Context, key Key, entry Entry) error
	// Ping verifies connectivity to the backend.
	Ping(ctx context.Context) error
	// Close releases the resources owned by the store.
	Close() error
}

// DefaultQueryTimeout is the per-operation timeout for stores that perform
// I/O (SQLite, Redis, DynamoDB, Postgres).
const DefaultQueryTimeout = 5 * time.Second

// config holds the resolved configuration for a Store implementation.
type config struct {
	queryTimeout time.Duration
	expiryCheck  time.Duration
	prefix       string
}

// Option configures a Store implementation.
type Option func(*config)

func defaultConfig() config {
	return config{
		queryTimeout: DefaultQueryTimeout,
		expiryCheck:  time.Minute,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed stores.
// Defaults to DefaultQueryTimeout (5 seconds).
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithExpiryCheck sets the interval for the background sweep of stale
// entries. Applies to the InMemory and SQLite stores. Defaults to 1 minute.
func WithExpiryCheck(d time.Duration) Option {
	return func(c *config) { c.expiryCheck = d }
}

// WithPrefix sets the key prefix used by the Redis store.
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}

// unavailable wraps a storage error with the operation and key and marks it
// with ErrUnavailable.
func unavailable(err error, op string, key Key) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, "cache: %s %s", op, key), ErrUnavailable)
}

func epochSeconds(t time.Time) int64 {
	return t.Unix()
}

func fromEpochSeconds(sec int64) time.Time {
	return time.Unix(sec, 0)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
