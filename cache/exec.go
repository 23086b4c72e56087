package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zntus/jbfc-kakao-chatbot/logger"
	"golang.org/x/sync/singleflight"
)

// DefaultExpires is the TTL applied by Exec when Config.Expires is nil.
const DefaultExpires = 24 * time.Hour

// ExpiryPolicy computes the absolute expiry of a value stored at now.
type ExpiryPolicy func(now time.Time) time.Time

// Within returns a policy that expires values d after they are stored.
func Within(d time.Duration) ExpiryPolicy {
	return func(now time.Time) time.Time { return now.Add(d) }
}

// Result classifies a single Exec lookup.
type Result string

const (
	ResultHit      Result = "hit"
	ResultMiss     Result = "miss"
	ResultExpired  Result = "expired"
	ResultNegative Result = "negative"
	ResultError    Result = "error"
)

// Observer is notified of every lookup outcome. It must be safe for
// concurrent use.
type Observer func(ns Namespace, result Result)

// Config configures a single Exec call.
type Config struct {
	// Key is the cache key. Required.
	Key Key
	// Expires computes the expiry of a freshly computed value. Defaults to
	// the executor's policy (24 hours unless overridden).
	Expires ExpiryPolicy
}

// Invoker produces a value of type T.
// The bool return indicates whether a value was found. Return false to signal
// "nothing found" without caching it; the value is still handed back to the
// caller as-is.
type Invoker[T any] func(ctx context.Context) (T, bool, error)

// Executor binds a Store to the read-through policy used by Exec.
type Executor struct {
	store    Store
	now      func() time.Time
	policy   ExpiryPolicy
	logger   logger.Logger
	observer Observer
	flight   *singleflight.Group
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) { e.now = now }
}

// WithDefaultPolicy sets the policy used when Config.Expires is nil.
func WithDefaultPolicy(p ExpiryPolicy) ExecutorOption {
	return func(e *Executor) { e.policy = p }
}

// WithLogger sets the logger used for lookup tracing.
func WithLogger(l logger.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// WithObserver registers an Observer for lookup outcomes.
func WithObserver(o Observer) ExecutorOption {
	return func(e *Executor) { e.observer = o }
}

// WithSingleFlight collapses concurrent misses for the same key into a single
// Invoker call. Without it two concurrent misses both invoke and both write,
// and the last writer wins.
func WithSingleFlight() ExecutorOption {
	return func(e *Executor) { e.flight = &singleflight.Group{} }
}

// NewExecutor returns an Executor reading and writing through store.
func NewExecutor(store Store, opts ...ExecutorOption) *Executor {
	e := &Executor{
		store:  store,
		now:    time.Now,
		policy: Within(DefaultExpires),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.NewConsoleLogger(logger.LevelNone)
	}
	return e
}

// Store returns the underlying store.
func (e *Executor) Store() Store {
	return e.store
}

func (e *Executor) observe(ns Namespace, r Result) {
	if e.observer != nil {
		e.observer(ns, r)
	}
}

type outcome[T any] struct {
	found bool
	value T
}

// Exec is a read-through helper. It checks the store for config.Key first.
// On a live entry it decodes and returns the stored value with found=true
// without calling invoke. On a missing or expired entry it calls invoke
// exactly once. If invoke returns found=true, the value is stored with the
// configured expiry and returned with found=true. If invoke returns
// found=false, nothing is stored and the value is returned with found=false.
// Errors from invoke are returned unchanged and nothing is stored. Store
// errors are returned marked with ErrUnavailable.
func Exec[T any](ctx context.Context, e *Executor, config Config, invoke Invoker[T]) (bool, T, error) {
	var zero T
	found, val, err := lookup[T](ctx, e, config.Key)
	if err != nil {
		return false, zero, err
	}
	if found {
		return true, val, nil
	}

	if e.flight == nil {
		return compute(ctx, e, config, invoke)
	}
	v, err, shared := e.flight.Do(config.Key.String(), func() (any, error) {
		found, val, err := compute(ctx, e, config, invoke)
		return outcome[T]{found: found, value: val}, err
	})
	if shared {
		e.logger.Trace("shared in-flight computation for %s", config.Key)
	}
	if err != nil {
		return false, zero, err
	}
	o := v.(outcome[T])
	return o.found, o.value, nil
}

func lookup[T any](ctx context.Context, e *Executor, key Key) (bool, T, error) {
	var zero T
	found, entry, err := e.store.Get(ctx, key)
	if err != nil {
		e.observe(key.Namespace, ResultError)
		if !errors.Is(err, ErrUnavailable) {
			err = unavailable(err, "get", key)
		}
		return false, zero, err
	}
	if !found {
		e.observe(key.Namespace, ResultMiss)
		e.logger.Debug("cache miss %s", key)
		return false, zero, nil
	}
	if entry.Expired(e.now()) {
		e.observe(key.Namespace, ResultExpired)
		e.logger.Debug("cache expired %s (expired at %s)", key, entry.ExpireAt.Format(time.RFC3339))
		return false, zero, nil
	}
	var val T
	if err := msgpack.Unmarshal(entry.Value, &val); err != nil {
		// the entry is recomputed and overwritten below
		e.observe(key.Namespace, ResultMiss)
		e.logger.Warn("cache entry %s could not be decoded: %s", key, err)
		return false, zero, nil
	}
	e.observe(key.Namespace, ResultHit)
	return true, val, nil
}

func compute[T any](ctx context.Context, e *Executor, config Config, invoke Invoker[T]) (bool, T, error) {
	var zero T
	result, ok, err := invoke(ctx)
	if err != nil {
		return false, zero, err
	}
	if !ok {
		e.observe(config.Key.Namespace, ResultNegative)
		e.logger.Debug("negative result for %s not cached", config.Key)
		return false, result, nil
	}

	policy := config.Expires
	if policy == nil {
		policy = e.policy
	}
	data, err := msgpack.Marshal(result)
	if err != nil {
		return false, zero, errors.Wrapf(err, "cache: encode %s", config.Key)
	}
	entry := Entry{Value: data, ExpireAt: policy(e.now())}
	if err := e.store.Put(ctx, config.Key, entry); err != nil {
		e.observe(config.Key.Namespace, ResultError)
		if !errors.Is(err, ErrUnavailable) {
			err = unavailable(err, "put", config.Key)
		}
		return false, zero, err
	}
	return true, result, nil
}
