// Package cache provides the durable result cache used by every remote-data
// accessor: a [Store] interface with several backends and the read-through
// helper [Exec].
//
// # Store
//
// A [Store] holds one [Entry] per [Key]. A key is a (namespace, id) pair; an
// entry is a serialized value plus the absolute instant after which it is
// stale. Writes overwrite unconditionally. A stale entry behaves exactly like
// an absent one and is replaced on the next successful computation; some
// backends also sweep stale rows in the background. Every storage failure is
// returned wrapped and marked with [ErrUnavailable].
//
// # Implementations
//
//   - [NewInMemory]: in-process map guarded by a mutex. Stale entries are
//     swept by a background goroutine. Lost on process restart.
//
//   - [NewSQLite]: backed by a SQLite database using [modernc.org/sqlite]
//     (pure Go, no CGO). Supports file-backed and ":memory:" databases.
//
//   - [NewRedis]: backed by Redis using [github.com/redis/go-redis/v9].
//     Entries are hashes with native EXPIREAT. The caller owns the client.
//
//   - [NewDynamoDB]: backed by a DynamoDB table with the attributes
//     cache_type, cache_key, value and expire_at.
//
//   - [NewPostgres]: backed by a Postgres table through a pgx pool.
//
//   - [NewComposite]: chains stores, fastest first, e.g. an in-memory L1
//     in front of Redis or DynamoDB.
//
// # Exec
//
// [Exec] collapses "look up, compute on miss, store" into a single call:
//
//	found, match, err := cache.Exec(ctx, executor,
//	    cache.Config{Key: key},
//	    func(ctx context.Context) (Match, bool, error) {
//	        m, err := fetchMatch(ctx)
//	        return m, err == nil, err
//	    },
//	)
//
// The [Invoker] returns (value, found, error). When found is false the value
// is handed back but not stored, so "nothing yet" never occupies the cache
// for a full TTL. Invoker errors are returned unchanged and never stored.
// Exec never retries.
//
// Values are serialized with msgpack ([github.com/vmihailenco/msgpack/v5]).
// Exported struct fields survive the round trip; use msgpack struct tags for
// stable field names.
//
// # Concurrency
//
// Two concurrent misses for the same key both invoke and both write; the last
// writer wins. [WithSingleFlight] collapses them into one invocation.
package cache
