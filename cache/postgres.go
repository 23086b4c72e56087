package cache

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS jbfc_cache (
	cache_type TEXT NOT NULL,
	cache_key TEXT NOT NULL,
	value BYTEA NOT NULL,
	expire_at BIGINT NOT NULL,
	PRIMARY KEY (cache_type, cache_key)
)`

type postgresStore struct {
	pool *pgxpool.Pool
	cfg  config
}

var _ Store = (*postgresStore)(nil)

// NewPostgres connects to dsn, ensures the jbfc_cache table exists and
// returns a Store backed by it. Close closes the pool.
func NewPostgres(ctx context.Context, dsn string, opts ...Option) (Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "cache: connect postgres")
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "cache: create postgres table")
	}
	return &postgresStore{pool: pool, cfg: applyOptions(opts)}, nil
}

func (c *postgresStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.cfg.queryTimeout)
}

func (c *postgresStore) Get(ctx context.Context, key Key) (bool, Entry, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	var data []byte
	var expireAt int64
	err := c.pool.QueryRow(qctx,
		`SELECT value, expire_at FROM jbfc_cache WHERE cache_type = $1 AND cache_key = $2`,
		string(key.Namespace), key.ID,
	).Scan(&data, &expireAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, Entry{}, nil
	}
	if err != nil {
		return false, Entry{}, unavailable(err, "get", key)
	}
	return true, Entry{Value: data, ExpireAt: fromEpochSeconds(expireAt)}, nil
}

func (c *postgresStore) Put(ctx context.Context, key Key, entry Entry) error {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	_, err := c.pool.Exec(qctx,
		`INSERT INTO jbfc_cache (cache_type, cache_key, value, expire_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (cache_type, cache_key) DO UPDATE SET value = EXCLUDED.value, expire_at = EXCLUDED.expire_at`,
		string(key.Namespace), key.ID, entry.Value, epochSeconds(entry.ExpireAt),
	)
	return unavailable(err, "put", key)
}

func (c *postgresStore) Ping(ctx context.Context) error {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	return c.pool.Ping(qctx)
}

func (c *postgresStore) Close() error {
	c.pool.Close()
	return nil
}
