package cache

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db        *sql.DB
	ctx       context.Context
	cancel    context.CancelFunc
	waitGroup sync.WaitGroup
	once      sync.Once
	cfg       config
}

var _ Store = (*sqliteStore)(nil)

// NewSQLite returns a Store backed by SQLite.
// If dbPath is empty or ":memory:", an in-memory database is used.
func NewSQLite(ctx context.Context, dbPath string, opts ...Option) (Store, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "cache: open sqlite")
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "cache: sqlite wal")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS cache (
		cache_type TEXT NOT NULL,
		cache_key TEXT NOT NULL,
		value BLOB NOT NULL,
		expire_at INTEGER NOT NULL,
		PRIMARY KEY (cache_type, cache_key)
	)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "cache: create sqlite table")
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_cache_expire_at ON cache(expire_at)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "cache: create sqlite index")
	}

	childCtx, cancel := context.WithCancel(ctx)
	c := &sqliteStore{
		db:     db,
		ctx:    childCtx,
		cancel: cancel,
		cfg:    applyOptions(opts),
	}
	if c.cfg.expiryCheck <= 0 {
		c.cfg.expiryCheck = time.Minute
	}

	c.waitGroup.Add(1)
	go c.run()

	return c, nil
}

func (c *sqliteStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.cfg.queryTimeout)
}

func (c *sqliteStore) Get(ctx context.Context, key Key) (bool, Entry, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	var data []byte
	var expireAt int64
	err := c.db.QueryRowContext(qctx,
		`SELECT value, expire_at FROM cache WHERE cache_type = ? AND cache_key = ?`,
		string(key.Namespace), key.ID,
	).Scan(&data, &expireAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, Entry{}, nil
	}
	if err != nil {
		return false, Entry{}, unavailable(err, "get", key)
	}
	return true, Entry{Value: data, ExpireAt: fromEpochSeconds(expireAt)}, nil
}

func (c *sqliteStore) Put(ctx context.Context, key Key, entry Entry) error {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	_, err := c.db.ExecContext(qctx,
		`INSERT INTO cache (cache_type, cache_key, value, expire_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_type, cache_key) DO UPDATE SET value = excluded.value, expire_at = excluded.expire_at`,
		string(key.Namespace), key.ID, entry.Value, epochSeconds(entry.ExpireAt),
	)
	return unavailable(err, "put", key)
}

func (c *sqliteStore) Ping(ctx context.Context) error {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	return c.db.PingContext(qctx)
}

func (c *sqliteStore) Close() error {
	var dbErr error
	c.once.Do(func() {
		c.cancel()
		c.waitGroup.Wait()
		dbErr = c.db.Close()
	})
	return dbErr
}

func (c *sqliteStore) run() {
	defer c.waitGroup.Done()
	ticker := time.NewTicker(c.cfg.expiryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			_, _ = c.db.ExecContext(c.ctx, `DELETE FROM cache WHERE expire_at < ?`, time.Now().Unix())
		}
	}
}
