package cache

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	cfg    config
}

var _ Store = (*redisStore)(nil)

// NewRedis returns a Store backed by Redis. Each entry is a hash with the
// fields "v" (value) and "e" (expiry, epoch seconds) and carries a native
// EXPIREAT so Redis reclaims stale rows on its own.
// The caller owns the redis.Client lifecycle; Close is a no-op on the client.
func NewRedis(client *redis.Client, opts ...Option) Store {
	return &redisStore{
		client: client,
		cfg:    applyOptions(opts),
	}
}

func (c *redisStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.cfg.queryTimeout)
}

// namespaceEscaper keeps the first unescaped ':' as the namespace/id
// separator, so ("a:b", "c") and ("a", "b:c") map to different keys.
var namespaceEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`)

func (c *redisStore) redisKey(key Key) string {
	k := namespaceEscaper.Replace(string(key.Namespace)) + ":" + key.ID
	if c.cfg.prefix == "" {
		return k
	}
	return c.cfg.prefix + ":" + k
}

func (c *redisStore) Get(ctx context.Context, key Key) (bool, Entry, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	fields, err := c.client.HGetAll(qctx, c.redisKey(key)).Result()
	if err != nil {
		return false, Entry{}, unavailable(err, "get", key)
	}
	val, ok := fields["v"]
	if !ok {
		return false, Entry{}, nil
	}
	exp, err := strconv.ParseInt(fields["e"], 10, 64)
	if err != nil {
		return false, Entry{}, unavailable(err, "get", key)
	}
	return true, Entry{Value: []byte(val), ExpireAt: fromEpochSeconds(exp)}, nil
}

func (c *redisStore) Put(ctx context.Context, key Key, entry Entry) error {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	k := c.redisKey(key)
	pipe := c.client.TxPipeline()
	pipe.Del(qctx, k)
	pipe.HSet(qctx, k, "v", entry.Value, "e", epochSeconds(entry.ExpireAt))
	pipe.ExpireAt(qctx, k, entry.ExpireAt)
	_, err := pipe.Exec(qctx)
	return unavailable(err, "put", key)
}

func (c *redisStore) Ping(ctx context.Context) error {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	return c.client.Ping(qctx).Err()
}

// Close is a no-op; the caller owns the redis.Client lifecycle.
func (c *redisStore) Close() error {
	return nil
}
