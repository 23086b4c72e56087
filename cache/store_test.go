package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// storeRoundTrip exercises the behaviour every Store must share.
func storeRoundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	key := Key{Namespace: "next-match-전북", ID: "20240315"}

	found, entry, err := store.Get(ctx, key)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, entry.Value)

	expireAt := time.Now().Add(time.Hour).Truncate(time.Second)
	assert.NoError(t, store.Put(ctx, key, Entry{Value: []byte("first"), ExpireAt: expireAt}))
	found, entry, err = store.Get(ctx, key)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("first"), entry.Value)
	assert.True(t, expireAt.Equal(entry.ExpireAt))

	// Last writer wins.
	later := expireAt.Add(time.Hour)
	assert.NoError(t, store.Put(ctx, key, Entry{Value: []byte("second"), ExpireAt: later}))
	found, entry, err = store.Get(ctx, key)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("second"), entry.Value)
	assert.True(t, later.Equal(entry.ExpireAt))

	// Same id in another namespace is a different entry.
	other := Key{Namespace: "last-match-전북", ID: "20240315"}
	found, _, err = store.Get(ctx, other)
	assert.NoError(t, err)
	assert.False(t, found)

	// An empty payload is still an entry.
	empty := Key{Namespace: "lineup-K05", ID: "2024-123"}
	assert.NoError(t, store.Put(ctx, empty, Entry{Value: []byte{}, ExpireAt: expireAt}))
	found, _, err = store.Get(ctx, empty)
	assert.NoError(t, err)
	assert.True(t, found)

	assert.NoError(t, store.Ping(ctx))
}
