package cache

import (
	"context"
	"time"
)

type compositeStore struct {
	stores []Store
	l1TTL  time.Duration
	now    func() time.Time
}

var _ Store = (*compositeStore)(nil)

// NewComposite returns a Store that chains multiple stores together, fastest
// first. Get checks stores in order and returns the first hit, copying it
// into the stores that missed. Put writes to all stores.
// At least one store must be provided; panics if empty.
//
// l1TTL caps how long an entry lives in any store but the last one, which
// bounds staleness when several processes share the last store. Zero means
// no cap.
func NewComposite(l1TTL time.Duration, stores ...Store) Store {
	if len(stores) == 0 {
		panic("cache: NewComposite requires at least one store")
	}
	return &compositeStore{stores: stores, l1TTL: l1TTL, now: time.Now}
}

func (c *compositeStore) capped(entry Entry) Entry {
	if c.l1TTL <= 0 {
		return entry
	}
	if limit := c.now().Add(c.l1TTL); entry.ExpireAt.After(limit) {
		entry.ExpireAt = limit
	}
	return entry
}

func (c *compositeStore) Get(ctx context.Context, key Key) (bool, Entry, error) {
	for i, store := range c.stores {
		found, entry, err := store.Get(ctx, key)
		if err != nil {
			return false, Entry{}, err
		}
		if !found || entry.Expired(c.now()) {
			continue
		}
		for _, missed := range c.stores[:i] {
			_ = missed.Put(ctx, key, c.capped(entry))
		}
		return true, entry, nil
	}
	return false, Entry{}, nil
}

func (c *compositeStore) Put(ctx context.Context, key Key, entry Entry) error {
	last := len(c.stores) - 1
	var firstErr error
	for i, store := range c.stores {
		e := entry
		if i < last {
			e = c.capped(entry)
		}
		if err := store.Put(ctx, key, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *compositeStore) Ping(ctx context.Context) error {
	for _, store := range c.stores {
		if err := store.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *compositeStore) Close() error {
	var firstErr error
	for _, store := range c.stores {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
