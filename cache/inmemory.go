package cache

import (
	"context"
	"sync"
	"time"
)

type inMemoryStore struct {
	ctx       context.Context
	cancel    context.CancelFunc
	entries   map[Key]Entry
	mutex     sync.Mutex
	waitGroup sync.WaitGroup
	once      sync.Once
	cfg       config
}

var _ Store = (*inMemoryStore)(nil)

func (c *inMemoryStore) Get(_ context.Context, key Key) (bool, Entry, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return false, Entry{}, nil
	}
	return true, Entry{Value: cloneBytes(entry.Value), ExpireAt: entry.ExpireAt}, nil
}

func (c *inMemoryStore) Put(_ context.Context, key Key, entry Entry) error {
	c.mutex.Lock()
	c.entries[key] = Entry{Value: cloneBytes(entry.Value), ExpireAt: entry.ExpireAt}
	c.mutex.Unlock()
	return nil
}

func (c *inMemoryStore) Ping(_ context.Context) error {
	return nil
}

func (c *inMemoryStore) Close() error {
	c.once.Do(func() {
		c.cancel()
		c.waitGroup.Wait()
	})
	return nil
}

// Len returns the number of stored entries, stale ones included.
func (c *inMemoryStore) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}

func (c *inMemoryStore) run() {
	defer c.waitGroup.Done()
	ticker := time.NewTicker(c.cfg.expiryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			c.mutex.Lock()
			for key, entry := range c.entries {
				if entry.Expired(now) {
					delete(c.entries, key)
				}
			}
			c.mutex.Unlock()
		}
	}
}

// NewInMemory returns a Store holding entries in process memory. Stale
// entries are swept in the background every expiry check interval.
func NewInMemory(parent context.Context, opts ...Option) Store {
	cfg := applyOptions(opts)
	ctx, cancel := context.WithCancel(parent)
	c := &inMemoryStore{
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[Key]Entry),
		cfg:     cfg,
	}
	c.waitGroup.Add(1)
	go c.run()
	return c
}
