package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/kv"
)

// Cache is an optional rUID-to-path lookup cache backed by a kv.Store
// (typically a Badger instance). Store.ReadEntry consults it before
// falling back to Resolve's path computation, and Warm pre-populates it
// from a full Enumerate pass at startup.
type Cache struct {
	store kv.Store
}

// NewCache wraps store as a rUID lookup cache. A nil store yields a Cache
// whose methods are all no-ops, so callers can pass an optional cache
// through uniformly.
func NewCache(store kv.Store) *Cache {
	return &Cache{store: store}
}

func cacheKey(ruid string) kv.Key {
	return kv.Key{"ruid", ruid}
}

// Lookup returns the cached path for ruid, if present.
func (c *Cache) Lookup(ctx context.Context, ruid string) (string, bool, error) {
	if c == nil || c.store == nil {
		return "", false, nil
	}
	val, err := c.store.Get(ctx, cacheKey(ruid))
	if errors.Is(err, kv.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	return string(val), true, nil
}

// Put records the on-disk path for ruid.
func (c *Cache) Put(ctx context.Context, ruid, path string) error {
	if c == nil || c.store == nil {
		return nil
	}
	if err := c.store.Set(ctx, cacheKey(ruid), []byte(path)); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	return nil
}

// Invalidate drops any cached path for ruid.
func (c *Cache) Invalidate(ctx context.Context, ruid string) error {
	if c == nil || c.store == nil {
		return nil
	}
	if err := c.store.Delete(ctx, cacheKey(ruid)); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	return nil
}

// Warm populates the cache from a full Enumerate pass over s, for use at
// startup before the first request arrives.
func (c *Cache) Warm(ctx context.Context, s *Store) error {
	if c == nil || c.store == nil {
		return nil
	}
	var entries []kv.Entry
	for entry, err := range s.Enumerate() {
		if err != nil {
			return err
		}
		entries = append(entries, kv.Entry{Key: cacheKey(entry.RUID), Value: []byte(entry.Path)})
	}
	if len(entries) == 0 {
		return nil
	}
	if err := c.store.BatchSet(ctx, entries); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	return nil
}
