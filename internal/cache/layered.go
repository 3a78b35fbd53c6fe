package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache checks tiers in order (fastest first) and promotes hits
// into the tiers above the one that answered.
type LayeredCache struct {
	tiers []Cache
}

// NewLayeredCache creates a cache over the given tiers, fastest first
func NewLayeredCache(tiers ...Cache) *LayeredCache {
	return &LayeredCache{tiers: tiers}
}

// NewDefaultLayered builds a memory tier plus an optional disk tier
func NewDefaultLayered(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	tiers := []Cache{NewMemoryCache(memoryTTL, 10*time.Minute)}
	if diskDir != "" {
		tiers = append(tiers, NewDiskCache(diskDir, diskTTL))
	}
	return NewLayeredCache(tiers...)
}

// Add appends a slower tier
func (c *LayeredCache) Add(tier Cache) {
	c.tiers = append(c.tiers, tier)
}

func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	for i, tier := range c.tiers {
		val, found := tier.Get(ctx, key)
		if !found {
			continue
		}
		for _, upper := range c.tiers[:i] {
			_ = upper.Set(ctx, key, val, 0)
		}
		return val, true
	}
	return nil, false
}

// Set writes every tier and joins their errors
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var errs []error
	for _, tier := range c.tiers {
		if err := tier.Set(ctx, key, value, ttl); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, tier := range c.tiers {
		if err := tier.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *LayeredCache) Clear(ctx context.Context) error {
	var errs []error
	for _, tier := range c.tiers {
		if err := tier.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
