package tariff

import (
	"context"
	"time"

	"github.com/ppiankov/customsdoc/internal/cache"
)

var (
	knownValue   = []byte("1")
	unknownValue = []byte("0")
)

// CachedRegistry memoizes answers from another registry. Errors are never
// cached, so a backend outage does not pin codes as unknown.
type CachedRegistry struct {
	next      Registry
	cache     cache.Cache
	namespace string
	ttl       time.Duration
}

// NewCachedRegistry wraps next. namespace should identify the backend (its URL,
// table or file path) so different registries never share answers. A zero
// ttl leaves expiry to each cache tier.
func NewCachedRegistry(next Registry, c cache.Cache, namespace string, ttl time.Duration) *CachedRegistry {
	return &CachedRegistry{next: next, cache: c, namespace: namespace, ttl: ttl}
}

func (r *CachedRegistry) Contains(ctx context.Context, code string) (bool, error) {
	digits := Normalize(code)
	key := cache.Key("tariff", r.namespace, digits)

	if val, ok := r.cache.Get(ctx, key); ok {
		return string(val) == string(knownValue), nil
	}

	known, err := r.next.Contains(ctx, code)
	if err != nil {
		return false, err
	}

	val := unknownValue
	if known {
		val = knownValue
	}
	_ = r.cache.Set(ctx, key, val, r.ttl)
	return known, nil
}
