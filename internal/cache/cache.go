// Package cache stores tariff lookup results across tiers (memory, disk, Redis)
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const keyPrefix = "customsdoc:v1:"

// Cache is a byte-valued cache. A zero ttl means the tier's default.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Key builds a namespaced cache key. The parts are hashed so any source
// identifier (URL, DSN, file path) is safe as a file name or Redis key.
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return keyPrefix + namespace + ":" + hex.EncodeToString(hash[:16])
}
