// Package cache stores provider completions so a re-run over the same clauses
// does not pay for the same prompt twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-valued store with per-entry TTL.
// Implementations are safe for concurrent use.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const keyPrefix = "clausegen:v1:"

// CacheKey derives a key from the parts that determine a completion
// (provider, model, system prompt, user prompt). Parts are NUL separated so
// ("ab","c") and ("a","bc") differ.
func CacheKey(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
