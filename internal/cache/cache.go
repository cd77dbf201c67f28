package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores fetched response bodies between collector runs so
// re-running a collector does not re-hit slow government portals.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from a URL.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "mdp:v1:" + hex.EncodeToString(hash[:])
}
