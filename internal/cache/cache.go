package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// NoExpiration marks an item that must never expire
const NoExpiration time.Duration = -1

// Cache defines the key/value store shared by the blacklist and the classifier memo.
// A ttl of 0 means the backend default; NoExpiration keeps the item forever.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// HashKey builds a namespaced cache key from arbitrary content
func HashKey(namespace, content string) string {
	hash := sha256.Sum256([]byte(content))
	return "credence:" + namespace + ":" + hex.EncodeToString(hash[:])
}
