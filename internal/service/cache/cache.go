package cache

import "time"

// BytesCache stores raw response bytes with a TTL. Implementations must be
// safe for concurrent use.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
