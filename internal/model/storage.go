package model

import "context"

// Logical keys of the durable store.
const (
	KeyCurrentSession = "currentSession"
	KeyAllUsers       = "allUsers"
	KeyAllListings    = "allListings"
)

// KVStore is the durable key-value boundary the core persists into.
// Get returns ErrKeyNotFound for keys that were never written or were deleted.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
