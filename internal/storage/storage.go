package storage

import (
	"context"
)

// Storage is the durable client-side key/value store backing session state
// and cart snapshots. Values are JSON-serialized blobs.
type Storage interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	// PersistRootKey holds the persisted snapshot; only the cart slice is
	// written under it.
	PersistRootKey = "persist:root"
	// AuthTokenKey holds the bearer token for the signed-in session.
	AuthTokenKey = "authToken"
)
