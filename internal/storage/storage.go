package storage

import "context"

// LocalStorage is a string-keyed blob store scoped to one browser session,
// the server-side counterpart of window.localStorage.
type LocalStorage interface {
	// GetItem returns the stored value and whether the key exists
	GetItem(ctx context.Context, key string) ([]byte, bool, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

// Factory opens the LocalStorage of a session
type Factory func(sessionID string) LocalStorage
