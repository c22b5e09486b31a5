package repository

import (
	"context"
)

// SessionStateRepository persists the key/value state of a storefront session (cart, wishlist)
type SessionStateRepository interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, bool, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID, key string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// Repositories aggregates all repositories
type Repositories struct {
	SessionState SessionStateRepository
}
