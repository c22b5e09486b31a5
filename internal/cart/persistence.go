package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storage"
)

// StorageKey is the local storage key holding the serialized cart
const StorageKey = "cart"

const persistTimeout = 3 * time.Second

// PersistenceAdapter loads and saves the whole cart.
// Load returns (nil, nil) when nothing has been stored yet.
type PersistenceAdapter interface {
	Load() ([]domain.CartLineItem, error)
	Save(items []domain.CartLineItem) error
}

// LocalStorageAdapter keeps the cart as a JSON array under a single local storage key
type LocalStorageAdapter struct {
	ls  storage.LocalStorage
	key string
}

func NewLocalStorageAdapter(ls storage.LocalStorage) *LocalStorageAdapter {
	return &LocalStorageAdapter{ls: ls, key: StorageKey}
}

func (a *LocalStorageAdapter) Load() ([]domain.CartLineItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	raw, ok, err := a.ls.GetItem(ctx, a.key)
	if err != nil {
		return nil, err
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	var items []domain.CartLineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("malformed %s state: %w", a.key, err)
	}
	return items, nil
}

func (a *LocalStorageAdapter) Save(items []domain.CartLineItem) error {
	if items == nil {
		items = []domain.CartLineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	return a.ls.SetItem(ctx, a.key, raw)
}
