package wishlist

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storage"
)

// StorageKey is the local storage key holding the serialized wishlist
const StorageKey = "wishlist"

const persistTimeout = 3 * time.Second

// Store keeps the products a shopper saved for later, one entry per product id
type Store struct {
	mu     sync.Mutex
	items  []domain.WishlistItem
	ls     storage.LocalStorage
	logger *zap.Logger
	now    func() time.Time
}

// New creates a wishlist and rehydrates it from local storage.
// Missing or malformed stored data yields an empty wishlist.
func New(ls storage.LocalStorage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{ls: ls, logger: logger, now: time.Now}
	s.load()
	return s
}

// Toggle adds the product when absent and removes it when present. It reports whether the product is now saved.
func (s *Store) Toggle(p domain.ProductSummary) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(p.ID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.saveLocked()
		return false
	}
	s.items = append(s.items, s.newItem(p))
	s.saveLocked()
	return true
}

// Add saves the product; adding a saved product is a no-op
func (s *Store) Add(p domain.ProductSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" || s.indexOf(p.ID) >= 0 {
		return
	}
	s.items = append(s.items, s.newItem(p))
	s.saveLocked()
}

// Remove drops the product; unknown ids are ignored
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.saveLocked()
}

func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID) >= 0
}

func (s *Store) Items() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WishlistItem(nil), s.items...)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.saveLocked()
}

func (s *Store) newItem(p domain.ProductSummary) domain.WishlistItem {
	return domain.WishlistItem{
		ProductID: p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Image:     p.Image,
		Price:     p.Price,
		AddedAt:   s.now().UTC(),
	}
}

func (s *Store) indexOf(productID string) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) load() {
	if s.ls == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	raw, ok, err := s.ls.GetItem(ctx, StorageKey)
	if err != nil {
		s.logger.Warn("Failed to read wishlist", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var items []domain.WishlistItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("Discarding unreadable wishlist state", zap.Error(err))
		return
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ProductID == "" || seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		s.items = append(s.items, it)
	}
}

func (s *Store) saveLocked() {
	if s.ls == nil {
		return
	}
	items := s.items
	if items == nil {
		items = []domain.WishlistItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("Failed to encode wishlist", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.ls.SetItem(ctx, StorageKey, raw); err != nil {
		s.logger.Warn("Failed to persist wishlist", zap.Error(err))
	}
}
