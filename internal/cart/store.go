package cart

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

const defaultMaxStock = 99

// Options are the values the cart takes from configuration
type Options struct {
	DeliveryFee     float64
	DefaultMaxStock int
}

// Snapshot is the state handed to subscribers after every mutation
type Snapshot struct {
	Items         []domain.CartLineItem `json:"items"`
	CartCount     int                   `json:"cartCount"`
	SelectedCount int                   `json:"selectedCount"`
	AllSelected   bool                  `json:"allSelected"`
	Subtotal      float64               `json:"subtotal"`
	MRPTotal      float64               `json:"mrpTotal"`
	DiscountTotal float64               `json:"discountTotal"`
	DeliveryFee   float64               `json:"deliveryFee"`
	Total         float64               `json:"total"`
}

// Store is the single source of truth for one session's cart.
// Every mutation is applied in memory, written through the adapter and then published to subscribers.
type Store struct {
	mu          sync.Mutex
	items       []domain.CartLineItem
	adapter     PersistenceAdapter
	opts        Options
	logger      *zap.Logger
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// New creates a store and rehydrates it from the adapter.
// Missing or malformed stored state yields an empty cart.
func New(adapter PersistenceAdapter, opts Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultMaxStock <= 0 {
		opts.DefaultMaxStock = defaultMaxStock
	}
	if opts.DeliveryFee < 0 || !isFinite(opts.DeliveryFee) {
		opts.DeliveryFee = 0
	}

	s := &Store{
		adapter:     adapter,
		opts:        opts,
		logger:      logger,
		subscribers: make(map[int]func(Snapshot)),
	}

	if adapter != nil {
		items, err := adapter.Load()
		if err != nil {
			logger.Warn("Discarding unreadable cart state", zap.Error(err))
		} else {
			s.items = normalize(items)
		}
	}
	return s
}

// AddToCart adds quantity units of the product under the (size, color) variant.
// An existing line with the same identity has its quantity increased instead.
// Stock is not checked here.
func (s *Store) AddToCart(product domain.ProductSummary, quantity int, size, color string) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	key := domain.LineKey{ProductID: product.ID, Size: size, Color: color}
	if i := s.indexOf(key); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, newLineItem(product, quantity, size, color))
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// RemoveFromCart removes the line item with the given identity. Unknown identities are ignored.
func (s *Store) RemoveFromCart(productID, size, color string) {
	s.mutate(func() bool {
		i := s.indexOf(domain.LineKey{ProductID: productID, Size: size, Color: color})
		if i < 0 {
			return false
		}
		s.removeAtLocked(i)
		return true
	})
}

// UpdateQuantity sets the quantity of a line item; zero or less removes it.
// The stock ceiling is the caller's concern, see IncrementQuantity.
func (s *Store) UpdateQuantity(productID string, quantity int, size, color string) {
	s.mutate(func() bool {
		i := s.indexOf(domain.LineKey{ProductID: productID, Size: size, Color: color})
		if i < 0 {
			return false
		}
		if quantity <= 0 {
			s.removeAtLocked(i)
			return true
		}
		if s.items[i].Quantity == quantity {
			return false
		}
		s.items[i].Quantity = quantity
		return true
	})
}

// IncrementQuantity adds one unit unless that would exceed the stock for the line's size
// (variantStockMap[size], then maxStock, then the configured default).
// On *errors.ErrStockLimit the cart is unchanged.
func (s *Store) IncrementQuantity(productID, size, color string) error {
	var limitErr error
	s.mutate(func() bool {
		i := s.indexOf(domain.LineKey{ProductID: productID, Size: size, Color: color})
		if i < 0 {
			return false
		}
		limit := s.stockLimit(s.items[i])
		if s.items[i].Quantity+1 > limit {
			limitErr = &errors.ErrStockLimit{ProductID: productID, Size: size, Limit: limit}
			return false
		}
		s.items[i].Quantity++
		return true
	})
	return limitErr
}

// DecrementQuantity removes one unit; the line is deleted when it reaches zero
func (s *Store) DecrementQuantity(productID, size, color string) {
	s.mutate(func() bool {
		i := s.indexOf(domain.LineKey{ProductID: productID, Size: size, Color: color})
		if i < 0 {
			return false
		}
		if s.items[i].Quantity <= 1 {
			s.removeAtLocked(i)
		} else {
			s.items[i].Quantity--
		}
		return true
	})
}

// UpdateSize moves a line item to another size. If a line already exists under the
// new identity the two are merged: quantities are summed into the existing line.
func (s *Store) UpdateSize(productID, oldSize, newSize, color string) {
	s.mutate(func() bool {
		return s.rekeyLocked(
			domain.LineKey{ProductID: productID, Size: oldSize, Color: color},
			domain.LineKey{ProductID: productID, Size: newSize, Color: color},
		)
	})
}

// UpdateColor moves a line item to another color, merging like UpdateSize
func (s *Store) UpdateColor(productID, size, oldColor, newColor string) {
	s.mutate(func() bool {
		return s.rekeyLocked(
			domain.LineKey{ProductID: productID, Size: size, Color: oldColor},
			domain.LineKey{ProductID: productID, Size: size, Color: newColor},
		)
	})
}

// ToggleItemSelection flips whether the line counts toward the checkout subtotal
func (s *Store) ToggleItemSelection(productID, size, color string) {
	s.mutate(func() bool {
		i := s.indexOf(domain.LineKey{ProductID: productID, Size: size, Color: color})
		if i < 0 {
			return false
		}
		s.items[i].Selected = !s.items[i].Selected
		return true
	})
}

// SelectAllItems sets the selection flag on every line
func (s *Store) SelectAllItems(selected bool) {
	s.mutate(func() bool {
		if len(s.items) == 0 {
			return false
		}
		for i := range s.items {
			s.items[i].Selected = selected
		}
		return true
	})
}

// RemoveLines takes the given lines out of the cart, matched by identity.
// Only the given quantity is subtracted, so units added after the lines were read stay in the cart.
func (s *Store) RemoveLines(lines []domain.CartLineItem) {
	s.mutate(func() bool {
		changed := false
		for _, line := range lines {
			i := s.indexOf(line.Key())
			if i < 0 || line.Quantity < 1 {
				continue
			}
			if s.items[i].Quantity <= line.Quantity {
				s.removeAtLocked(i)
			} else {
				s.items[i].Quantity -= line.Quantity
			}
			changed = true
		}
		return changed
	})
}

// Clear empties the cart
func (s *Store) Clear() {
	s.mutate(func() bool {
		s.items = nil
		return true
	})
}

// Subscribe registers fn to receive a snapshot after every mutation.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Items returns a copy of the line items in insertion order
func (s *Store) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// SelectedItems returns a copy of the selected line items
func (s *Store) SelectedItems() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.CartLineItem
	for _, it := range s.items {
		if it.Selected {
			out = append(out, cloneItem(it))
		}
	}
	return out
}

// SelectedCount is the number of units (not lines) that are selected
func (s *Store) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return selectedCount(s.items)
}

// CartCount is the number of units in the cart regardless of selection
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartCount(s.items)
}

// Subtotal is Σ unitPrice*quantity over selected lines
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.items).InexactFloat64()
}

// MRPTotal is Σ originalUnitPrice*quantity over selected lines, using unitPrice when no original price is known
func (s *Store) MRPTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mrpTotal(s.items).InexactFloat64()
}

// DiscountTotal is what the selected lines save against their MRP
func (s *Store) DiscountTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mrpTotal(s.items).Sub(subtotal(s.items)).InexactFloat64()
}

// Total is the subtotal plus the configured delivery fee
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.items, s.opts.DeliveryFee).InexactFloat64()
}

// AllSelected reports whether the cart is non-empty and every line is selected
func (s *Store) AllSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return allSelected(s.items)
}

// Snapshot returns the current items together with every derived value
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// DeliveryFee returns the configured delivery fee
func (s *Store) DeliveryFee() float64 {
	return s.opts.DeliveryFee
}

// mutate runs fn under the lock; when fn reports a change the cart is persisted and published
func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// commitLocked writes the full cart through the adapter. A failed write is logged;
// the in-memory state stays applied.
func (s *Store) commitLocked() Snapshot {
	if s.adapter != nil {
		if err := s.adapter.Save(s.items); err != nil {
			s.logger.Warn("Failed to persist cart", zap.Error(err), zap.Int("line_count", len(s.items)))
		}
	}
	return s.snapshotLocked()
}

func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:         cloneItems(s.items),
		CartCount:     cartCount(s.items),
		SelectedCount: selectedCount(s.items),
		AllSelected:   allSelected(s.items),
		Subtotal:      subtotal(s.items).InexactFloat64(),
		MRPTotal:      mrpTotal(s.items).InexactFloat64(),
		DiscountTotal: mrpTotal(s.items).Sub(subtotal(s.items)).InexactFloat64(),
		DeliveryFee:   s.opts.DeliveryFee,
		Total:         total(s.items, s.opts.DeliveryFee).InexactFloat64(),
	}
}

func (s *Store) indexOf(key domain.LineKey) int {
	for i := range s.items {
		if s.items[i].Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) removeAtLocked(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}

func (s *Store) rekeyLocked(from, to domain.LineKey) bool {
	if from == to {
		return false
	}
	src := s.indexOf(from)
	if src < 0 {
		return false
	}
	if dst := s.indexOf(to); dst >= 0 {
		s.items[dst].Quantity += s.items[src].Quantity
		s.items[dst].Selected = s.items[dst].Selected || s.items[src].Selected
		s.removeAtLocked(src)
		return true
	}
	s.items[src].SelectedSize = to.Size
	s.items[src].SelectedColor = to.Color
	return true
}

func (s *Store) stockLimit(it domain.CartLineItem) int {
	if it.SelectedSize != "" {
		if n, ok := it.VariantStockMap[it.SelectedSize]; ok {
			return n
		}
	}
	if it.MaxStock > 0 {
		return it.MaxStock
	}
	return s.opts.DefaultMaxStock
}

func validateProduct(p domain.ProductSummary) error {
	fields := map[string]string{}
	if p.ID == "" {
		fields["id"] = "product id is required"
	}
	if !isFinite(p.Price) || p.Price < 0 {
		fields["price"] = "price must be a non-negative number"
	}
	if !isFinite(p.OriginalPrice) || p.OriginalPrice < 0 {
		fields["originalPrice"] = "original price must be a non-negative number"
	}
	if len(fields) > 0 {
		return &errors.ErrValidation{Message: "invalid product", Fields: fields}
	}
	return nil
}

func newLineItem(p domain.ProductSummary, quantity int, size, color string) domain.CartLineItem {
	it := domain.CartLineItem{
		ProductID:       p.ID,
		SelectedSize:    size,
		SelectedColor:   color,
		Quantity:        quantity,
		UnitPrice:       p.Price,
		DiscountPercent: math.Max(0, math.Min(100, p.Discount)),
		Selected:        true,
		AvailableSizes:  append([]string(nil), p.Sizes...),
		VariantStockMap: p.VariantStockMap(),
		MaxStock:        p.MaxStock,
		Name:            p.Name,
		Brand:           p.Brand,
		Image:           p.Image,
	}
	// an original price below the selling price is meaningless
	if p.OriginalPrice >= p.Price {
		it.OriginalUnitPrice = p.OriginalPrice
	}
	return it
}

// normalize repairs rehydrated state: invalid lines are dropped and duplicate identities merged
func normalize(items []domain.CartLineItem) []domain.CartLineItem {
	var out []domain.CartLineItem
	index := make(map[domain.LineKey]int, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 || !isFinite(it.UnitPrice) || it.UnitPrice < 0 {
			continue
		}
		if i, ok := index[it.Key()]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.Key()] = len(out)
		out = append(out, it)
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func cloneItem(it domain.CartLineItem) domain.CartLineItem {
	if it.AvailableSizes != nil {
		it.AvailableSizes = append([]string(nil), it.AvailableSizes...)
	}
	if it.VariantStockMap != nil {
		m := make(map[string]int, len(it.VariantStockMap))
		for k, v := range it.VariantStockMap {
			m[k] = v
		}
		it.VariantStockMap = m
	}
	return it
}

func cloneItems(items []domain.CartLineItem) []domain.CartLineItem {
	if items == nil {
		return nil
	}
	out := make([]domain.CartLineItem, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}
