package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/catalog"
	"github.com/jafarshop/storefront/internal/storage"
	"github.com/jafarshop/storefront/internal/wishlist"
)

// Session is the state the storefront keeps for one shopper
type Session struct {
	ID       string
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Searcher *catalog.Searcher
	// Storage is the session's key/value namespace, shared with Cart and Wishlist
	Storage storage.LocalStorage

	lastSeen time.Time
}

// SessionRegistry lazily opens one Session per session id.
// Cart and wishlist are persisted through storage namespaced by the session id,
// so an evicted session is rehydrated on its next request.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	storage  storage.Factory
	catalog  catalog.ProductSearcher
	cartOpts cart.Options
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionRegistry(factory storage.Factory, searcher catalog.ProductSearcher, cartOpts cart.Options, logger *zap.Logger) *SessionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		storage:  factory,
		catalog:  searcher,
		cartOpts: cartOpts,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the session for id, opening it on first use
func (r *SessionRegistry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		return s
	}

	ls := r.storage(id)
	logger := r.logger.With(zap.String("session_id", id))
	s := &Session{
		ID:       id,
		Cart:     cart.New(cart.NewLocalStorageAdapter(ls), r.cartOpts, logger),
		Wishlist: wishlist.New(ls, logger),
		Searcher: catalog.NewSearcher(r.catalog, logger),
		Storage:  ls,
		lastSeen: r.now(),
	}
	r.sessions[id] = s
	logger.Debug("Session opened")
	return s
}

// EvictIdle drops sessions not seen for maxIdle and returns how many were dropped
func (r *SessionRegistry) EvictIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	n := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
