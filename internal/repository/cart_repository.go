package repository

import (
	"context"
	"sync"

	"maison-mode/internal/domain"
)

// CartRepository holds each session's ordered cart lines. Duplicate product
// IDs are allowed and produce independent lines; removal is keyed by product
// ID and clears every matching line.
type CartRepository interface {
	Items(ctx context.Context, sessionID string) []domain.CartItem
	Add(ctx context.Context, sessionID string, item domain.CartItem)
	RemoveByProduct(ctx context.Context, sessionID, productID string) int
	DropSession(sessionID string)
}

type cartRepository struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartItem
}

// NewCartRepository creates an empty in-memory cart store.
func NewCartRepository() CartRepository {
	return &cartRepository{
		carts: make(map[string][]domain.CartItem),
	}
}

// Items returns the session's cart lines in insertion order.
func (r *cartRepository) Items(_ context.Context, sessionID string) []domain.CartItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.carts[sessionID]
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

// Add appends a cart line. Quantities below one are clamped to one.
func (r *cartRepository) Add(_ context.Context, sessionID string, item domain.CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[sessionID] = append(r.carts[sessionID], item)
}

// RemoveByProduct removes every cart line carrying the given product ID and
// reports how many lines were removed. Lines with other product IDs keep
// their relative order.
func (r *cartRepository) RemoveByProduct(_ context.Context, sessionID, productID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.carts[sessionID]
	kept := items[:0]
	removed := 0
	for _, item := range items {
		if item.Product.ID == productID {
			removed++
			continue
		}
		kept = append(kept, item)
	}

	if removed == 0 {
		return 0
	}
	r.carts[sessionID] = kept
	return removed
}

// DropSession discards the session's cart.
func (r *cartRepository) DropSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
}
