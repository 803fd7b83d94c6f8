package repository

import (
	"context"
	"errors"
	"sync"

	"maison-mode/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// CatalogRepository is the single source of truth for the product list, the
// shared like counters and the per-session liked flags. All state is held in
// memory for the lifetime of the process; nothing is persisted.
type CatalogRepository interface {
	ReplaceAll(ctx context.Context, products []*domain.Product, categories []*domain.Category)
	List(ctx context.Context, sessionID string) []domain.Product
	FindByID(ctx context.Context, sessionID, productID string) (*domain.Product, error)
	ToggleLike(ctx context.Context, sessionID, productID string) (liked bool, likes int, found bool)
	Categories(ctx context.Context) []domain.Category
	DropSession(sessionID string)
}

type catalogRepository struct {
	mu         sync.RWMutex
	products   []*domain.Product
	categories []*domain.Category
	liked      map[string]map[string]bool // sessionID -> productID -> liked
}

// NewCatalogRepository creates an empty in-memory catalog.
func NewCatalogRepository() CatalogRepository {
	return &catalogRepository{
		liked: make(map[string]map[string]bool),
	}
}

// ReplaceAll swaps in a freshly loaded catalog. Session liked flags are kept:
// a reload mid-session must not reset what a visitor already liked.
func (r *catalogRepository) ReplaceAll(_ context.Context, products []*domain.Product, categories []*domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
	r.categories = categories
}

// List returns value copies of every product with the Liked flag resolved
// for the given session, in catalog order.
func (r *catalogRepository) List(_ context.Context, sessionID string) []domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionLikes := r.liked[sessionID]
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		cp.Liked = sessionLikes[p.ID]
		out = append(out, cp)
	}
	return out
}

// FindByID resolves a single product for the session, or ErrProductNotFound.
func (r *catalogRepository) FindByID(_ context.Context, sessionID, productID string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == productID {
			cp := *p
			cp.Liked = r.liked[sessionID][p.ID]
			return &cp, nil
		}
	}
	return nil, ErrProductNotFound
}

// ToggleLike flips the session's liked flag for the product and moves the
// shared counter by one in the matching direction. The decrement has no
// floor. An unknown product ID is a silent no-op with found == false.
func (r *catalogRepository) ToggleLike(_ context.Context, sessionID, productID string) (bool, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var product *domain.Product
	for _, p := range r.products {
		if p.ID == productID {
			product = p
			break
		}
	}
	if product == nil {
		return false, 0, false
	}

	sessionLikes := r.liked[sessionID]
	if sessionLikes == nil {
		sessionLikes = make(map[string]bool)
		r.liked[sessionID] = sessionLikes
	}

	nowLiked := !sessionLikes[productID]
	sessionLikes[productID] = nowLiked
	if nowLiked {
		product.Likes++
	} else {
		product.Likes--
	}

	return nowLiked, product.Likes, true
}

// Categories returns the static category metadata.
func (r *catalogRepository) Categories(_ context.Context) []domain.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out
}

// DropSession forgets the session's liked flags. Counters are not rolled
// back; an expired session's likes stay counted.
func (r *catalogRepository) DropSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.liked, sessionID)
}
