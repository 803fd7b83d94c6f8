package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"maison-mode/internal/domain"
	"maison-mode/internal/repository"
)

// CategoryAll is the sentinel category selection that passes every product
// through the filter step.
const CategoryAll = "all"

// SortKey selects the ordering of a collection view.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortPopular   SortKey = "popular"
)

var (
	ErrInvalidSortKey = errors.New("invalid sort key")
	ErrPageOutOfRange = errors.New("page out of range")
)

// CollectionPage is one derived slice of the catalog.
type CollectionPage struct {
	Items      []domain.Product `json:"data"`
	Category   string           `json:"category"`
	Sort       SortKey          `json:"sort"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
	Total      int              `json:"total"`
}

// CollectionQuery carries the optional selection changes for one view
// request. Nil fields leave the session's current selection untouched.
type CollectionQuery struct {
	Category *string
	Sort     *SortKey
	Page     *int
}

// CollectionService derives the filtered, sorted, paginated product slice
// for each session. The pipeline order is fixed: filter, then sort, then
// paginate. Changing the category resets the page to 1; changing only the
// sort key keeps the current page.
type CollectionService interface {
	View(ctx context.Context, sessionID string, q CollectionQuery) (*CollectionPage, error)
	DropSession(sessionID string)
}

type viewState struct {
	category string
	sort     SortKey
	page     int
}

type collectionService struct {
	catalog  repository.CatalogRepository
	pageSize int

	mu     sync.Mutex
	states map[string]*viewState
}

// NewCollectionService creates a collection service over the catalog with
// the given fixed page size.
func NewCollectionService(catalog repository.CatalogRepository, pageSize int) CollectionService {
	if pageSize < 1 {
		pageSize = 8
	}
	return &collectionService{
		catalog:  catalog,
		pageSize: pageSize,
		states:   make(map[string]*viewState),
	}
}

// View applies the query to the session's view state and derives the page.
func (s *collectionService) View(ctx context.Context, sessionID string, q CollectionQuery) (*CollectionPage, error) {
	if q.Sort != nil && !validSortKey(*q.Sort) {
		return nil, ErrInvalidSortKey
	}

	s.mu.Lock()
	state, ok := s.states[sessionID]
	if !ok {
		state = &viewState{category: CategoryAll, sort: SortNewest, page: 1}
		s.states[sessionID] = state
	}

	if q.Category != nil && *q.Category != state.category {
		state.category = *q.Category
		state.page = 1
	}
	if q.Sort != nil {
		state.sort = *q.Sort
	}
	category, sortKey, page := state.category, state.sort, state.page
	s.mu.Unlock()

	filtered := filterByCategory(s.catalog.List(ctx, sessionID), category)
	sortProducts(filtered, sortKey)

	total := len(filtered)
	totalPages := (total + s.pageSize - 1) / s.pageSize

	if q.Page != nil {
		requested := *q.Page
		if requested < 1 || (totalPages > 0 && requested > totalPages) {
			return nil, ErrPageOutOfRange
		}
		page = requested
		s.mu.Lock()
		state.page = requested
		s.mu.Unlock()
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * s.pageSize
	end := start + s.pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &CollectionPage{
		Items:      filtered[start:end],
		Category:   category,
		Sort:       sortKey,
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// DropSession forgets the session's view state.
func (s *collectionService) DropSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
}

func validSortKey(k SortKey) bool {
	switch k {
	case SortNewest, SortPriceLow, SortPriceHigh, SortPopular:
		return true
	}
	return false
}

func filterByCategory(products []domain.Product, category string) []domain.Product {
	if category == CategoryAll {
		return products
	}
	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// sortProducts orders the slice in place. All sorts are stable so that
// products with equal keys keep the order the filter step produced.
func sortProducts(products []domain.Product, key SortKey) {
	switch key {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case SortPopular:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Likes > products[j].Likes
		})
	default: // SortNewest: new arrivals group first, no secondary key
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].IsNew && !products[j].IsNew
		})
	}
}
