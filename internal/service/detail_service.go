package service

import (
	"context"
	"errors"
	"sync"

	"maison-mode/internal/domain"
	"maison-mode/internal/repository"
)

var (
	ErrInvalidOption      = errors.New("option not available for this product")
	ErrSelectionUndefined = errors.New("product has no selectable options")
)

// Selection is the transient size/color/quantity choice a session holds for
// one product. Quantity never drops below one.
type Selection struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

// SelectionUpdate carries one update from the detail view. Nil fields are
// left unchanged; QuantityDelta is applied with a floor of one.
type SelectionUpdate struct {
	Size          *string
	Color         *string
	QuantityDelta int
}

// DetailView resolves one product together with the session's current
// selection for it.
type DetailView struct {
	Product   domain.Product `json:"product"`
	Selection Selection      `json:"selection"`
}

// DetailService resolves single products and manages the per-session
// selection state feeding the cart.
type DetailService interface {
	Get(ctx context.Context, sessionID, productID string) (*DetailView, error)
	UpdateSelection(ctx context.Context, sessionID, productID string, upd SelectionUpdate) (*Selection, error)
	AddToCart(ctx context.Context, sessionID, productID string) (*domain.CartItem, error)
	DropSession(sessionID string)
}

type detailService struct {
	catalog repository.CatalogRepository
	cart    repository.CartRepository

	mu         sync.Mutex
	selections map[string]map[string]*Selection // sessionID -> productID -> selection
}

// NewDetailService creates a new instance of DetailService.
func NewDetailService(catalog repository.CatalogRepository, cart repository.CartRepository) DetailService {
	return &detailService{
		catalog:    catalog,
		cart:       cart,
		selections: make(map[string]map[string]*Selection),
	}
}

// Get resolves the product and the session's selection, initializing the
// selection to the first size and color on first sight. Products without
// sizes or colors yield an empty selection field; add-to-cart is rejected
// for those until the catalog defines options.
func (s *detailService) Get(ctx context.Context, sessionID, productID string) (*DetailView, error) {
	product, err := s.catalog.FindByID(ctx, sessionID, productID)
	if err != nil {
		return nil, err
	}

	sel := s.selection(sessionID, product)
	return &DetailView{Product: *product, Selection: *sel}, nil
}

// UpdateSelection applies one change from the detail view. Size and color
// must be drawn from the product's available options.
func (s *detailService) UpdateSelection(ctx context.Context, sessionID, productID string, upd SelectionUpdate) (*Selection, error) {
	product, err := s.catalog.FindByID(ctx, sessionID, productID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.selectionLocked(sessionID, product)

	if upd.Size != nil {
		if !contains(product.Sizes, *upd.Size) {
			return nil, ErrInvalidOption
		}
		sel.Size = *upd.Size
	}
	if upd.Color != nil {
		if !contains(product.Colors, *upd.Color) {
			return nil, ErrInvalidOption
		}
		sel.Color = *upd.Color
	}
	if upd.QuantityDelta != 0 {
		sel.Quantity += upd.QuantityDelta
		if sel.Quantity < 1 {
			sel.Quantity = 1
		}
	}

	out := *sel
	return &out, nil
}

// AddToCart snapshots the product with the session's current selection and
// appends it to the cart. Duplicate additions produce independent lines.
func (s *detailService) AddToCart(ctx context.Context, sessionID, productID string) (*domain.CartItem, error) {
	product, err := s.catalog.FindByID(ctx, sessionID, productID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sel := *s.selectionLocked(sessionID, product)
	s.mu.Unlock()

	// A product without declared sizes or colors has no defined selection;
	// the add-to-cart action stays disabled for it.
	if len(product.Sizes) == 0 || len(product.Colors) == 0 {
		return nil, ErrSelectionUndefined
	}

	item := domain.CartItem{
		Product:       *product,
		SelectedSize:  sel.Size,
		SelectedColor: sel.Color,
		Quantity:      sel.Quantity,
	}
	s.cart.Add(ctx, sessionID, item)
	return &item, nil
}

// DropSession forgets the session's selections.
func (s *detailService) DropSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, sessionID)
}

func (s *detailService) selection(sessionID string, product *domain.Product) *Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.selectionLocked(sessionID, product)
	out := *sel
	return &out
}

// selectionLocked returns the live selection, creating it from the
// product's first options when missing. Callers hold s.mu.
func (s *detailService) selectionLocked(sessionID string, product *domain.Product) *Selection {
	byProduct := s.selections[sessionID]
	if byProduct == nil {
		byProduct = make(map[string]*Selection)
		s.selections[sessionID] = byProduct
	}

	sel, ok := byProduct[product.ID]
	if !ok {
		sel = &Selection{Quantity: 1}
		if len(product.Sizes) > 0 {
			sel.Size = product.Sizes[0]
		}
		if len(product.Colors) > 0 {
			sel.Color = product.Colors[0]
		}
		byProduct[product.ID] = sel
	}
	return sel
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
