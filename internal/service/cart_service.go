package service

import (
	"context"

	"maison-mode/internal/domain"
	"maison-mode/internal/repository"
)

// Cart is the session's cart lines with a derived total.
type Cart struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
}

// CartService reads and trims the session cart. Lines are appended through
// DetailService.AddToCart.
type CartService interface {
	Get(ctx context.Context, sessionID string) *Cart
	RemoveByProduct(ctx context.Context, sessionID, productID string) int
}

type cartService struct {
	cart repository.CartRepository
}

// NewCartService creates a new instance of CartService.
func NewCartService(cart repository.CartRepository) CartService {
	return &cartService{cart: cart}
}

// Get returns the session's cart in insertion order.
func (s *cartService) Get(ctx context.Context, sessionID string) *Cart {
	items := s.cart.Items(ctx, sessionID)
	total := 0.0
	for _, item := range items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return &Cart{Items: items, Total: total}
}

// RemoveByProduct removes every line carrying the product ID and reports
// the number of removed lines.
func (s *cartService) RemoveByProduct(ctx context.Context, sessionID, productID string) int {
	return s.cart.RemoveByProduct(ctx, sessionID, productID)
}
