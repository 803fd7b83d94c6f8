package service

import (
	"context"
	"math"
	"testing"

	"maison-mode/internal/domain"
	"maison-mode/internal/repository"
)

func TestCartGet(t *testing.T) {
	ctx := context.Background()

	t.Run("total sums price times quantity across lines", func(t *testing.T) {
		repo := repository.NewCartRepository()
		repo.Add(ctx, "s1", domain.CartItem{
			Product:  domain.Product{ID: "hm001", Price: 349.99},
			Quantity: 2,
		})
		repo.Add(ctx, "s1", domain.CartItem{
			Product:  domain.Product{ID: "hm003", Price: 179.99},
			Quantity: 1,
		})

		cart := NewCartService(repo).Get(ctx, "s1")
		if len(cart.Items) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(cart.Items))
		}
		if math.Abs(cart.Total-879.97) > 1e-9 {
			t.Errorf("expected total 879.97, got %v", cart.Total)
		}
	})

	t.Run("an untouched session has an empty cart", func(t *testing.T) {
		cart := NewCartService(repository.NewCartRepository()).Get(ctx, "s1")
		if len(cart.Items) != 0 || cart.Total != 0 {
			t.Errorf("expected empty cart, got %+v", cart)
		}
	})
}

func TestCartRemoveByProductClearsEveryMatchingLine(t *testing.T) {
	ctx := context.Background()

	repo := repository.NewCartRepository()
	for _, line := range []struct {
		id   string
		size string
	}{
		{"fm001", "S"},
		{"fm001", "M"},
		{"hm001", "L"},
	} {
		repo.Add(ctx, "s1", domain.CartItem{
			Product:      domain.Product{ID: line.id, Price: 100},
			SelectedSize: line.size,
			Quantity:     1,
		})
	}

	svc := NewCartService(repo)
	if removed := svc.RemoveByProduct(ctx, "s1", "fm001"); removed != 2 {
		t.Fatalf("expected 2 removed lines, got %d", removed)
	}

	cart := svc.Get(ctx, "s1")
	if len(cart.Items) != 1 || cart.Items[0].Product.ID != "hm001" {
		t.Errorf("expected only hm001 left, got %+v", cart.Items)
	}
}
