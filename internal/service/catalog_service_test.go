package service

import (
	"context"
	"errors"
	"testing"

	"maison-mode/internal/domain"
	"maison-mode/internal/repository"
)

func catalogServiceFixture() CatalogService {
	products := []*domain.Product{
		{ID: "ev001", Name: "Robe de Soiree", Category: "soiree", Price: 449.99, Likes: 24},
	}
	repo := repository.NewCatalogRepository()
	repo.ReplaceAll(context.Background(), products, []*domain.Category{
		{ID: "soiree", Name: "Soiree"},
	})
	return NewCatalogService(repo, repository.NewCommentRepository())
}

func TestCatalogToggleLike(t *testing.T) {
	ctx := context.Background()
	svc := catalogServiceFixture()

	state, found := svc.ToggleLike(ctx, "s1", "ev001")
	if !found {
		t.Fatal("expected product to be found")
	}
	if !state.Liked || state.Likes != 25 {
		t.Errorf("expected liked with 25 likes, got %+v", state)
	}

	if _, found := svc.ToggleLike(ctx, "s1", "ghost"); found {
		t.Error("expected unknown product to report not found")
	}
}

func TestCatalogCategories(t *testing.T) {
	svc := catalogServiceFixture()

	categories := svc.Categories(context.Background())
	if len(categories) != 1 || categories[0].ID != "soiree" {
		t.Errorf("unexpected categories: %+v", categories)
	}
}

func TestCatalogComments(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip through the store", func(t *testing.T) {
		svc := catalogServiceFixture()

		added, err := svc.AddComment(ctx, "s1", domain.Comment{
			ProductID: "ev001",
			Name:      "Ada",
			Text:      "Lovely",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if added.ID != "com1" {
			t.Errorf("expected id com1, got %q", added.ID)
		}

		comments, err := svc.ProductComments(ctx, "s1", "ev001")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(comments) != 1 || comments[0].Text != "Lovely" {
			t.Errorf("unexpected comments: %+v", comments)
		}
	})

	t.Run("comment on an unknown product is rejected", func(t *testing.T) {
		svc := catalogServiceFixture()

		_, err := svc.AddComment(ctx, "s1", domain.Comment{ProductID: "ghost", Name: "Ada", Text: "?"})
		if !errors.Is(err, repository.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})

	t.Run("listing for an unknown product is rejected", func(t *testing.T) {
		svc := catalogServiceFixture()

		if _, err := svc.ProductComments(ctx, "s1", "ghost"); !errors.Is(err, repository.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})
}
