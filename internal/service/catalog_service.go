package service

import (
	"context"

	"maison-mode/internal/domain"
	"maison-mode/internal/repository"
)

// LikeState is the outcome of a like toggle.
type LikeState struct {
	ProductID string `json:"product_id"`
	Liked     bool   `json:"liked"`
	Likes     int    `json:"likes"`
}

// CatalogService exposes the catalog-wide operations: like toggling,
// category metadata and product comments. Comment product references are
// verified here, not in the store.
type CatalogService interface {
	ToggleLike(ctx context.Context, sessionID, productID string) (*LikeState, bool)
	Categories(ctx context.Context) []domain.Category
	ProductComments(ctx context.Context, sessionID, productID string) ([]domain.Comment, error)
	AddComment(ctx context.Context, sessionID string, comment domain.Comment) (domain.Comment, error)
}

type catalogService struct {
	catalog  repository.CatalogRepository
	comments repository.CommentRepository
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(catalog repository.CatalogRepository, comments repository.CommentRepository) CatalogService {
	return &catalogService{
		catalog:  catalog,
		comments: comments,
	}
}

// ToggleLike flips the session's liked flag for the product. An unknown
// product is a no-op and reported through the second return value.
func (s *catalogService) ToggleLike(ctx context.Context, sessionID, productID string) (*LikeState, bool) {
	liked, likes, found := s.catalog.ToggleLike(ctx, sessionID, productID)
	if !found {
		return nil, false
	}
	return &LikeState{ProductID: productID, Liked: liked, Likes: likes}, true
}

// Categories returns the static category metadata.
func (s *catalogService) Categories(ctx context.Context) []domain.Category {
	return s.catalog.Categories(ctx)
}

// ProductComments returns the session's comments for one product in
// insertion order.
func (s *catalogService) ProductComments(ctx context.Context, sessionID, productID string) ([]domain.Comment, error) {
	if _, err := s.catalog.FindByID(ctx, sessionID, productID); err != nil {
		return nil, err
	}
	return s.comments.ListByProduct(ctx, sessionID, productID), nil
}

// AddComment verifies the product reference and appends the comment. The
// store assigns the ID and date.
func (s *catalogService) AddComment(ctx context.Context, sessionID string, comment domain.Comment) (domain.Comment, error) {
	if _, err := s.catalog.FindByID(ctx, sessionID, comment.ProductID); err != nil {
		return domain.Comment{}, err
	}
	return s.comments.Add(ctx, sessionID, comment), nil
}
