package transport

import (
	"errors"
	"net/http"
	"strconv"

	"maison-mode/internal/domain"
	"maison-mode/internal/middleware"
	"maison-mode/internal/repository"
	"maison-mode/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddCommentRequest is the comment submission payload.
type AddCommentRequest struct {
	Name  string `json:"name" validate:"required"`
	Image string `json:"image"`
	Text  string `json:"text" validate:"required"`
}

// SelectionRequest carries a size/color/quantity change from the detail view.
type SelectionRequest struct {
	Size          *string `json:"size"`
	Color         *string `json:"color"`
	QuantityDelta int     `json:"quantity_delta"`
}

// ProductHandler serves the catalog: collection pages, product detail,
// likes, selections and comments.
type ProductHandler struct {
	collection service.CollectionService
	detail     service.DetailService
	catalog    service.CatalogService
	logger     *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(
	collection service.CollectionService,
	detail service.DetailService,
	catalog service.CatalogService,
	logger *zap.Logger,
) *ProductHandler {
	return &ProductHandler{
		collection: collection,
		detail:     detail,
		catalog:    catalog,
		logger:     logger,
	}
}

// RegisterRoutes registers all product routes.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", h.ListCategories)
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
		r.Post("/{id}/like", h.ToggleLike)
		r.Post("/{id}/selection", h.UpdateSelection)
		r.Get("/{id}/comments", h.ListComments)
		r.Post("/{id}/comments", h.AddComment)
	})
}

// ListProducts serves one collection page. Query parameters update the
// session's view selection: a category change resets the page to 1, a sort
// change keeps it.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session not resolved")
		return
	}

	var query service.CollectionQuery
	if category := r.URL.Query().Get("category"); category != "" {
		query.Category = &category
	}
	if sortParam := r.URL.Query().Get("sort"); sortParam != "" {
		key := service.SortKey(sortParam)
		query.Sort = &key
	}
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid page")
			return
		}
		query.Page = &page
	}

	collectionPage, err := h.collection.View(r.Context(), sessionID, query)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSortKey):
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid sort key")
		case errors.Is(err, service.ErrPageOutOfRange):
			middleware.RespondWithError(w, http.StatusBadRequest, "page out of range")
		default:
			h.logger.Error("Failed to derive collection page", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, collectionPage)
}

// GetProduct serves the detail view: the product plus the session's
// current size/color/quantity selection.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	productID := chi.URLParam(r, "id")

	view, err := h.detail.Get(r.Context(), sessionID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to load product detail", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// ToggleLike flips the session's liked flag. An unknown product is a no-op
// answered with 204, matching the store's silent semantics.
func (h *ProductHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	productID := chi.URLParam(r, "id")

	state, found := h.catalog.ToggleLike(r.Context(), sessionID, productID)
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.logger.Debug("Like toggled",
		zap.String("product_id", productID),
		zap.Bool("liked", state.Liked),
	)
	middleware.RespondWithJSON(w, http.StatusOK, state)
}

// UpdateSelection applies a size/color/quantity change to the session's
// selection for the product.
func (h *ProductHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	productID := chi.URLParam(r, "id")

	var req SelectionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	selection, err := h.detail.UpdateSelection(r.Context(), sessionID, productID, service.SelectionUpdate{
		Size:          req.Size,
		Color:         req.Color,
		QuantityDelta: req.QuantityDelta,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrInvalidOption):
			middleware.RespondWithError(w, http.StatusBadRequest, "option not available for this product")
		default:
			h.logger.Error("Failed to update selection", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update selection")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, selection)
}

// ListComments serves the session's comments for one product in insertion
// order.
func (h *ProductHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	productID := chi.URLParam(r, "id")

	comments, err := h.catalog.ProductComments(r.Context(), sessionID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to list comments", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}

	if comments == nil {
		comments = []domain.Comment{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, comments)
}

// AddComment validates and appends a comment to the product.
func (h *ProductHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	productID := chi.URLParam(r, "id")

	var req AddCommentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Comment validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.catalog.AddComment(r.Context(), sessionID, domain.Comment{
		ProductID: productID,
		Name:      req.Name,
		Image:     req.Image,
		Text:      req.Text,
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to add comment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add comment")
		return
	}

	h.logger.Info("Comment added",
		zap.String("product_id", productID),
		zap.String("comment_id", comment.ID),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, comment)
}

// ListCategories serves the static category metadata.
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.Categories(r.Context()))
}
