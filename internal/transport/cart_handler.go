package transport

import (
	"errors"
	"net/http"

	"maison-mode/internal/middleware"
	"maison-mode/internal/repository"
	"maison-mode/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddToCartRequest adds the product with the session's current selection.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// CartHandler serves the session cart.
type CartHandler struct {
	cart   service.CartService
	detail service.DetailService
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart service.CartService, detail service.DetailService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cart:   cart,
		detail: detail,
		logger: logger,
	}
}

// RegisterRoutes registers all cart routes.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/", h.AddToCart)
		r.Delete("/{productId}", h.RemoveByProduct)
	})
}

// GetCart serves the session's cart lines and total.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, h.cart.Get(r.Context(), sessionID))
}

// AddToCart appends a cart line built from the session's current selection
// for the product. Adding the same product twice yields two lines.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())

	var req AddToCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.detail.AddToCart(r.Context(), sessionID, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrSelectionUndefined):
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, "product has no selectable options")
		default:
			h.logger.Error("Failed to add to cart", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		}
		return
	}

	h.logger.Info("Cart line added", zap.String("product_id", req.ProductID))
	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// RemoveByProduct removes every cart line carrying the product ID.
func (h *CartHandler) RemoveByProduct(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())
	productID := chi.URLParam(r, "productId")

	removed := h.cart.RemoveByProduct(r.Context(), sessionID, productID)
	h.logger.Debug("Cart lines removed",
		zap.String("product_id", productID),
		zap.Int("removed", removed),
	)

	middleware.RespondWithJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
