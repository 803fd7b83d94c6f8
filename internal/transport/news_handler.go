package transport

import (
	"net/http"

	"maison-mode/internal/domain"
	"maison-mode/internal/middleware"
	"maison-mode/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewsHandler serves the read-only news feed. A backend failure degrades
// to an empty feed; these endpoints never answer with an error banner.
type NewsHandler struct {
	news   service.NewsService
	logger *zap.Logger
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(news service.NewsService, logger *zap.Logger) *NewsHandler {
	return &NewsHandler{
		news:   news,
		logger: logger,
	}
}

// RegisterRoutes registers all news routes.
func (h *NewsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/news", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/preview", h.Preview)
		r.Get("/tags", h.Tags)
	})
}

// Preview serves the bounded homepage preview, featured items first.
func (h *NewsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	items := h.news.Preview(r.Context())
	if items == nil {
		items = []domain.NewsItem{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

// List serves the full feed, optionally narrowed by the tag query param.
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.news.List(r.Context(), r.URL.Query().Get("tag"))
	if items == nil {
		items = []domain.NewsItem{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

// Tags serves the deduplicated tag vocabulary.
func (h *NewsHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags := h.news.Tags(r.Context())
	if tags == nil {
		tags = []string{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, tags)
}
