package transport

import (
	"errors"
	"net/http"
	"time"

	"maison-mode/internal/client"
	"maison-mode/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadBytes = 32 << 20

// LoginRequest is the back-office login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// NewsRequest is the admin create/update payload for a news item.
type NewsRequest struct {
	Title         string     `json:"title" validate:"required"`
	Content       string     `json:"content" validate:"required"`
	Excerpt       string     `json:"excerpt"`
	Image         string     `json:"image"`
	Category      string     `json:"category" validate:"required,oneof=news event"`
	EventDate     *time.Time `json:"event_date"`
	EventLocation string     `json:"event_location"`
	Tags          []string   `json:"tags"`
	Active        bool       `json:"active"`
	Featured      bool       `json:"featured"`
}

// AdminHandler is the back-office surface: a thin validated proxy over the
// backend's news, user-approval and image-storage endpoints. The caller's
// bearer token is forwarded on every backend call.
type AdminHandler struct {
	backend *client.Client
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(backend *client.Client, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		backend: backend,
		logger:  logger,
	}
}

// RegisterRoutes registers the admin routes. Everything except login sits
// behind the auth middleware plus the admin role check.
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(requireAdmin)

			r.Get("/news", h.ListNews)
			r.Post("/news", h.CreateNews)
			r.Put("/news/{id}", h.UpdateNews)
			r.Delete("/news/{id}", h.DeleteNews)
			r.Post("/news/{id}/toggle-active", h.ToggleNewsActive)
			r.Post("/news/{id}/toggle-featured", h.ToggleNewsFeatured)

			r.Get("/users/pending", h.PendingUsers)
			r.Post("/users/{id}/approve", h.ApproveUser)
			r.Post("/users/{id}/reject", h.RejectUser)

			r.Post("/uploads", h.Upload)
		})
	})
}

// Login proxies back-office authentication to the backend and returns its
// bearer token untouched.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.backend.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Admin login failed", zap.Error(err))
		h.respondBackendError(w, err, "failed to login")
		return
	}

	h.logger.Info("Admin logged in", zap.String("user_id", result.User.ID))
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// ListNews lists every news item, including inactive ones.
func (h *AdminHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAuthToken(r.Context())

	items, err := h.backend.ListNews(r.Context(), token)
	if err != nil {
		h.logger.Error("Failed to list news", zap.Error(err))
		h.respondBackendError(w, err, "failed to list news")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

// CreateNews validates and creates a news item.
func (h *AdminHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeNews(w, r)
	if !ok {
		return
	}
	token, _ := middleware.GetAuthToken(r.Context())

	item, err := h.backend.CreateNews(r.Context(), token, input)
	if err != nil {
		h.logger.Error("Failed to create news", zap.Error(err))
		h.respondBackendError(w, err, "failed to create news")
		return
	}

	h.logger.Info("News created", zap.String("news_id", item.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// UpdateNews validates and replaces a news item.
func (h *AdminHandler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeNews(w, r)
	if !ok {
		return
	}
	token, _ := middleware.GetAuthToken(r.Context())
	id := chi.URLParam(r, "id")

	item, err := h.backend.UpdateNews(r.Context(), token, id, input)
	if err != nil {
		h.logger.Error("Failed to update news", zap.Error(err), zap.String("news_id", id))
		h.respondBackendError(w, err, "failed to update news")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// DeleteNews removes a news item.
func (h *AdminHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAuthToken(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.backend.DeleteNews(r.Context(), token, id); err != nil {
		h.logger.Error("Failed to delete news", zap.Error(err), zap.String("news_id", id))
		h.respondBackendError(w, err, "failed to delete news")
		return
	}

	h.logger.Info("News deleted", zap.String("news_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "news deleted"})
}

// ToggleNewsActive flips the item's active flag.
func (h *AdminHandler) ToggleNewsActive(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAuthToken(r.Context())
	id := chi.URLParam(r, "id")

	item, err := h.backend.ToggleNewsActive(r.Context(), token, id)
	if err != nil {
		h.logger.Error("Failed to toggle news active flag", zap.Error(err), zap.String("news_id", id))
		h.respondBackendError(w, err, "failed to toggle news")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// ToggleNewsFeatured flips the item's featured flag.
func (h *AdminHandler) ToggleNewsFeatured(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAuthToken(r.Context())
	id := chi.URLParam(r, "id")

	item, err := h.backend.ToggleNewsFeatured(r.Context(), token, id)
	if err != nil {
		h.logger.Error("Failed to toggle news featured flag", zap.Error(err), zap.String("news_id", id))
		h.respondBackendError(w, err, "failed to toggle news")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// PendingUsers lists users awaiting approval.
func (h *AdminHandler) PendingUsers(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAuthToken(r.Context())

	users, err := h.backend.PendingUsers(r.Context(), token)
	if err != nil {
		h.logger.Error("Failed to list pending users", zap.Error(err))
		h.respondBackendError(w, err, "failed to list pending users")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, users)
}

// ApproveUser approves a pending user.
func (h *AdminHandler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAuthToken(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.backend.ApproveUser(r.Context(), token, id); err != nil {
		h.logger.Error("Failed to approve user", zap.Error(err), zap.String("user_id", id))
		h.respondBackendError(w, err, "failed to approve user")
		return
	}

	h.logger.Info("User approved", zap.String("user_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "user approved"})
}

// RejectUser rejects a pending user.
func (h *AdminHandler) RejectUser(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetAuthToken(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.backend.RejectUser(r.Context(), token, id); err != nil {
		h.logger.Error("Failed to reject user", zap.Error(err), zap.String("user_id", id))
		h.respondBackendError(w, err, "failed to reject user")
		return
	}

	h.logger.Info("User rejected", zap.String("user_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "user rejected"})
}

// Upload streams the submitted files to the image storage service and
// returns their public URLs. The target folder comes from the folder query
// parameter.
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "folder is required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "no files submitted")
		return
	}

	files := make([]client.UploadFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "unreadable upload")
			return
		}
		defer f.Close()
		files = append(files, client.UploadFile{Name: header.Filename, Content: f})
	}

	token, _ := middleware.GetAuthToken(r.Context())
	urls, err := h.backend.UploadImages(r.Context(), token, folder, files)
	if err != nil {
		h.logger.Error("Upload failed", zap.Error(err), zap.String("folder", folder))
		h.respondBackendError(w, err, "failed to upload images")
		return
	}

	h.logger.Info("Images uploaded",
		zap.String("folder", folder),
		zap.Int("count", len(urls)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, map[string][]string{"urls": urls})
}

func (h *AdminHandler) decodeNews(w http.ResponseWriter, r *http.Request) (client.NewsInput, bool) {
	var req NewsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return client.NewsInput{}, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return client.NewsInput{}, false
	}

	return client.NewsInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Image:         req.Image,
		Category:      req.Category,
		EventDate:     req.EventDate,
		EventLocation: req.EventLocation,
		Tags:          req.Tags,
		Active:        req.Active,
		Featured:      req.Featured,
	}, true
}

// respondBackendError maps a backend client error onto the response:
// 4xx answers pass through with their message, anything else becomes 502.
func (h *AdminHandler) respondBackendError(w http.ResponseWriter, err error, fallback string) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		middleware.RespondWithError(w, apiErr.Status, msg)
		return
	}
	middleware.RespondWithError(w, http.StatusBadGateway, fallback)
}
