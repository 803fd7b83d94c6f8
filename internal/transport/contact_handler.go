package transport

import (
	"errors"
	"net/http"

	"maison-mode/internal/client"
	"maison-mode/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContactRequest is the contact-form payload.
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
	Source  string `json:"source"`
}

// ContactHandler forwards contact-form submissions to the backend. This is
// a user-initiated action, so a backend failure is surfaced to the caller
// rather than swallowed.
type ContactHandler struct {
	backend *client.Client
	logger  *zap.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(backend *client.Client, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		backend: backend,
		logger:  logger,
	}
}

// RegisterRoutes registers the contact route, wrapped by the given extra
// middleware (the rate limiter, when configured).
func (h *ContactHandler) RegisterRoutes(r chi.Router, extra ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		for _, mw := range extra {
			r.Use(mw)
		}
		r.Post("/api/contact", h.Submit)
	})
}

// Submit validates the form and forwards it.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Contact form validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.backend.SubmitContact(r.Context(), client.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Subject: req.Subject,
		Message: req.Message,
		Source:  req.Source,
	})
	if err != nil {
		h.logger.Error("Contact submission failed", zap.Error(err))

		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			middleware.RespondWithError(w, apiErr.Status, apiErr.Message)
			return
		}
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to send message, please try again later")
		return
	}

	h.logger.Info("Contact message forwarded", zap.String("subject", req.Subject))
	middleware.RespondWithJSON(w, http.StatusAccepted, map[string]string{"message": "message sent"})
}
