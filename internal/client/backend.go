package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"maison-mode/internal/domain"
)

// APIError is a non-2xx answer from the backend, decoded from its error
// envelope when possible.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d", e.Status)
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// Client talks to the external storefront backend: products, news, contact
// messages, user administration and image storage. Every call is a single
// attempt bounded by the request context and the client timeout; there are
// no retries. Admin calls carry the caller's bearer token.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ContactMessage is the contact-form payload forwarded to the backend.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}

// NewsInput is the admin create/update payload for a news item.
type NewsInput struct {
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt,omitempty"`
	Image         string     `json:"image,omitempty"`
	Category      string     `json:"category"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	EventLocation string     `json:"event_location,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Active        bool       `json:"active"`
	Featured      bool       `json:"featured"`
}

// AdminUser is a back-office user record as delivered by the backend.
type AdminUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult is the backend's answer to an admin login.
type LoginResult struct {
	Token string    `json:"token"`
	User  AdminUser `json:"user"`
}

// UploadFile is one file streamed to the image storage service.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// ListProducts fetches the full product list used to seed the catalog.
func (c *Client) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", "", nil, &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListCategories fetches the category metadata.
func (c *Client) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", "", nil, &categories); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ActiveNews fetches the active news and event items.
func (c *Client) ActiveNews(ctx context.Context) ([]domain.NewsItem, error) {
	var items []domain.NewsItem
	if err := c.do(ctx, http.MethodGet, "/api/news/active", "", nil, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch active news: %w", err)
	}
	return items, nil
}

// SubmitContact forwards a contact-form message.
func (c *Client) SubmitContact(ctx context.Context, msg ContactMessage) error {
	if err := c.do(ctx, http.MethodPost, "/api/contact", "", msg, nil); err != nil {
		return fmt.Errorf("failed to submit contact message: %w", err)
	}
	return nil
}

// Login authenticates a back-office user and returns the bearer token the
// admin surface forwards on subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &result); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	return &result, nil
}

// ListNews fetches every news item, including inactive ones, for the
// back-office list.
func (c *Client) ListNews(ctx context.Context, token string) ([]domain.NewsItem, error) {
	var items []domain.NewsItem
	if err := c.do(ctx, http.MethodGet, "/api/admin/news", token, nil, &items); err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	return items, nil
}

// CreateNews creates a news item.
func (c *Client) CreateNews(ctx context.Context, token string, input NewsInput) (*domain.NewsItem, error) {
	var item domain.NewsItem
	if err := c.do(ctx, http.MethodPost, "/api/admin/news", token, input, &item); err != nil {
		return nil, fmt.Errorf("failed to create news: %w", err)
	}
	return &item, nil
}

// UpdateNews replaces a news item.
func (c *Client) UpdateNews(ctx context.Context, token, id string, input NewsInput) (*domain.NewsItem, error) {
	var item domain.NewsItem
	if err := c.do(ctx, http.MethodPut, "/api/admin/news/"+url.PathEscape(id), token, input, &item); err != nil {
		return nil, fmt.Errorf("failed to update news: %w", err)
	}
	return &item, nil
}

// DeleteNews removes a news item.
func (c *Client) DeleteNews(ctx context.Context, token, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/admin/news/"+url.PathEscape(id), token, nil, nil); err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}
	return nil
}

// ToggleNewsActive flips the active flag of a news item.
func (c *Client) ToggleNewsActive(ctx context.Context, token, id string) (*domain.NewsItem, error) {
	var item domain.NewsItem
	if err := c.do(ctx, http.MethodPost, "/api/admin/news/"+url.PathEscape(id)+"/toggle-active", token, nil, &item); err != nil {
		return nil, fmt.Errorf("failed to toggle news active flag: %w", err)
	}
	return &item, nil
}

// ToggleNewsFeatured flips the featured flag of a news item.
func (c *Client) ToggleNewsFeatured(ctx context.Context, token, id string) (*domain.NewsItem, error) {
	var item domain.NewsItem
	if err := c.do(ctx, http.MethodPost, "/api/admin/news/"+url.PathEscape(id)+"/toggle-featured", token, nil, &item); err != nil {
		return nil, fmt.Errorf("failed to toggle news featured flag: %w", err)
	}
	return &item, nil
}

// PendingUsers lists users awaiting admin approval.
func (c *Client) PendingUsers(ctx context.Context, token string) ([]AdminUser, error) {
	var users []AdminUser
	if err := c.do(ctx, http.MethodGet, "/api/admin/users/pending", token, nil, &users); err != nil {
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	return users, nil
}

// ApproveUser approves a pending user.
func (c *Client) ApproveUser(ctx context.Context, token, id string) error {
	if err := c.do(ctx, http.MethodPost, "/api/admin/users/"+url.PathEscape(id)+"/approve", token, nil, nil); err != nil {
		return fmt.Errorf("failed to approve user: %w", err)
	}
	return nil
}

// RejectUser rejects a pending user.
func (c *Client) RejectUser(ctx context.Context, token, id string) error {
	if err := c.do(ctx, http.MethodPost, "/api/admin/users/"+url.PathEscape(id)+"/reject", token, nil, nil); err != nil {
		return fmt.Errorf("failed to reject user: %w", err)
	}
	return nil
}

// UploadImages streams one or more files into a named folder on the image
// storage service and returns their public URLs.
func (c *Client) UploadImages(ctx context.Context, token, folder string, files []UploadFile) ([]string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to build upload form: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("failed to read upload %q: %w", f.Name, err)
		}
	}
	if err := writer.WriteField("folder", folder); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/storage/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload images: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp)
	}

	var result struct {
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return result.URLs, nil
}

// DeleteImage removes a stored image by its path.
func (c *Client) DeleteImage(ctx context.Context, token, path string) error {
	target := "/api/storage?path=" + url.QueryEscape(path)
	if err := c.do(ctx, http.MethodDelete, target, token, nil, nil); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// do issues one JSON request. A nil out skips response decoding; a nil body
// sends no payload. Non-2xx answers become *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// apiError drains the response into an *APIError, picking up the backend's
// message when its error envelope decodes.
func apiError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&envelope); err == nil {
		if envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
		} else {
			apiErr.Message = envelope.Message
		}
	}
	return apiErr
}
