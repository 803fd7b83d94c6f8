package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maison-mode/internal/domain"
	"maison-mode/internal/middleware"
	"maison-mode/internal/repository"
	"maison-mode/internal/service"
	"maison-mode/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const testCookie = "maison_session"

func storefrontRouter(t *testing.T) chi.Router {
	t.Helper()

	products := []*domain.Product{
		{
			ID:       "fm001",
			Name:     "Robe Aurore",
			Category: "femme",
			Price:    289.99,
			Likes:    37,
			Sizes:    []string{"S", "M", "L"},
			Colors:   []string{"noir", "ivoire"},
		},
		{
			ID:       "hm001",
			Name:     "Costume Rive Gauche",
			Category: "homme",
			Price:    349.99,
			Likes:    28,
			Sizes:    []string{"48", "50"},
			Colors:   []string{"anthracite"},
		},
		{
			ID:       "gc001",
			Name:     "Carte Cadeau",
			Category: "femme",
			Price:    100,
		},
	}
	categories := []*domain.Category{
		{ID: "femme", Name: "Femme"},
		{ID: "homme", Name: "Homme"},
	}

	catalogRepo := repository.NewCatalogRepository()
	catalogRepo.ReplaceAll(context.Background(), products, categories)
	cartRepo := repository.NewCartRepository()
	commentRepo := repository.NewCommentRepository()

	logger := zap.NewNop()
	collection := service.NewCollectionService(catalogRepo, 8)
	detail := service.NewDetailService(catalogRepo, cartRepo)
	catalog := service.NewCatalogService(catalogRepo, commentRepo)
	cart := service.NewCartService(cartRepo)

	manager := session.NewManager(time.Hour, logger)
	t.Cleanup(manager.Stop)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(manager, testCookie))
		NewProductHandler(collection, detail, catalog, logger).RegisterRoutes(r)
		NewCartHandler(cart, detail, logger).RegisterRoutes(r)
	})
	return r
}

func doRequest(t *testing.T, router chi.Router, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: sessionID})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestListProducts(t *testing.T) {
	t.Run("default view", func(t *testing.T) {
		router := storefrontRouter(t)

		rec := doRequest(t, router, http.MethodGet, "/api/products", "s1", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var page struct {
			Data     []domain.Product `json:"data"`
			Category string           `json:"category"`
			Sort     string           `json:"sort"`
			Page     int              `json:"page"`
		}
		decodeBody(t, rec, &page)
		if page.Category != "all" || page.Sort != "newest" || page.Page != 1 {
			t.Errorf("unexpected default view: %+v", page)
		}
		if len(page.Data) != 3 {
			t.Errorf("expected 3 products, got %d", len(page.Data))
		}
	})

	t.Run("category filter", func(t *testing.T) {
		router := storefrontRouter(t)

		rec := doRequest(t, router, http.MethodGet, "/api/products?category=homme", "s1", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var page struct {
			Data []domain.Product `json:"data"`
		}
		decodeBody(t, rec, &page)
		if len(page.Data) != 1 || page.Data[0].ID != "hm001" {
			t.Errorf("unexpected homme page: %+v", page.Data)
		}
	})

	t.Run("invalid sort key", func(t *testing.T) {
		router := storefrontRouter(t)

		if rec := doRequest(t, router, http.MethodGet, "/api/products?sort=alphabetical", "s1", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("page out of range", func(t *testing.T) {
		router := storefrontRouter(t)

		if rec := doRequest(t, router, http.MethodGet, "/api/products?page=99", "s1", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("non-numeric page", func(t *testing.T) {
		router := storefrontRouter(t)

		if rec := doRequest(t, router, http.MethodGet, "/api/products?page=two", "s1", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("issues a session cookie on first contact", func(t *testing.T) {
		router := storefrontRouter(t)

		rec := doRequest(t, router, http.MethodGet, "/api/products", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var issued bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == testCookie && c.Value != "" {
				issued = true
			}
		}
		if !issued {
			t.Error("expected a session cookie to be set")
		}
	})
}

func TestGetProduct(t *testing.T) {
	router := storefrontRouter(t)

	t.Run("detail with initialized selection", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/products/fm001", "s1", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var view struct {
			Product   domain.Product    `json:"product"`
			Selection service.Selection `json:"selection"`
		}
		decodeBody(t, rec, &view)
		if view.Product.ID != "fm001" {
			t.Errorf("expected fm001, got %s", view.Product.ID)
		}
		if view.Selection.Size != "S" || view.Selection.Color != "noir" || view.Selection.Quantity != 1 {
			t.Errorf("unexpected selection: %+v", view.Selection)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		if rec := doRequest(t, router, http.MethodGet, "/api/products/ghost", "s1", nil); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestToggleLikeEndpoint(t *testing.T) {
	router := storefrontRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/products/fm001/like", "s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var state service.LikeState
	decodeBody(t, rec, &state)
	if !state.Liked || state.Likes != 38 {
		t.Errorf("expected liked with 38 likes, got %+v", state)
	}

	t.Run("unknown product is a silent no-op", func(t *testing.T) {
		if rec := doRequest(t, router, http.MethodPost, "/api/products/ghost/like", "s1", nil); rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
	})
}

func TestUpdateSelectionEndpoint(t *testing.T) {
	router := storefrontRouter(t)

	t.Run("valid change", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/products/fm001/selection", "s1",
			SelectionRequest{Size: ptr("M"), QuantityDelta: 2})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var sel service.Selection
		decodeBody(t, rec, &sel)
		if sel.Size != "M" || sel.Quantity != 3 {
			t.Errorf("unexpected selection: %+v", sel)
		}
	})

	t.Run("option outside the product's range", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/products/fm001/selection", "s1",
			SelectionRequest{Color: ptr("rouge")})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/products/ghost/selection", "s1",
			SelectionRequest{QuantityDelta: 1})
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestCommentEndpoints(t *testing.T) {
	router := storefrontRouter(t)

	t.Run("empty list before any comment", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/products/fm001/comments", "s1", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := rec.Body.String(); body != "[]\n" && body != "[]" {
			t.Errorf("expected an empty JSON array, got %q", body)
		}
	})

	t.Run("add and list", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/products/fm001/comments", "s1",
			AddCommentRequest{Name: "Ada", Text: "Lovely"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}

		var comment domain.Comment
		decodeBody(t, rec, &comment)
		if comment.ID != "com1" || comment.ProductID != "fm001" {
			t.Errorf("unexpected comment: %+v", comment)
		}

		listRec := doRequest(t, router, http.MethodGet, "/api/products/fm001/comments", "s1", nil)
		var comments []domain.Comment
		decodeBody(t, listRec, &comments)
		if len(comments) != 1 || comments[0].Text != "Lovely" {
			t.Errorf("unexpected comments: %+v", comments)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/products/fm001/comments", "s1",
			AddCommentRequest{Name: "Ada"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/products/ghost/comments", "s1",
			AddCommentRequest{Name: "Ada", Text: "?"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestListCategoriesEndpoint(t *testing.T) {
	router := storefrontRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/categories", "s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var categories []domain.Category
	decodeBody(t, rec, &categories)
	if len(categories) != 2 {
		t.Errorf("expected 2 categories, got %d", len(categories))
	}
}

func ptr(s string) *string { return &s }
