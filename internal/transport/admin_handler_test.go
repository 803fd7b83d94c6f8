package transport

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maison-mode/internal/client"
	"maison-mode/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret"

func adminRouter(t *testing.T, backendFn http.HandlerFunc) chi.Router {
	t.Helper()

	backend := httptest.NewServer(backendFn)
	t.Cleanup(backend.Close)

	logger := zap.NewNop()
	r := chi.NewRouter()
	NewAdminHandler(client.New(backend.URL, 5*time.Second), logger).RegisterRoutes(r,
		middleware.AuthMiddleware(testJWTSecret, logger),
		middleware.RequireAdmin(logger),
	)
	return r
}

func signToken(t *testing.T, role string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doAdminRequest(t *testing.T, router chi.Router, method, path, token string, body any) *httptest.ResponseRecorder {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAdminLogin(t *testing.T) {
	t.Run("proxies credentials and returns the backend token", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/auth/login" {
				t.Errorf("unexpected backend path %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(client.LoginResult{Token: "backend-token"})
		})

		rec := doAdminRequest(t, router, http.MethodPost, "/api/admin/login", "",
			LoginRequest{Email: "admin@example.com", Password: "secret"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var result client.LoginResult
		decodeBody(t, rec, &result)
		if result.Token != "backend-token" {
			t.Errorf("expected backend token, got %q", result.Token)
		}
	})

	t.Run("bad credentials pass the backend's status through", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": "invalid credentials"},
			})
		})

		rec := doAdminRequest(t, router, http.MethodPost, "/api/admin/login", "",
			LoginRequest{Email: "admin@example.com", Password: "wrong"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("rejects a malformed login payload", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("backend must not be called for an invalid payload")
		})

		rec := doAdminRequest(t, router, http.MethodPost, "/api/admin/login", "",
			LoginRequest{Email: "not-an-email", Password: "secret"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAdminAuthGate(t *testing.T) {
	router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]any{})
	})

	t.Run("no token", func(t *testing.T) {
		if rec := doAdminRequest(t, router, http.MethodGet, "/api/admin/news", "", nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if rec := doAdminRequest(t, router, http.MethodGet, "/api/admin/news", "not.a.jwt", nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("non-admin role", func(t *testing.T) {
		token := signToken(t, "editor")
		if rec := doAdminRequest(t, router, http.MethodGet, "/api/admin/news", token, nil); rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("admin role passes", func(t *testing.T) {
		token := signToken(t, "admin")
		if rec := doAdminRequest(t, router, http.MethodGet, "/api/admin/news", token, nil); rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})
}

func TestAdminNewsCRUD(t *testing.T) {
	token := signToken(t, "admin")

	t.Run("create forwards the bearer token", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer "+token {
				t.Errorf("backend did not receive the caller's token: %q", got)
			}
			if r.Method != http.MethodPost || r.URL.Path != "/api/admin/news" {
				t.Errorf("unexpected backend call: %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "n9"})
		})

		rec := doAdminRequest(t, router, http.MethodPost, "/api/admin/news", token,
			NewsRequest{Title: "Defile", Content: "Printemps 2026", Category: "event", Active: true})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
	})

	t.Run("create rejects an unknown category", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("backend must not be called for an invalid payload")
		})

		rec := doAdminRequest(t, router, http.MethodPost, "/api/admin/news", token,
			NewsRequest{Title: "Defile", Content: "x", Category: "gossip"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("update targets the item path", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/api/admin/news/n9" {
				t.Errorf("unexpected backend call: %s %s", r.Method, r.URL.Path)
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "n9"})
		})

		rec := doAdminRequest(t, router, http.MethodPut, "/api/admin/news/n9", token,
			NewsRequest{Title: "Defile", Content: "Mis a jour", Category: "event"})
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete || r.URL.Path != "/api/admin/news/n9" {
				t.Errorf("unexpected backend call: %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		})

		rec := doAdminRequest(t, router, http.MethodDelete, "/api/admin/news/n9", token, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("toggles hit their endpoints", func(t *testing.T) {
		var paths []string
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"id": "n9"})
		})

		doAdminRequest(t, router, http.MethodPost, "/api/admin/news/n9/toggle-active", token, nil)
		doAdminRequest(t, router, http.MethodPost, "/api/admin/news/n9/toggle-featured", token, nil)

		want := []string{"/api/admin/news/n9/toggle-active", "/api/admin/news/n9/toggle-featured"}
		if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
			t.Errorf("expected %v, got %v", want, paths)
		}
	})

	t.Run("backend outage maps to bad gateway", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		rec := doAdminRequest(t, router, http.MethodGet, "/api/admin/news", token, nil)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})
}

func TestAdminUserApproval(t *testing.T) {
	token := signToken(t, "admin")

	t.Run("pending list", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/admin/users/pending" {
				t.Errorf("unexpected backend path %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode([]client.AdminUser{{ID: "u7", Status: "pending"}})
		})

		rec := doAdminRequest(t, router, http.MethodGet, "/api/admin/users/pending", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var users []client.AdminUser
		decodeBody(t, rec, &users)
		if len(users) != 1 || users[0].ID != "u7" {
			t.Errorf("unexpected users: %+v", users)
		}
	})

	t.Run("approve and reject", func(t *testing.T) {
		var paths []string
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			w.WriteHeader(http.StatusOK)
		})

		if rec := doAdminRequest(t, router, http.MethodPost, "/api/admin/users/u7/approve", token, nil); rec.Code != http.StatusOK {
			t.Errorf("approve: expected 200, got %d", rec.Code)
		}
		if rec := doAdminRequest(t, router, http.MethodPost, "/api/admin/users/u7/reject", token, nil); rec.Code != http.StatusOK {
			t.Errorf("reject: expected 200, got %d", rec.Code)
		}

		want := []string{"/api/admin/users/u7/approve", "/api/admin/users/u7/reject"}
		if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
			t.Errorf("expected %v, got %v", want, paths)
		}
	})
}

func TestAdminUpload(t *testing.T) {
	token := signToken(t, "admin")

	multipartBody := func(t *testing.T, names ...string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for _, name := range names {
			part, err := writer.CreateFormFile("files", name)
			if err != nil {
				t.Fatalf("create form file: %v", err)
			}
			part.Write([]byte("fake image bytes"))
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("close writer: %v", err)
		}
		return &buf, writer.FormDataContentType()
	}

	t.Run("streams files and returns their urls", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/storage/upload" {
				t.Errorf("unexpected backend path %s", r.URL.Path)
			}
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				t.Errorf("backend received invalid multipart: %v", err)
			}
			if folder := r.FormValue("folder"); folder != "news" {
				t.Errorf("expected folder news, got %q", folder)
			}
			if got := len(r.MultipartForm.File["files"]); got != 2 {
				t.Errorf("expected 2 files, got %d", got)
			}
			json.NewEncoder(w).Encode(map[string][]string{
				"urls": {"/images/news/a.jpg", "/images/news/b.jpg"},
			})
		})

		body, contentType := multipartBody(t, "a.jpg", "b.jpg")
		req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads?folder=news", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}

		var resp map[string][]string
		decodeBody(t, rec, &resp)
		if len(resp["urls"]) != 2 {
			t.Errorf("expected 2 urls, got %v", resp["urls"])
		}
	})

	t.Run("missing folder", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("backend must not be called without a folder")
		})

		body, contentType := multipartBody(t, "a.jpg")
		req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("no files", func(t *testing.T) {
		router := adminRouter(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("backend must not be called without files")
		})

		body, contentType := multipartBody(t)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads?folder=news", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}
