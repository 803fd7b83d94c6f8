package server

import (
	"fmt"
	"net/http"
	"time"

	"maison-mode/internal/client"
	"maison-mode/internal/config"
	"maison-mode/internal/metrics"
	custommiddleware "maison-mode/internal/middleware"
	"maison-mode/internal/repository"
	"maison-mode/internal/service"
	"maison-mode/internal/session"
	"maison-mode/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the in-memory session stores the server serves from.
// They are created in main so the catalog can be loaded before listening.
type Stores struct {
	Catalog  repository.CatalogRepository
	Cart     repository.CartRepository
	Comments repository.CommentRepository
}

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	sessions *session.Manager
	redis    *redis.Client
}

// NewServer wires the stores, services and handlers into one HTTP server.
// redisClient may be nil; rate limiting is skipped without it.
func NewServer(cfg *config.Config, logger *zap.Logger, backend *client.Client, stores Stores, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(metrics.Middleware)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Initialize services
	collectionService := service.NewCollectionService(stores.Catalog, cfg.Catalog.PageSize)
	detailService := service.NewDetailService(stores.Catalog, stores.Cart)
	catalogService := service.NewCatalogService(stores.Catalog, stores.Comments)
	cartService := service.NewCartService(stores.Cart)
	newsService := service.NewNewsService(backend, cfg.News.CacheTTL, logger)

	// Expired sessions drop all of their state together.
	sessions := session.NewManager(cfg.Session.TTL, logger)
	sessions.OnExpire(stores.Catalog.DropSession)
	sessions.OnExpire(stores.Cart.DropSession)
	sessions.OnExpire(stores.Comments.DropSession)
	sessions.OnExpire(collectionService.DropSession)
	sessions.OnExpire(detailService.DropSession)
	sessions.Start()

	// Initialize handlers
	productHandler := transport.NewProductHandler(collectionService, detailService, catalogService, logger)
	cartHandler := transport.NewCartHandler(cartService, detailService, logger)
	newsHandler := transport.NewNewsHandler(newsService, logger)
	contactHandler := transport.NewContactHandler(backend, logger)
	adminHandler := transport.NewAdminHandler(backend, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	requireAdmin := custommiddleware.RequireAdmin(logger)

	// Storefront routes carry a session; admin routes do not.
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.SessionMiddleware(sessions, cfg.Session.CookieName))

		productHandler.RegisterRoutes(r)
		cartHandler.RegisterRoutes(r)
		newsHandler.RegisterRoutes(r)

		var extra []func(http.Handler) http.Handler
		if redisClient != nil && cfg.RateLimit.Enabled {
			extra = append(extra, custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "contact_rate_limit",
			}, logger))
		}
		contactHandler.RegisterRoutes(r, extra...)
	})

	adminHandler.RegisterRoutes(router, authMiddleware, requireAdmin)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:   cfg,
		logger:   logger,
		sessions: sessions,
		redis:    redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.sessions.Stop()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
