package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"maison-mode/internal/client"
	"maison-mode/internal/config"
	"maison-mode/internal/logger"
	"maison-mode/internal/repository"
	"maison-mode/internal/seed"
	"maison-mode/internal/server"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

// loadCatalog pulls the product and category lists from the backend; when
// the backend is unreachable the embedded seed keeps the storefront alive.
func loadCatalog(backend *client.Client, catalog repository.CatalogRepository, timeout time.Duration, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	products, err := backend.ListProducts(ctx)
	if err == nil {
		categories, catErr := backend.ListCategories(ctx)
		if catErr == nil {
			catalog.ReplaceAll(ctx, products, categories)
			log.Info("Catalog loaded from backend",
				zap.Int("products", len(products)),
				zap.Int("categories", len(categories)),
			)
			return
		}
		err = catErr
	}

	log.Warn("Backend catalog unavailable, using embedded seed", zap.Error(err))

	products, categories, seedErr := seed.Load()
	if seedErr != nil {
		log.Fatal("Failed to load embedded catalog", zap.Error(seedErr))
	}
	catalog.ReplaceAll(ctx, products, categories)
	log.Info("Catalog seeded",
		zap.Int("products", len(products)),
		zap.Int("categories", len(categories)),
	)
}

func main() {
	// Load configuration
	godotenv.Load()
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	// Backend client and in-memory stores
	backend := client.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	stores := server.Stores{
		Catalog:  repository.NewCatalogRepository(),
		Cart:     repository.NewCartRepository(),
		Comments: repository.NewCommentRepository(),
	}

	loadCatalog(backend, stores.Catalog, cfg.Backend.Timeout, log)

	// Redis backs the contact-form rate limiter; optional.
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unreachable, rate limiting disabled", zap.Error(err))
			redisClient.Close()
			redisClient = nil
		}
	}

	// Create server
	srv := server.NewServer(cfg, log, backend, stores, redisClient)

	done := make(chan bool, 1)

	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
