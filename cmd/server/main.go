package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jafarshop/storefront/internal/api"
	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/catalog"
	"github.com/jafarshop/storefront/internal/checkout"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/events"
	"github.com/jafarshop/storefront/internal/repository/postgres"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/storage"
)

const sessionIdleTimeout = 30 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var zcfg zap.Config
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting storefront server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	// Session state storage
	var factory storage.Factory
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.RunMigrations(db, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		repos := postgres.NewRepositories(db, logger)
		factory = postgres.NewStorageFactory(repos.SessionState)
	case "memory":
		factory = storage.NewMemoryFactory().Open
	default:
		factory = storage.NewFileFactory(cfg.Storage.Dir)
	}

	catalogClient := catalog.NewClient(cfg.Catalog, logger)
	sessions := service.NewSessionRegistry(factory, catalogClient, cart.Options{
		DeliveryFee:     cfg.Cart.DeliveryFee,
		DefaultMaxStock: cfg.Cart.DefaultMaxStock,
	}, logger)

	// Checkout events go to RabbitMQ when a broker is configured
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.Events.RabbitMQURL)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer conn.Close()
		rabbit, err := events.NewRabbitPublisher(conn, logger)
		if err != nil {
			logger.Fatal("Failed to create event publisher", zap.Error(err))
		}
		defer rabbit.Close()
		publisher = rabbit
		logger.Info("Publishing checkout events", zap.String("exchange", events.EventsExchange))
	}
	checkouts := checkout.NewService(catalogClient, publisher, logger)

	// Initialize router
	router := api.NewRouter(cfg, sessions, catalogClient, checkouts, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Facets are refreshed at the cache TTL so shoppers rarely hit a cold cache
	go service.RunFacetRefreshLoop(bgCtx, catalogClient, cfg.Catalog.CacheTTL, logger)
	go evictIdleSessions(bgCtx, sessions, logger)

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopBackground()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// evictIdleSessions drops in-memory sessions nobody has touched for a while; their state stays in storage
func evictIdleSessions(ctx context.Context, sessions *service.SessionRegistry, logger *zap.Logger) {
	ticker := time.NewTicker(sessionIdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.EvictIdle(sessionIdleTimeout); n > 0 {
				logger.Debug("Evicted idle sessions", zap.Int("count", n), zap.Int("open", sessions.Len()))
			}
		}
	}
}
