package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"amazon-connector-service/internal/config"
	"amazon-connector-service/internal/database"
	"amazon-connector-service/internal/handlers"
	"amazon-connector-service/internal/logging"
	"amazon-connector-service/internal/middleware"
	"amazon-connector-service/internal/repository"
	"amazon-connector-service/internal/secrets"
	"amazon-connector-service/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		logger.Warn("auto-migration failed", zap.Error(err))
	} else {
		logger.Info("database models migrated")
	}

	// Initialize GCP Secret Manager
	var credentialSource services.CredentialSource
	if cfg.GCPProjectID != "" {
		secretManager, err := secrets.NewGCPSecretManager(context.Background(), cfg.GCPProjectID)
		if err != nil {
			logger.Warn("failed to initialize GCP Secret Manager", zap.Error(err))
		} else {
			defer secretManager.Close()
			credentialSource = secretManager
			logger.Info("GCP Secret Manager initialized")
		}
	}

	// Initialize repositories
	channelRepo := repository.NewChannelRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	partyRepo := repository.NewPartyRepository(db)
	productRepo := repository.NewProductRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)

	// Initialize services
	clientFactory := services.NewClientFactory(cfg.MarketplaceEndpoint, credentialSource)
	resolver := services.NewPartyResolver(partyRepo, logger)
	mapper := services.NewProductMapper(productRepo, logger)
	reconciler := services.NewOrderReconciler(channelRepo, orderRepo, shipmentRepo, clientFactory, logger)
	importer := services.NewOrderImporter(channelRepo, orderRepo, shipmentRepo, resolver, mapper, reconciler, clientFactory, logger)
	exporter := services.NewFeedExporter(channelRepo, productRepo, inventoryRepo, shipmentRepo, orderRepo, clientFactory, logger)
	channelService := services.NewChannelService(channelRepo, logger)
	healthService := services.NewChannelHealthService(channelRepo, clientFactory, logger)
	scheduler := services.NewSyncScheduler(channelRepo, importer, reconciler, logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	channelHandler := handlers.NewChannelHandler(channelService, healthService)
	syncHandler := handlers.NewSyncHandler(importer, reconciler, scheduler, orderRepo)
	feedHandler := handlers.NewFeedHandler(exporter)
	inventoryHandler := handlers.NewInventoryHandler(inventoryRepo)

	// Periodic synchronization
	go runScheduler(scheduler, cfg.SyncInterval, cfg.SyncTimeout, logger)

	// Setup router
	router := setupRouter(logger, healthHandler, channelHandler, syncHandler, feedHandler, inventoryHandler)

	// Start server
	logger.Info("amazon connector service starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// runScheduler triggers a full sync pass at the configured interval.
func runScheduler(scheduler *services.SyncScheduler, interval, timeout time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := scheduler.SyncAllChannels(ctx); err != nil {
			logger.Error("scheduled sync pass failed", zap.Error(err))
		}
		cancel()
	}
}

// setupRouter configures the HTTP router
func setupRouter(
	logger *zap.Logger,
	healthHandler *handlers.HealthHandler,
	channelHandler *handlers.ChannelHandler,
	syncHandler *handlers.SyncHandler,
	feedHandler *handlers.FeedHandler,
	inventoryHandler *handlers.InventoryHandler,
) *gin.Engine {
	router := gin.Default()

	// Security headers middleware
	router.Use(middleware.SecurityHeaders())

	// CORS middleware
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{
			"http://localhost:3000",
			"http://localhost:3001",
		}
	}
	router.Use(middleware.CORS(origins))
	router.Use(middleware.RequestLogger(logger))

	// Health check
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		// Channels
		channels := v1.Group("/channels")
		{
			channels.POST("", channelHandler.Create)
			channels.GET("/:id", channelHandler.Get)
			channels.POST("/:id/order-states/seed", channelHandler.SeedOrderStates)
			channels.GET("/:id/service-status", channelHandler.CheckServiceStatus)
			channels.GET("/:id/settings-check", channelHandler.CheckSettings)

			// Order synchronization
			channels.POST("/:id/import-orders", syncHandler.ImportOrders)
			channels.POST("/:id/orders/:externalId/import", syncHandler.ImportOrder)
			channels.POST("/:id/update-order-statuses", syncHandler.UpdateOrderStatuses)
			channels.GET("/:id/exceptions", syncHandler.ListExceptions)

			// Outbound feeds
			channels.POST("/:id/export-prices", feedHandler.ExportPrices)
			channels.POST("/:id/export-inventory", feedHandler.ExportInventory)
			channels.POST("/:id/export-shipment-status", feedHandler.ExportShipmentStatus)
		}

		// Exceptions
		v1.POST("/exceptions/:id/resolve", syncHandler.ResolveException)

		// Stock levels
		v1.PUT("/inventory", inventoryHandler.SetOnHand)

		// Cross-channel sync
		v1.POST("/sync/all", syncHandler.SyncAll)
		v1.POST("/sync/export-inventory", feedHandler.ExportAllInventory)
	}

	return router
}
