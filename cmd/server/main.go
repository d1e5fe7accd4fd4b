package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spirittours/travelcore/internal/domain/provider"
	"github.com/spirittours/travelcore/internal/domain/repository"
	"github.com/spirittours/travelcore/internal/infrastructure/cache"
	"github.com/spirittours/travelcore/internal/infrastructure/config"
	"github.com/spirittours/travelcore/internal/infrastructure/persistence"
	"github.com/spirittours/travelcore/internal/interface/adapters"
	adapterRepo "github.com/spirittours/travelcore/internal/interface/repository"
	"github.com/spirittours/travelcore/internal/interface/rest"
	"github.com/spirittours/travelcore/internal/usecase"
	"github.com/spirittours/travelcore/pkg/logger"
	"github.com/spirittours/travelcore/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func credentials(c config.ProviderCredentials) provider.Credentials {
	return provider.Credentials{
		Endpoint:   c.Endpoint,
		APIKey:     c.APIKey,
		APISecret:  c.APISecret,
		Username:   c.Username,
		Password:   c.Password,
		BranchCode: c.BranchCode,
	}
}

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting TravelCore Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection (booking sink)
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	bookingRepository := adapterRepo.NewMongoBookingRepository(db)

	// Agency commission data lives in PostgreSQL; without a DSN the default
	// commission rate applies to every attributed booking
	var agencyRepository repository.AgencyRepository
	if cfg.PostgresURI != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		agencyRepository = adapterRepo.NewGormAgencyRepository(gormDB)
	} else {
		log.Warn("POSTGRES_DSN not set, agency commission overrides disabled")
	}

	// Register only the providers that carry enough credential material
	var providerAdapters []provider.Adapter
	if creds := credentials(cfg.Amadeus); creds.Configured() {
		providerAdapters = append(providerAdapters, adapters.NewAmadeusAdapter(creds, log))
	}
	if creds := credentials(cfg.Hotelbeds); creds.Configured() {
		providerAdapters = append(providerAdapters, adapters.NewHotelbedsAdapter(creds, log))
	}
	if creds := credentials(cfg.Rentalcars); creds.Configured() {
		providerAdapters = append(providerAdapters, adapters.NewRentalcarsAdapter(creds, log))
	}
	if len(providerAdapters) == 0 {
		log.Warn("no provider credentials configured, all searches will return empty aggregates")
	}

	m := metrics.NewMetrics("travelcore", prometheus.DefaultRegisterer)

	resultCache := cache.NewMemory(cfg.CacheWaitTimeout)
	defer resultCache.Close()

	orchestrator := usecase.NewOrchestrator(providerAdapters, resultCache, cfg.AdapterTimeout, cfg.CacheTTL, log, m)
	dispatcher := usecase.NewDispatcher(providerAdapters, bookingRepository, agencyRepository, cfg.DefaultCommissionRate, log, m)
	service := usecase.NewTravelService(orchestrator, dispatcher, log)

	handler := rest.NewHandler(service, log)
	router := rest.NewRouter(handler, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("TravelCore Service stopped")
}
