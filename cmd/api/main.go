package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"driveshare/internal/api"
	"driveshare/internal/catalog"
	"driveshare/internal/config"
	"driveshare/internal/database"
	"driveshare/internal/domain"
	"driveshare/internal/events"
	"driveshare/internal/export"
	"driveshare/internal/geocode"
	"driveshare/internal/google"
	"driveshare/internal/logging"
	"driveshare/internal/metrics"
	"driveshare/internal/profile"
	"driveshare/internal/repository"
	"driveshare/internal/service"
	"driveshare/internal/watch"
	"driveshare/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const draftTTL = 24 * time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := initDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	redisClient := initRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	drafts := initDraftRepository(redisClient, logger)

	resolver := geocode.NewClient(cfg.Geocoder.BaseURL, time.Duration(cfg.Geocoder.TimeoutSeconds)*time.Second, logger)
	catalogClient := initCatalog(cfg, redisClient, logger)
	profiles := profile.NewStaticDirectory(cfg.Owners)

	bus := events.NewEventBus()
	hub := watch.NewHub(db, logger)
	hub.Bind(bus)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledgerWorker := initLedgerWorker(ctx, cfg, db, redisClient, logger)

	listingSvc := service.NewListingService(db, drafts, resolver, profiles, bus, logger)
	bookingSvc := service.NewBookingService(db, bus, ledgerWorker, logger)
	exporter := export.NewExporter(cfg.Exports.Path, logger)

	httpServer := api.NewHTTPServer(cfg.API, listingSvc, bookingSvc, catalogClient, hub, exporter)

	startMetrics(ctx, cfg, logger)

	return startServer(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, &logger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}
	return db, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initDraftRepository prefers Redis for drafts and falls back to the
// in-process store when Redis is absent or goes down.
func initDraftRepository(redisClient *redis.Client, logger *zerolog.Logger) domain.DraftRepository {
	memory := repository.NewMemoryDraftRepository(draftTTL)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisDraftRepository(redisClient, draftTTL)
	return repository.NewFailoverDraftRepository(primary, memory, logger)
}

func initCatalog(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) *catalog.Client {
	client := catalog.NewClient(cfg.Catalog.URL, time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second, logger)
	if redisClient != nil {
		client.UseRedisCache(redisClient, time.Hour)
	}
	return client
}

// initLedgerWorker starts the background Google Sheets sync when the
// ledger is configured. Returns nil otherwise; callers treat a nil
// worker as "no ledger".
func initLedgerWorker(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) domain.SyncWorker {
	if !cfg.Ledger.Enabled {
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Ledger.CredentialsFile, cfg.Ledger.SpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without ledger")
		return nil
	}

	retry := worker.RetryPolicy{
		MaxRetries:    cfg.Ledger.MaxRetries,
		InitialDelay:  time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2,
	}
	ledgerWorker := worker.NewLedgerWorker(db, sheetsService, redisClient, retry, log.Default())
	go ledgerWorker.Start(ctx)

	logger.Info().Str("spreadsheet_id", cfg.Ledger.SpreadsheetID).Msg("ledger worker started")
	return ledgerWorker
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
