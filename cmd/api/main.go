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

	"ivyresort/internal/api"
	"ivyresort/internal/config"
	"ivyresort/internal/database"
	"ivyresort/internal/domain"
	"ivyresort/internal/events"
	"ivyresort/internal/logging"
	"ivyresort/internal/mail"
	"ivyresort/internal/metrics"
	"ivyresort/internal/models"
	"ivyresort/internal/repository"
	"ivyresort/internal/service"
	"ivyresort/internal/sheets"
	syncpkg "ivyresort/internal/sync"
	"ivyresort/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

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

	roomTypes, err := loadRoomTypes(&logger)
	if err != nil {
		return err
	}
	if err := config.ValidateRoomTypes(roomTypes); err != nil {
		return fmt.Errorf("room types: %w", err)
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()
	db.SetRoomTypes(roomTypes)

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewEventBus()
	mailer := mail.NewChainFromConfig(cfg.Mail, &logger)

	sheetsService := initSheets(ctx, cfg, &logger)

	var enqueuer domain.SyncEnqueuer
	if sheetsService != nil {
		w := worker.NewSyncWorker(db, sheetsService, redisClient, worker.RetryPolicy{}, logger)
		go w.Start(ctx)
		enqueuer = w
	}

	reservationSvc := service.NewReservationService(db, bus, mailer, enqueuer, logger)
	userSvc := service.NewUserService(db, logger)

	startSync(ctx, cfg, db, redisClient, &logger)
	startSweeper(ctx, cfg, db, bus, logger)
	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg.API, reservationSvc, userSvc, logger)
	return serve(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func loadRoomTypes(logger *zerolog.Logger) ([]models.RoomType, error) {
	roomsPath := os.Getenv("ROOMS_PATH")
	if roomsPath == "" {
		roomsPath = "configs/rooms.yaml"
	}
	data, err := os.ReadFile(roomsPath)
	if err != nil {
		logger.Error().Err(err).Str("rooms_path", roomsPath).Msg("read room types")
		return nil, err
	}

	var catalog struct {
		RoomTypes []models.RoomType `yaml:"room_types"`
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		logger.Error().Err(err).Str("rooms_path", roomsPath).Msg("parse room types")
		return nil, err
	}
	return catalog.RoomTypes, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *sheets.Service {
	if cfg.Sheets.CredentialsFile == "" || cfg.Sheets.SpreadsheetID == "" {
		return nil
	}

	svc, err := sheets.NewService(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("sheets init failed, continuing without sheets")
		return nil
	}
	if err := svc.WarmUpCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("sheets cache warm-up failed")
	}

	logger.Info().Msg("google sheets connected")
	return svc
}

func startSync(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) {
	if !cfg.Sync.Enabled {
		return
	}

	memory := repository.NewMemoryMirrorRepository()
	var mirror domain.MirrorRepository = memory
	if redisClient != nil {
		primary := repository.NewRedisMirrorRepository(redisClient, cfg.Sync.MirrorKey, cfg.Sync.Channel)
		mirror = repository.NewFailoverMirrorRepository(primary, memory, logger)
	}

	interval := time.Duration(cfg.Sync.IntervalSeconds) * time.Second
	syncer := syncpkg.NewSyncer(db, mirror, cfg.Sync.PeerURL, interval, logger)
	go syncer.Start(ctx)
}

func startSweeper(ctx context.Context, cfg *config.Config, db *database.DB, bus *events.EventBus, logger zerolog.Logger) {
	interval := time.Duration(cfg.Retention.SweepIntervalMinutes) * time.Minute
	sweeper := worker.NewSweeper(db, bus, cfg.Retention.WindowDays, interval, logger)
	go sweeper.Start(ctx)
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

func serve(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("server stopped")
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
