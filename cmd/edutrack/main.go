package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/edutrack/internal/absence"
	"github.com/example/edutrack/internal/application"
	"github.com/example/edutrack/internal/config"
	"github.com/example/edutrack/internal/extraction"
	httptransport "github.com/example/edutrack/internal/http"
	"github.com/example/edutrack/internal/logging"
	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/persistence/memory"
	redisstore "github.com/example/edutrack/internal/persistence/redis"
	"github.com/example/edutrack/internal/persistence/sqlite"
	"github.com/example/edutrack/internal/scheduler"
)

// maxUploadBytes bounds timetable photo uploads held in memory.
const maxUploadBytes = 16 << 20

func main() {
	cfg, err := config.Load(os.Getenv("EDUTRACK_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	loc, err := cfg.Monitor.TimeLocation()
	if err != nil {
		return fmt.Errorf("resolving monitor location: %w", err)
	}
	now := func() time.Time { return time.Now().In(loc) }

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", zap.Error(cerr))
		}
	}()

	a, err := newApp(ctx, cfg, store, logger, now)
	if err != nil {
		return err
	}

	runner := scheduler.NewRunner(logger, scheduler.NewRealTicker, now, a.jobs...)
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("starting monitor jobs: %w", err)
	}
	defer runner.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("server starting",
		zap.String("addr", server.Addr),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("location", loc.String()),
		zap.Bool("import_enabled", a.importEnabled),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// app is the wired service graph behind the HTTP listener.
type app struct {
	router        *gin.Engine
	jobs          []scheduler.Job
	importEnabled bool
}

func newApp(ctx context.Context, cfg config.Config, store persistence.Store, logger *zap.Logger, now func() time.Time) (*app, error) {
	loc, err := cfg.Monitor.TimeLocation()
	if err != nil {
		return nil, fmt.Errorf("resolving monitor location: %w", err)
	}

	rooms := application.NewRoomServiceWithLogger(store, logger)
	seeded, err := rooms.EnsureCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("seeding room catalog: %w", err)
	}
	if seeded {
		logger.Info("seeded default room catalog")
	}

	mode, err := absence.ParseDedupMode(cfg.Monitor.DedupMode)
	if err != nil {
		return nil, err
	}
	alerts := application.NewAlertServiceWithLogger(store, absence.NewDebouncer(mode, cfg.Monitor.DebounceWindow), logger)
	sessions := application.NewSessionServiceWithLogger(store, store, nil, now, logger)
	monitor := application.NewMonitorServiceWithLogger(store, store, alerts, sessions, application.MonitorOptions{
		RecipientID:     cfg.Monitor.RecipientID,
		RefreshInterval: cfg.Monitor.RefreshInterval,
		SweepInterval:   cfg.Monitor.SweepInterval,
		Location:        loc,
	}, now, logger)

	extractor, err := newExtractor(cfg.Extraction)
	if err != nil {
		return nil, err
	}
	importer := application.NewImportServiceWithLogger(extractor, store, sessions, nil, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Board:          httptransport.NewBoardHandler(monitor, rooms, logger),
		Sessions:       httptransport.NewSessionHandler(sessions, logger),
		Alerts:         httptransport.NewAlertHandler(alerts, logger),
		Timetable:      httptransport.NewTimetableHandler(importer, logger),
		Logger:         logger,
		MaxUploadBytes: maxUploadBytes,
	})

	return &app{
		router:        router,
		jobs:          monitor.Jobs(),
		importEnabled: importer.Enabled(),
	}, nil
}

// openStore opens the persistence collaborator selected by cfg.Driver.
func openStore(ctx context.Context, cfg config.StorageConfig) (persistence.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLiteDSN))
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		return store, nil
	case config.DriverRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store, err := redisstore.NewRedis(ctx, &redisstore.Config{Client: client, Prefix: cfg.RedisPrefix})
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("opening redis storage: %w", err)
		}
		return store, nil
	case config.DriverMemory:
		return memory.Open(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// newExtractor returns nil when no endpoint is configured, which leaves
// timetable import disabled.
func newExtractor(cfg config.ExtractionConfig) (extraction.Extractor, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	client, err := extraction.NewClient(extraction.ClientConfig{Endpoint: cfg.Endpoint, Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("configuring extraction client: %w", err)
	}
	return client, nil
}
