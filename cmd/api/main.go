package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/campusmap/internal/adapters/catalog"
	"github.com/samirrijal/campusmap/internal/adapters/http"
	"github.com/samirrijal/campusmap/internal/adapters/memory"
	natsadapter "github.com/samirrijal/campusmap/internal/adapters/nats"
	"github.com/samirrijal/campusmap/internal/adapters/postgres"
	"github.com/samirrijal/campusmap/internal/adapters/valkey"
	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/ports"
	"github.com/samirrijal/campusmap/internal/core/usecases"
	"github.com/samirrijal/campusmap/internal/pkg/config"
	"github.com/samirrijal/campusmap/internal/pkg/logging"
	"github.com/samirrijal/campusmap/internal/pkg/telemetry"
)

const poolStatsInterval = 15 * time.Second

func main() {
	cfg, err := config.Load("campusmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	canvas := domain.Size{Width: cfg.Viewport.CanvasWidth, Height: cfg.Viewport.CanvasHeight}

	deps := &http.Dependencies{Logger: appLog}

	// Catalogue
	var source ports.LocationSource
	switch cfg.Catalog.Source {
	case config.CatalogPostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		deps.DB = db
		source = postgres.NewLocationRepo(db)
		go reportPoolStats(ctx, db)
	default:
		source = catalog.NewFileSource(cfg.Catalog.Path, canvas)
	}

	locs, err := source.Load(ctx)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	registry, err := memory.NewRegistry(locs)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	slog.Info("catalog loaded", "source", cfg.Catalog.Source, "locations", registry.Len())

	// Cache
	var cache ports.CacheService
	vc, err := valkey.New(cfg.Valkey.Addr, "campusmap:")
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
		deps.Cache = vc
	}

	// Search events: NATS when reachable, otherwise tallied in process.
	popularity := usecases.NewPopularityService()
	var publisher ports.EventPublisher = popularity
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, search events stay in process", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		deps.Events = pub

		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "campusmap-api-popularity")
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			go func() {
				if err := popularity.Consume(ctx, sub); err != nil && ctx.Err() == nil {
					slog.Error("popularity consumer stopped", "error", err)
				}
			}()
		}
	}

	fit := usecases.FitParams{Padding: cfg.Viewport.Padding, MaxScale: cfg.Viewport.MaxScale}

	deps.Registry = registry
	deps.Popularity = popularity
	deps.Publisher = publisher
	deps.Search = usecases.NewSearchService(registry, cache, usecases.SearchServiceConfig{
		CacheTTLSeconds: cfg.Search.CacheTTLSeconds,
		MaxQueryLength:  cfg.Search.MaxQueryLength,
		Canvas:          canvas,
		Fit:             fit,
		MarkerOffset:    cfg.Viewport.MarkerOffset,
	}, appLog)
	deps.Session = usecases.OrchestratorConfig{
		Debounce:        cfg.Search.Debounce(),
		SettleDelay:     cfg.Search.SettleDelay(),
		HighlightFor:    cfg.Search.Highlight(),
		SuggestionLimit: cfg.Search.SuggestionLimit,
		Canvas:          canvas,
		Fit:             fit,
		MarkerOffset:    cfg.Viewport.MarkerOffset,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "Campus Map API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			db.ReportPoolStats()
		case <-ctx.Done():
			return
		}
	}
}
