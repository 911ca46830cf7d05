package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/samirrijal/campusmap/internal/adapters/catalog"
	"github.com/samirrijal/campusmap/internal/adapters/memory"
	"github.com/samirrijal/campusmap/internal/adapters/postgres"
	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/ports"
	"github.com/samirrijal/campusmap/internal/pkg/config"
	"github.com/samirrijal/campusmap/internal/pkg/logging"
)

// ingestor moves the location catalogue between JSON documents and Postgres.
//
//	ingestor import [catalog.json]   validate and upsert (built-in catalogue when omitted)
//	ingestor export <catalog.json>   write the stored catalogue as JSON
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: ingestor <import|export> [catalog.json]")
	}

	cfg, err := config.Load("campusmap-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	repo := postgres.NewLocationRepo(db)

	path := ""
	if len(os.Args) > 2 {
		path = os.Args[2]
	}
	canvas := domain.Size{Width: cfg.Viewport.CanvasWidth, Height: cfg.Viewport.CanvasHeight}

	switch os.Args[1] {
	case "import":
		if err := importCatalog(ctx, repo, path, canvas); err != nil {
			log.Fatalf("import: %v", err)
		}
	case "export":
		if path == "" {
			log.Fatal("export needs an output path")
		}
		if err := exportCatalog(ctx, repo, path); err != nil {
			log.Fatalf("export: %v", err)
		}
	default:
		log.Fatalf("unknown command %q", os.Args[1])
	}
}

func importCatalog(ctx context.Context, store ports.LocationStore, path string, canvas domain.Size) error {
	locs, err := catalog.NewFileSource(path, canvas).Load(ctx)
	if err != nil {
		return err
	}
	// The registry enforces the same invariants the API does at start-up.
	reg, err := memory.NewRegistry(locs)
	if err != nil {
		return err
	}
	if err := store.UpsertBatch(ctx, reg.All()); err != nil {
		return err
	}
	slog.Info("catalog imported", "path", path, "locations", reg.Len())
	return nil
}

func exportCatalog(ctx context.Context, source ports.LocationSource, path string) error {
	locs, err := source.Load(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(catalog.FromLocations(locs), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	slog.Info("catalog exported", "path", path, "locations", len(locs))
	return nil
}
