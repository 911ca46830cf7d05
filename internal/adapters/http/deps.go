package http

import (
	"context"
	"log/slog"

	"github.com/samirrijal/campusmap/internal/core/ports"
	"github.com/samirrijal/campusmap/internal/core/usecases"
)

// Pinger is a backing service with a connectivity check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Broker reports message broker connectivity.
type Broker interface {
	Connected() bool
}

// Dependencies holds all services needed by HTTP handlers. DB, Cache and
// Events are optional and only feed the readiness probe.
type Dependencies struct {
	Search     *usecases.SearchService
	Popularity *usecases.PopularityService
	Registry   ports.LocationRegistry
	Publisher  ports.EventPublisher
	Session    usecases.OrchestratorConfig
	DB         Pinger
	Cache      Pinger
	Events     Broker
	Logger     *slog.Logger
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
