package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/ports"
	"github.com/samirrijal/campusmap/internal/pkg/geospatial"
	"github.com/samirrijal/campusmap/internal/pkg/metrics"
	"github.com/samirrijal/campusmap/internal/pkg/telemetry"
)

// MaxSearchLimit caps how many ranked results a single request may return.
const MaxSearchLimit = 50

// SearchServiceConfig configures the stateless query surface.
type SearchServiceConfig struct {
	CacheTTLSeconds int
	MaxQueryLength  int
	Canvas          domain.Size
	Fit             FitParams
	MarkerOffset    float64
}

// SearchService answers one-shot queries against the registry. Interactive
// sessions use Orchestrator instead.
type SearchService struct {
	registry ports.LocationRegistry
	cache    ports.CacheService
	cfg      SearchServiceConfig
	mapper   *CoordinateMapper
	tracer   trace.Tracer
}

// NewSearchService creates a new SearchService. cache may be nil.
func NewSearchService(registry ports.LocationRegistry, cache ports.CacheService, cfg SearchServiceConfig, logger *slog.Logger) *SearchService {
	if !cfg.Canvas.Usable() {
		cfg.Canvas = DefaultCanvas
	}
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = 200
	}
	if cfg.CacheTTLSeconds <= 0 {
		cfg.CacheTTLSeconds = 300
	}
	cfg.Fit = cfg.Fit.normalized()
	return &SearchService{
		registry: registry,
		cache:    cache,
		cfg:      cfg,
		mapper:   NewCoordinateMapper(cfg.Canvas, cfg.MarkerOffset, logger),
		tracer:   telemetry.Tracer(),
	}
}

// Search ranks the catalogue for query and returns at most limit candidates.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.RankedCandidate, error) {
	ctx, span := s.tracer.Start(ctx, "SearchService.Search")
	defer span.End()

	term := strings.TrimSpace(query)
	if term == "" {
		return nil, domain.ErrEmptyQuery
	}
	if len(term) > s.cfg.MaxQueryLength {
		return nil, fmt.Errorf("%w: %d > %d bytes", domain.ErrQueryTooLong, len(term), s.cfg.MaxQueryLength)
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	span.SetAttributes(telemetry.AttrQuery.String(term))

	cacheKey := fmt.Sprintf("locations:search:%s:%s:%d", s.registry.Fingerprint(), strings.ToLower(term), limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached []domain.RankedCandidate
			if err := json.Unmarshal(data, &cached); err == nil {
				metrics.CacheHits.WithLabelValues("search").Inc()
				span.SetAttributes(telemetry.AttrCacheHit.Bool(true))
				return cached, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("search").Inc()
	}

	start := time.Now()
	ranked := Top(Rank(term, s.registry.All()), limit)
	metrics.RankDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(telemetry.AttrCandidates.Int(len(ranked)))

	if s.cache != nil {
		if data, err := json.Marshal(ranked); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cfg.CacheTTLSeconds)
		}
	}
	return ranked, nil
}

// Get returns a location by exact (case-insensitive) name.
func (s *SearchService) Get(ctx context.Context, name string) (domain.Location, error) {
	return s.registry.FindByName(name)
}

// List returns a page of the catalogue in load order and the total count.
func (s *SearchService) List(ctx context.Context, offset, limit int) ([]domain.Location, int) {
	all := s.registry.All()
	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Location{}, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total
}

// Nearby returns geo-referenced locations within radiusMeters of the point,
// closest first.
func (s *SearchService) Nearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.LocationDistance, error) {
	_, span := s.tracer.Start(ctx, "SearchService.Nearby")
	defer span.End()

	if !geospatial.ValidCoordinate(lat, lon) {
		return nil, fmt.Errorf("%w: coordinate %f,%f out of range", domain.ErrInvalidLocation, lat, lon)
	}
	if limit <= 0 || limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	var out []domain.LocationDistance
	for _, loc := range s.registry.All() {
		if loc.Coordinates == nil {
			continue
		}
		d := geospatial.Haversine(lat, lon, loc.Coordinates.Lat, loc.Coordinates.Lon)
		if d <= radiusMeters {
			out = append(out, domain.LocationDistance{Location: loc, Meters: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Meters < out[j].Meters })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Frame computes the transform and marker anchor for name in a container of
// the given size without touching any session state. When the container is
// unusable the result is unscaled.
func (s *SearchService) Frame(ctx context.Context, name string, container domain.Size) (domain.Framing, error) {
	_, span := s.tracer.Start(ctx, "SearchService.Frame")
	defer span.End()

	loc, err := s.registry.FindByName(name)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Framing{}, err
	}
	span.SetAttributes(telemetry.AttrLocation.String(loc.Name))

	t, err := ComputeFit(loc.BoundingBox, container, s.cfg.Canvas, s.cfg.Fit)
	if errors.Is(err, domain.ErrContainerUnavailable) {
		return domain.Framing{
			Location:  loc.Name,
			Transform: domain.IdentityTransform,
			Marker:    s.mapper.ToScreen(loc.BoundingBox, domain.IdentityTransform),
		}, nil
	}
	if err != nil {
		return domain.Framing{}, err
	}
	return domain.Framing{
		Location:  loc.Name,
		Transform: t,
		Marker:    s.mapper.ToScreen(loc.BoundingBox, t),
		Scaled:    true,
	}, nil
}

// Screen maps the marker anchor for name under a CSS transform string as
// reported by a renderer ("none" or "matrix(...)").
func (s *SearchService) Screen(ctx context.Context, name, css string) (domain.Point, error) {
	loc, err := s.registry.FindByName(name)
	if err != nil {
		return domain.Point{}, err
	}
	return s.mapper.ToScreenCSS(loc.BoundingBox, css), nil
}
