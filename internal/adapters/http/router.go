package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/campusmap/internal/pkg/metrics"
)

const requestTimeout = 10 * time.Second

// legacyRoutes are kept for clients of the first campus map release.
var legacyRoutes = []DeprecatedRoute{
	{
		Path:        "/v1/buildings/search",
		SunsetDate:  time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
		Alternative: "/v1/locations/search",
	},
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 240 requests per minute per IP. Suggestion lookups are
	// chatty, so this is looser than a typical CRUD API.
	app.Use(limiter.New(limiter.Config{
		Max:        240,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/ws"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(legacyRoutes))

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/locations", timeout.NewWithContext(ListLocationsHandler(deps), requestTimeout))
	v1.Get("/locations/search", timeout.NewWithContext(SearchLocationsHandler(deps), requestTimeout))
	v1.Get("/locations/nearby", timeout.NewWithContext(NearbyLocationsHandler(deps), requestTimeout))
	v1.Get("/locations/:name", timeout.NewWithContext(GetLocationHandler(deps), requestTimeout))
	v1.Get("/locations/:name/frame", timeout.NewWithContext(FrameLocationHandler(deps), requestTimeout))
	v1.Get("/locations/:name/screen", timeout.NewWithContext(ScreenLocationHandler(deps), requestTimeout))
	v1.Get("/stats/popular", PopularHandler(deps))
	v1.Get("/buildings/search", LegacyBuildingSearchHandler(deps))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, OpenAPIPath)

	// Interactive search sessions
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
