package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets a default Cache-Control on GET responses that the
// handler left unset. The catalogue is static for the life of the process,
// so most reads can be cached generously.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Get(fiber.HeaderCacheControl) != "" {
			return err
		}
		if ttl := cacheTTLFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheTTLFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics" || path == "/ws":
		return "no-cache"
	case strings.HasPrefix(path, "/v1/stats/"):
		return "public, max-age=30"
	case strings.HasPrefix(path, "/v1/locations/search"), strings.HasPrefix(path, "/v1/locations/nearby"):
		return "public, max-age=300"
	case strings.HasPrefix(path, "/v1/locations"):
		return "public, max-age=3600"
	case strings.HasPrefix(path, "/v1/"):
		return "public, max-age=300"
	}
	return ""
}
