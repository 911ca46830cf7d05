package http

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/usecases"
)

// SearchResult is one ranked location with its name and description split
// for highlighting.
type SearchResult struct {
	Location            domain.Location     `json:"location"`
	Score               int                 `json:"score"`
	MatchedField        domain.MatchedField `json:"matched_field"`
	Segments            []domain.Segment    `json:"segments"`
	DescriptionSegments []domain.Segment    `json:"description_segments,omitempty"`
}

func toSearchResults(query string, ranked []domain.RankedCandidate) []SearchResult {
	out := make([]SearchResult, 0, len(ranked))
	for _, r := range ranked {
		res := SearchResult{
			Location:     r.Location,
			Score:        r.Score,
			MatchedField: r.MatchedField,
			Segments:     usecases.Highlight(r.Location.Name, query),
		}
		if r.Location.Description != "" {
			res.DescriptionSegments = usecases.Highlight(r.Location.Description, query)
		}
		out = append(out, res)
	}
	return out
}

// nameParam returns the unescaped :name route parameter. Names may contain
// slashes, which clients send as %2F.
func nameParam(c *fiber.Ctx) (string, error) {
	return url.PathUnescape(c.Params("name"))
}

// ListLocationsHandler returns the catalogue in load order, paginated.
func ListLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		locs, total := deps.Search.List(c.UserContext(), offset, limit)

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: locs, Pagination: pg})
	}
}

// SearchLocationsHandler ranks the catalogue for q.
func SearchLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if strings.TrimSpace(query) == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		limit := c.QueryInt("limit", usecases.DefaultSuggestionLimit)

		ranked, err := deps.Search.Search(c.UserContext(), query, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(toSearchResults(query, ranked))
	}
}

// NearbyLocationsHandler returns geo-referenced locations around a point.
func NearbyLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 200)
		limit := c.QueryInt("limit", 20)

		if radius <= 0 || radius > 5000 {
			return errBadRequest(c, "radius must be between 1 and 5000 meters")
		}

		near, err := deps.Search.Nearby(c.UserContext(), lat, lon, radius, limit)
		if err != nil {
			return errFromDomain(c, err)
		}
		if near == nil {
			near = []domain.LocationDistance{}
		}
		return c.JSON(near)
	}
}

// GetLocationHandler returns a single location by name.
func GetLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := nameParam(c)
		if err != nil || strings.TrimSpace(name) == "" {
			return errBadRequest(c, "location name is required")
		}
		loc, err := deps.Search.Get(c.UserContext(), name)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(loc)
	}
}

// FrameLocationHandler computes the transform and marker anchor framing a
// location in a container of ?width x ?height pixels. Without a usable
// container the result is unscaled.
func FrameLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := nameParam(c)
		if err != nil || strings.TrimSpace(name) == "" {
			return errBadRequest(c, "location name is required")
		}
		container := domain.Size{
			Width:  c.QueryFloat("width", 0),
			Height: c.QueryFloat("height", 0),
		}

		framing, err := deps.Search.Frame(c.UserContext(), name, container)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "private, max-age=0")
		return c.JSON(framing)
	}
}

// ScreenLocationHandler maps the marker anchor of a location under a CSS
// transform given as ?transform=matrix(a,b,c,d,e,f).
func ScreenLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := nameParam(c)
		if err != nil || strings.TrimSpace(name) == "" {
			return errBadRequest(c, "location name is required")
		}
		css := c.Query("transform", "none")
		if _, err := usecases.ParseCSSTransform(css); err != nil {
			return errFromDomain(c, err)
		}

		pos, err := deps.Search.Screen(c.UserContext(), name, css)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set("Cache-Control", "private, max-age=0")
		return c.JSON(pos)
	}
}

// PopularStats is the payload of /v1/stats/popular.
type PopularStats struct {
	Total     int                  `json:"total"`
	Locations []domain.Popularity  `json:"locations"`
	Misses    []domain.MissedQuery `json:"misses"`
}

// PopularHandler returns the most committed locations and unmatched queries.
func PopularHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 10)
		if limit <= 0 || limit > 100 {
			limit = 10
		}
		if deps.Popularity == nil {
			return c.JSON(PopularStats{Locations: []domain.Popularity{}, Misses: []domain.MissedQuery{}})
		}

		c.Set("Cache-Control", "public, max-age=30")
		return c.JSON(PopularStats{
			Total:     deps.Popularity.Total(),
			Locations: deps.Popularity.Top(limit),
			Misses:    deps.Popularity.TopMisses(limit),
		})
	}
}

// LegacyBuildingSearchHandler serves the old exact-name lookup. It returns
// the single building whose name equals q, ignoring case.
func LegacyBuildingSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		loc, err := deps.Search.Get(c.UserContext(), q)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(loc)
	}
}
