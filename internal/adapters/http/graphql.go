package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services. Field names
// follow the JSON tags of the domain types, which the default resolver reads.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boxType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "BoundingBox",
		Description: "Footprint in percent of the diagram",
		Fields: graphql.Fields{
			"x":      &graphql.Field{Type: graphql.Float},
			"y":      &graphql.Field{Type: graphql.Float},
			"width":  &graphql.Field{Type: graphql.Float},
			"height": &graphql.Field{Type: graphql.Float},
		},
	})

	detailsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Details",
		Fields: graphql.Fields{
			"grade_levels": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"sections":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"extra_info":   &graphql.Field{Type: graphql.String},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"name":         &graphql.Field{Type: graphql.String},
			"category":     &graphql.Field{Type: graphql.String},
			"description":  &graphql.Field{Type: graphql.String},
			"icon":         &graphql.Field{Type: graphql.String},
			"bounding_box": &graphql.Field{Type: boxType},
			"coordinates":  &graphql.Field{Type: geoPointType},
			"details":      &graphql.Field{Type: detailsType},
		},
	})

	segmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Segment",
		Fields: graphql.Fields{
			"text":  &graphql.Field{Type: graphql.String},
			"match": &graphql.Field{Type: graphql.Boolean},
		},
	})

	resultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchResult",
		Fields: graphql.Fields{
			"location":             &graphql.Field{Type: locationType},
			"score":                &graphql.Field{Type: graphql.Int},
			"matched_field":        &graphql.Field{Type: graphql.String},
			"segments":             &graphql.Field{Type: graphql.NewList(segmentType)},
			"description_segments": &graphql.Field{Type: graphql.NewList(segmentType)},
		},
	})

	distanceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LocationDistance",
		Fields: graphql.Fields{
			"location": &graphql.Field{Type: locationType},
			"meters":   &graphql.Field{Type: graphql.Float},
		},
	})

	transformType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Transform",
		Fields: graphql.Fields{
			"scale":       &graphql.Field{Type: graphql.Float},
			"translate_x": &graphql.Field{Type: graphql.Float},
			"translate_y": &graphql.Field{Type: graphql.Float},
		},
	})

	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
		},
	})

	framingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Framing",
		Fields: graphql.Fields{
			"location":  &graphql.Field{Type: graphql.String},
			"transform": &graphql.Field{Type: transformType},
			"marker":    &graphql.Field{Type: pointType},
			"scaled":    &graphql.Field{Type: graphql.Boolean},
		},
	})

	popularityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Popularity",
		Fields: graphql.Fields{
			"location": &graphql.Field{Type: graphql.String},
			"count":    &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"locations": &graphql.Field{
				Type:        graphql.NewList(locationType),
				Description: "Every location in catalogue order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Registry.All(), nil
				},
			},
			"location": &graphql.Field{
				Type:        locationType,
				Description: "A location by exact name, ignoring case",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Search.Get(p.Context, p.Args["name"].(string))
				},
			},
			"search": &graphql.Field{
				Type:        graphql.NewList(resultType),
				Description: "Ranked locations matching a query",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: usecases.DefaultSuggestionLimit},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					ranked, err := deps.Search.Search(p.Context, q, p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					return toSearchResults(q, ranked), nil
				},
			},
			"nearby": &graphql.Field{
				Type:        graphql.NewList(distanceType),
				Description: "Geo-referenced locations near a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 200.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Search.Nearby(p.Context,
						p.Args["lat"].(float64), p.Args["lon"].(float64),
						p.Args["radius"].(float64), p.Args["limit"].(int))
				},
			},
			"frame": &graphql.Field{
				Type:        framingType,
				Description: "Transform framing a location in a container",
				Args: graphql.FieldConfigArgument{
					"name":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"width":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"height": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					size := domain.Size{Width: p.Args["width"].(float64), Height: p.Args["height"].(float64)}
					return deps.Search.Frame(p.Context, p.Args["name"].(string), size)
				},
			},
			"popular": &graphql.Field{
				Type:        graphql.NewList(popularityType),
				Description: "Most committed locations",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Popularity == nil {
						return []domain.Popularity{}, nil
					}
					return deps.Popularity.Top(p.Args["limit"].(int)), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// A schema error is a programming error.
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
