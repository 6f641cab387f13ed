package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
)

// buildSchema creates the read-only GraphQL schema wired to the trip service.
// Object fields resolve through the json tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	journeyEventType := graphql.NewObject(graphql.ObjectConfig{
		Name: "JourneyEvent",
		Fields: graphql.Fields{
			"status":     &graphql.Field{Type: graphql.String},
			"stop_index": &graphql.Field{Type: graphql.Int},
			"timestamp":  &graphql.Field{Type: graphql.DateTime},
			"location":   &graphql.Field{Type: geoPointType},
			"notes":      &graphql.Field{Type: graphql.String},
			"updated_by": &graphql.Field{Type: graphql.String},
		},
	})

	journeyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Journey",
		Fields: graphql.Fields{
			"current_stop_index":    &graphql.Field{Type: graphql.Int},
			"current_status":        &graphql.Field{Type: graphql.String},
			"status_history":        &graphql.Field{Type: graphql.NewList(journeyEventType)},
			"actual_departure_time": &graphql.Field{Type: graphql.DateTime},
			"actual_arrival_time":   &graphql.Field{Type: graphql.DateTime},
		},
	})

	bookedSeatType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BookedSeat",
		Fields: graphql.Fields{
			"seat_number":    &graphql.Field{Type: graphql.String},
			"booking_id":     &graphql.Field{Type: graphql.String},
			"passenger_name": &graphql.Field{Type: graphql.String},
		},
	})

	tripType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Trip",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.String},
			"operator_id":        &graphql.Field{Type: graphql.String},
			"route_id":           &graphql.Field{Type: graphql.String},
			"bus_id":             &graphql.Field{Type: graphql.String},
			"driver_id":          &graphql.Field{Type: graphql.String},
			"trip_manager_id":    &graphql.Field{Type: graphql.String},
			"departure_time":     &graphql.Field{Type: graphql.DateTime},
			"arrival_time":       &graphql.Field{Type: graphql.DateTime},
			"base_price":         &graphql.Field{Type: graphql.Float},
			"discount":           &graphql.Field{Type: graphql.Float},
			"final_price":        &graphql.Field{Type: graphql.Float},
			"total_seats":        &graphql.Field{Type: graphql.Int},
			"available_seats":    &graphql.Field{Type: graphql.Int},
			"booked_seats":       &graphql.Field{Type: graphql.NewList(bookedSeatType)},
			"total_stops":        &graphql.Field{Type: graphql.Int},
			"status":             &graphql.Field{Type: graphql.String},
			"journey":            &graphql.Field{Type: journeyType},
			"cancel_reason":      &graphql.Field{Type: graphql.String},
			"is_recurring":       &graphql.Field{Type: graphql.Boolean},
			"recurring_group_id": &graphql.Field{Type: graphql.String},
			"version":            &graphql.Field{Type: graphql.Int},
		},
	})

	tripPageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TripPage",
		Fields: graphql.Fields{
			"data":  &graphql.Field{Type: graphql.NewList(tripType)},
			"total": &graphql.Field{Type: graphql.Int},
		},
	})

	priceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PriceBreakdown",
		Fields: graphql.Fields{
			"base_price":          &graphql.Field{Type: graphql.Float},
			"occupancy_rate":      &graphql.Field{Type: graphql.Float},
			"demand_surge":        &graphql.Field{Type: graphql.Float},
			"early_bird_discount": &graphql.Field{Type: graphql.Float},
			"peak_hours_premium":  &graphql.Field{Type: graphql.Float},
			"weekend_premium":     &graphql.Field{Type: graphql.Float},
			"manual_discount":     &graphql.Field{Type: graphql.Float},
			"final_price":         &graphql.Field{Type: graphql.Float},
			"dynamic_pricing":     &graphql.Field{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"trip": &graphql.Field{
				Type:        tripType,
				Description: "Get a trip by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Trips.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"tripsByOperator": &graphql.Field{
				Type:        tripPageType,
				Description: "Page through an operator's trips by departure time",
				Args: graphql.FieldConfigArgument{
					"operator_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"status":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"offset":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":       &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := ports.TripFilter{Status: domain.TripStatus(p.Args["status"].(string))}
					trips, total, err := deps.Trips.ListByOperator(p.Context, p.Args["operator_id"].(string), filter,
						p.Args["offset"].(int), p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"data": trips, "total": total}, nil
				},
			},
			"price": &graphql.Field{
				Type:        priceType,
				Description: "Quote the dynamic seat price of a trip",
				Args: graphql.FieldConfigArgument{
					"trip_id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"booking_date": &graphql.ArgumentConfig{Type: graphql.String, Description: "RFC 3339, defaults to now"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var at *time.Time
					if raw, ok := p.Args["booking_date"].(string); ok && raw != "" {
						t, err := time.Parse(time.RFC3339, raw)
						if err != nil {
							return nil, fmt.Errorf("booking_date must be an RFC 3339 timestamp")
						}
						at = &t
					}
					return deps.Trips.CalculateDynamicPrice(p.Context, p.Args["trip_id"].(string), at)
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
		// This would be a programming error in the schema definition
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
