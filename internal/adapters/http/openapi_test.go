package http_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/samirrijal/busseat/api"
)

func loadOpenAPI(t *testing.T) *openapi3.T {
	t.Helper()
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI document: %v", err)
	}
	return spec
}

// TestOpenAPIDocument validates the embedded document and checks that every
// registered REST route is described.
func TestOpenAPIDocument(t *testing.T) {
	spec := loadOpenAPI(t)

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI validation failed: %v", err)
	}

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/operators/{operatorId}/trips",
		"/v1/operators/{operatorId}/trips/recurring",
		"/v1/trips/{id}",
		"/v1/trips/{id}/status",
		"/v1/trips/{id}/journey",
		"/v1/trips/{id}/seats",
		"/v1/trips/{id}/seats/book",
		"/v1/trips/{id}/seats/cancel",
		"/v1/trips/{id}/seats/hold",
		"/v1/trips/{id}/seats/release",
		"/v1/trips/{id}/price",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found", path)
		}
	}

	for _, schema := range []string{"Trip", "TripSpec", "TripPatch", "SeatMap", "PriceBreakdown", "APIError", "Pagination"} {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}
}

func TestOpenAPIInfo(t *testing.T) {
	spec := loadOpenAPI(t)

	if spec.Info.Title != "BusSeat Trip API" {
		t.Errorf("expected title 'BusSeat Trip API', got %q", spec.Info.Title)
	}
	if spec.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", spec.Info.Version)
	}
	if len(spec.Servers) == 0 {
		t.Error("expected at least one server")
	}
}
