package domain

import (
	"context"
	"encoding/json"
)

// Geometry types accepted as a city outline.
const (
	GeometryPolygon      = "Polygon"
	GeometryMultiPolygon = "MultiPolygon"
)

// BoundaryRequest identifies a city whose outline should be drawn.
type BoundaryRequest struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Key returns the cache key for the request. Identical city and country text
// always yields the same key; no normalization is applied.
func (r BoundaryRequest) Key() string {
	return r.Country + "::" + r.City
}

// Geometry is a GeoJSON geometry object. Coordinates are kept verbatim so the
// polygon handed to the map is exactly what the geocoder returned.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
}

// IsArea reports whether the geometry encloses an area.
func (g Geometry) IsArea() bool {
	return g.Type == GeometryPolygon || g.Type == GeometryMultiPolygon
}

// Boundary is a resolved city outline tagged with the caller's own labels.
type Boundary struct {
	City     string   `json:"city"`
	Country  string   `json:"country"`
	Geometry Geometry `json:"geometry"`
}

// BoundaryResult is the outcome of a boundary lookup. A zero value means not
// found: no such place, no polygon for it, or the lookup failed.
type BoundaryResult struct {
	Boundary Boundary
	Found    bool
}

// Found wraps a resolved boundary.
func Found(b Boundary) BoundaryResult {
	return BoundaryResult{Boundary: b, Found: true}
}

// NotFound is the single failure outcome of a boundary lookup.
func NotFound() BoundaryResult {
	return BoundaryResult{}
}

// BoundaryFetcher performs one network lookup of a city boundary. The error
// describes why nothing usable came back; callers that only draw shapes can
// ignore it and treat the result as not found.
type BoundaryFetcher interface {
	FetchBoundary(ctx context.Context, req BoundaryRequest) (BoundaryResult, error)
}

// BoundaryLookup is the cached view of boundaries used by the rest of the service.
type BoundaryLookup interface {
	Lookup(ctx context.Context, req BoundaryRequest) BoundaryResult
	LookupAll(ctx context.Context, reqs []BoundaryRequest) []Boundary
}
