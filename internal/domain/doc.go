// Package domain models the travel journal: posts, gallery photos, the
// author profile, and the city boundary polygons drawn on the reader map.
//
// # Content
//
// Posts are tied to a single (city, country) pair. The pair is free text as
// entered by the author and doubles as the label used to look up the city's
// boundary polygon. Gallery items and the singleton profile carry no geography
// beyond optional labels.
//
// # Boundaries
//
// City boundaries come from a Nominatim-compatible geocoding service queried
// with structured parameters:
//
//	GET /search?city=Kyoto&country=Japan&format=json&polygon_geojson=1&limit=1
//
// The response is a JSON array; the first element's "geojson" member holds the
// geometry. Only "Polygon" and "MultiPolygon" geometries are usable as a city
// outline. Anything else (a "Point" for a village without an admin boundary,
// an empty array, a transport failure) is reported as not found and the map
// simply draws no shape for that city.
//
// Boundaries are cached per [BoundaryRequest.Key], which is "<country>::<city>"
// with no case folding or trimming: "kyoto" and "Kyoto" are different keys.
package domain
