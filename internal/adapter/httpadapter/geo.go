package httpadapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/couchcryptid/travel-journal/internal/domain"
)

type featureProperties struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

type feature struct {
	Type       string            `json:"type"`
	Geometry   domain.Geometry   `json:"geometry"`
	Properties featureProperties `json:"properties"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

func toFeature(b domain.Boundary) feature {
	return feature{
		Type:       "Feature",
		Geometry:   b.Geometry,
		Properties: featureProperties{City: b.City, Country: b.Country},
	}
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.journal.Countries(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

// handleBoundaries draws every visited city of a country. Cities without an
// outline are simply absent from the collection.
func (s *Server) handleBoundaries(w http.ResponseWriter, r *http.Request) {
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if country == "" {
		s.writeError(w, fmt.Errorf("country is required: %w", domain.ErrInvalidInput))
		return
	}

	boundaries, err := s.journal.CityBoundaries(r.Context(), country)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, len(boundaries))}
	for _, b := range boundaries {
		fc.Features = append(fc.Features, toFeature(b))
	}
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) handleBoundary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := domain.BoundaryRequest{City: q.Get("city"), Country: q.Get("country")}
	if req.City == "" || req.Country == "" {
		s.writeError(w, fmt.Errorf("city and country are required: %w", domain.ErrInvalidInput))
		return
	}

	result := s.journal.Boundary(r.Context(), req)
	if !result.Found {
		s.writeError(w, fmt.Errorf("boundary for %s, %s: %w", req.City, req.Country, domain.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, toFeature(result.Boundary))
}
