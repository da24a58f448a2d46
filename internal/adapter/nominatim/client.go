package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/travel-journal/internal/domain"
	"github.com/couchcryptid/travel-journal/internal/observability"
)

// DefaultURL is the public OpenStreetMap search endpoint.
const DefaultURL = "https://nominatim.openstreetmap.org/search"

// Client implements domain.BoundaryFetcher against a Nominatim search endpoint.
type Client struct {
	httpClient *http.Client
	searchURL  string
	userAgent  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. The user agent identifies the caller
// as required by the public service's usage policy.
func NewClient(searchURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if searchURL == "" {
		searchURL = DefaultURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		searchURL: searchURL,
		userAgent: userAgent,
		metrics:   metrics,
		logger:    logger,
	}
}

// FetchBoundary looks up the outline of a city. The returned boundary carries
// the caller's city and country labels, not the names the service reports.
func (c *Client) FetchBoundary(ctx context.Context, req domain.BoundaryRequest) (domain.BoundaryResult, error) {
	start := time.Now()
	result, err := c.fetch(ctx, req)
	c.metrics.BoundaryFetchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.BoundaryFetches.WithLabelValues("error").Inc()
	case result.Found:
		c.metrics.BoundaryFetches.WithLabelValues("found").Inc()
	default:
		c.metrics.BoundaryFetches.WithLabelValues("not_found").Inc()
	}
	return result, err
}

func (c *Client) fetch(ctx context.Context, req domain.BoundaryRequest) (domain.BoundaryResult, error) {
	params := url.Values{
		"city":            {req.City},
		"country":         {req.Country},
		"format":          {"json"},
		"polygon_geojson": {"1"},
		"limit":           {"1"},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.NotFound(), fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.NotFound(), fmt.Errorf("boundary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.NotFound(), fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.NotFound(), fmt.Errorf("decode response: %w", err)
	}

	if len(places) == 0 {
		return domain.NotFound(), nil
	}

	p := places[0]
	if p.GeoJSON == nil || !p.GeoJSON.IsArea() {
		c.logger.Debug("no polygon for place",
			"city", req.City,
			"country", req.Country,
			"display_name", p.DisplayName,
		)
		return domain.NotFound(), nil
	}

	return domain.Found(domain.Boundary{
		City:     req.City,
		Country:  req.Country,
		Geometry: *p.GeoJSON,
	}), nil
}

// Nominatim API response types.

type place struct {
	PlaceID     int64            `json:"place_id"`
	DisplayName string           `json:"display_name"`
	GeoJSON     *domain.Geometry `json:"geojson"`
}
