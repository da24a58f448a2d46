package nominatim

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/travel-journal/internal/domain"
	"github.com/couchcryptid/travel-journal/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserAgent     = "journal-test/1.0"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"

	kyotoPolygon = `{"type":"Polygon","coordinates":[[[135.7,35.0],[135.8,35.0],[135.8,35.1],[135.7,35.0]]]}`
)

func testClient(searchURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		searchURL:  searchURL,
		userAgent:  testUserAgent,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func serveJSON(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

var kyoto = domain.BoundaryRequest{City: "Kyoto", Country: "Japan"}

func TestClient_FetchBoundary_Polygon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Kyoto", q.Get("city"))
		assert.Equal(t, "Japan", q.Get("country"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "1", q.Get("polygon_geojson"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`[{"place_id":1,"display_name":"京都市, 日本","geojson":` + kyotoPolygon + `}]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.FetchBoundary(context.Background(), kyoto)
	require.NoError(t, err)

	require.True(t, result.Found)
	assert.Equal(t, "Kyoto", result.Boundary.City, "keeps the caller's label")
	assert.Equal(t, "Japan", result.Boundary.Country)
	assert.Equal(t, domain.GeometryPolygon, result.Boundary.Geometry.Type)
	assert.JSONEq(t, `[[[135.7,35.0],[135.8,35.0],[135.8,35.1],[135.7,35.0]]]`, string(result.Boundary.Geometry.Coordinates))
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.BoundaryFetches.WithLabelValues("found")), 0)
}

func TestClient_FetchBoundary_MultiPolygon(t *testing.T) {
	srv := serveJSON(t, `[{"geojson":{"type":"MultiPolygon","coordinates":[[[[1,1],[2,2],[1,2],[1,1]]]]}}]`)

	result, err := testClient(srv.URL).FetchBoundary(context.Background(), kyoto)
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, domain.GeometryMultiPolygon, result.Boundary.Geometry.Type)
}

func TestClient_FetchBoundary_PointIsNotFound(t *testing.T) {
	srv := serveJSON(t, `[{"geojson":{"type":"Point","coordinates":[135.76,35.01]}}]`)

	c := testClient(srv.URL)
	result, err := c.FetchBoundary(context.Background(), kyoto)
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.BoundaryFetches.WithLabelValues("not_found")), 0)
}

func TestClient_FetchBoundary_MissingGeoJSON(t *testing.T) {
	srv := serveJSON(t, `[{"place_id":7,"display_name":"Somewhere"}]`)

	result, err := testClient(srv.URL).FetchBoundary(context.Background(), kyoto)
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestClient_FetchBoundary_NoResults(t *testing.T) {
	srv := serveJSON(t, `[]`)

	result, err := testClient(srv.URL).FetchBoundary(context.Background(), domain.BoundaryRequest{City: "Unknownville", Country: "Nowhere"})
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestClient_FetchBoundary_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`slow down`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.FetchBoundary(context.Background(), kyoto)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.False(t, result.Found)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.BoundaryFetches.WithLabelValues("error")), 0)
}

func TestClient_FetchBoundary_MalformedJSON(t *testing.T) {
	srv := serveJSON(t, `<html>not json</html>`)

	result, err := testClient(srv.URL).FetchBoundary(context.Background(), kyoto)
	require.Error(t, err)
	assert.False(t, result.Found)
}

func TestClient_FetchBoundary_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	result, err := c.FetchBoundary(context.Background(), kyoto)
	require.Error(t, err)
	assert.False(t, result.Found)
}

func TestClient_FetchBoundary_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	result, err := testClient(addr).FetchBoundary(context.Background(), kyoto)
	require.Error(t, err)
	assert.False(t, result.Found)
}

func TestNewClient_DefaultURL(t *testing.T) {
	c := NewClient("", testUserAgent, time.Second, observability.NewMetricsForTesting(), slog.Default())
	assert.Equal(t, DefaultURL, c.searchURL)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}
