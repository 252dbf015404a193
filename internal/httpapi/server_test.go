package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tripweave/tripd/internal/auth"
	"github.com/tripweave/tripd/internal/enrichment"
	"github.com/tripweave/tripd/internal/extraction"
	"github.com/tripweave/tripd/internal/trips"
	"github.com/tripweave/tripd/internal/vectorstore"
)

// fakeVectorStore is a minimal in-memory vector store for handler
// tests.
type fakeVectorStore struct {
	docs []vectorstore.Document
}

func (f *fakeVectorStore) AddDocuments(ctx context.Context, docs []vectorstore.Document) ([]string, error) {
	f.docs = append(f.docs, docs...)
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (f *fakeVectorStore) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	results := make([]vectorstore.SearchResult, 0, len(f.docs))
	for _, d := range f.docs {
		results = append(results, vectorstore.SearchResult{ID: d.ID, Content: d.Content, Metadata: d.Metadata, Score: 0.9})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

func (f *fakeVectorStore) Count(ctx context.Context) (int, error) {
	return len(f.docs), nil
}

func setupTestServer(t *testing.T, cfg *Config) *Server {
	t.Helper()

	store := trips.NewMemoryStore()
	extractor := extraction.NewService(extraction.DefaultConfig(), nil)
	enricher := enrichment.NewEnricher(store, extractor, &fakeVectorStore{}, nil)
	sessions := auth.NewManager(time.Hour)

	server, err := NewServer(store, extractor, enricher, sessions, zap.NewNop(), cfg)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, server *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid config", func(t *testing.T) {
		server := setupTestServer(t, &Config{Host: "localhost", Port: 8090})
		assert.NotNil(t, server.echo)
	})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server := setupTestServer(t, nil)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 8090, server.config.Port)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		store := trips.NewMemoryStore()
		extractor := extraction.NewService(extraction.DefaultConfig(), nil)
		_, err := NewServer(store, extractor, nil, nil, nil, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when store is nil", func(t *testing.T) {
		extractor := extraction.NewService(extraction.DefaultConfig(), nil)
		_, err := NewServer(nil, extractor, nil, nil, zap.NewNop(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "trip store cannot be nil")
	})

	t.Run("auth requires a session manager", func(t *testing.T) {
		store := trips.NewMemoryStore()
		extractor := extraction.NewService(extraction.DefaultConfig(), nil)
		_, err := NewServer(store, extractor, nil, nil, zap.NewNop(), &Config{AuthEnabled: true})
		assert.Error(t, err)
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t, nil)

	rec := doJSON(t, server, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleExtract(t *testing.T) {
	server := setupTestServer(t, nil)

	t.Run("extracts POIs from activities", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/extract", ExtractRequest{
			Activities: []extraction.Activity{
				{Title: "Visit the Imperial City (Dai Noi) in Hue"},
				{Title: "Lunch at Quan An Ngon restaurant"},
			},
			Trip: extraction.TripContext{City: "Hue", Country: "Vietnam"},
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ExtractResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.POIs)
		assert.Equal(t, len(resp.POIs), resp.Count)
		assert.Equal(t, "Hue", resp.POIs[0].City)
	})

	t.Run("empty activities yield empty POI list", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/extract", ExtractRequest{}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ExtractResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.POIs)
		assert.Zero(t, resp.Count)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", bytes.NewBufferString("{not json"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTripCRUD(t *testing.T) {
	server := setupTestServer(t, nil)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/trips", trips.Trip{
		Title:       "Hue Weekend",
		Destination: "Hue, Vietnam",
		City:        "Hue",
		Country:     "Vietnam",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created trips.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/trips/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/trips", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list TripListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	created.Title = "Hue Long Weekend"
	rec = doJSON(t, server, http.MethodPut, "/api/v1/trips/"+created.ID, created, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated trips.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Hue Long Weekend", updated.Title)

	rec = doJSON(t, server, http.MethodDelete, "/api/v1/trips/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/trips/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTripValidation(t *testing.T) {
	server := setupTestServer(t, nil)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/trips", trips.Trip{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodPut, "/api/v1/trips/missing", trips.Trip{Title: "x"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, server, http.MethodDelete, "/api/v1/trips/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleEnrichAndSearch(t *testing.T) {
	server := setupTestServer(t, nil)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/trips", trips.Trip{
		Title:       "Central Vietnam",
		Destination: "Vietnam",
		City:        "Hue",
		Country:     "Vietnam",
		Days: []trips.ItineraryDay{
			{Day: 1, Activities: []extraction.Activity{
				{Title: "Visit Thien Mu Pagoda"},
			}},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created trips.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, server, http.MethodPost, "/api/v1/trips/"+created.ID+"/enrich", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result enrichment.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, created.ID, result.TripID)
	require.NotEmpty(t, result.POIs)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/search?q=pagodas+in+Hue", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var search SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	require.NotEmpty(t, search.Results)
	assert.Equal(t, created.ID, search.Results[0].ID)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/trips/missing/enrich", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/search", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/search?q=x&k=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStatsAndConfig(t *testing.T) {
	server := setupTestServer(t, nil)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/service/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats extraction.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Positive(t, stats.Patterns)
	assert.InDelta(t, 0.5, stats.ConfidenceThreshold, 1e-9)

	rec = doJSON(t, server, http.MethodPut, "/api/v1/service/config", map[string]any{
		"confidence_threshold": 0.8,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.InDelta(t, 0.8, stats.ConfidenceThreshold, 1e-9)

	rec = doJSON(t, server, http.MethodPut, "/api/v1/service/config", map[string]any{
		"unknown_key": 1,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodPut, "/api/v1/service/config", map[string]any{
		"confidence_threshold": 1.5,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodPut, "/api/v1/service/config", map[string]any{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionsAndAuth(t *testing.T) {
	server := setupTestServer(t, &Config{AuthEnabled: true})

	// Protected routes reject anonymous requests.
	rec := doJSON(t, server, http.MethodGet, "/api/v1/trips", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open.
	rec = doJSON(t, server, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/sessions", SessionRequest{UserID: "u-1"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var session auth.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)

	authed := map[string]string{echo.HeaderAuthorization: "Bearer " + session.Token}
	rec = doJSON(t, server, http.MethodGet, "/api/v1/trips", nil, authed)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Rotation revokes the old token.
	rec = doJSON(t, server, http.MethodPost, "/api/v1/sessions/rotate", nil, authed)
	require.Equal(t, http.StatusOK, rec.Code)
	var rotated auth.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	assert.NotEqual(t, session.Token, rotated.Token)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/trips", nil, authed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/trips", nil, map[string]string{
		echo.HeaderAuthorization: "Bearer " + rotated.Token,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/sessions", SessionRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	server := setupTestServer(t, &Config{
		RateLimit: RateLimitConfig{Enabled: true, RPS: 1, Burst: 2},
	})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/trips", nil, nil)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Contains(t, codes, http.StatusTooManyRequests)

	// Metrics and health bypass the limiter.
	rec := doJSON(t, server, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, nil)

	doJSON(t, server, http.MethodGet, "/health", nil, nil)

	rec := doJSON(t, server, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tripd_http_requests_total")
}
