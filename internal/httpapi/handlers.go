package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/tripweave/tripd/internal/extraction"
	"github.com/tripweave/tripd/internal/trips"
	"github.com/tripweave/tripd/internal/vectorstore"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ExtractRequest is the request body for POST /api/v1/extract.
type ExtractRequest struct {
	Activities []extraction.Activity  `json:"activities"`
	Trip       extraction.TripContext `json:"trip"`
}

// ExtractResponse is the response body for POST /api/v1/extract.
type ExtractResponse struct {
	POIs  []extraction.POI `json:"pois"`
	Count int              `json:"count"`
}

// TripListResponse is the response body for GET /api/v1/trips.
type TripListResponse struct {
	Trips []trips.Trip `json:"trips"`
	Count int          `json:"count"`
}

// SearchResponse is the response body for GET /api/v1/search.
type SearchResponse struct {
	Results []vectorstore.SearchResult `json:"results"`
	Count   int                        `json:"count"`
}

// SessionRequest is the request body for POST /api/v1/sessions.
type SessionRequest struct {
	UserID string `json:"user_id"`
}

// RotateRequest is the request body for POST /api/v1/sessions/rotate.
type RotateRequest struct {
	Token string `json:"token"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleExtract runs POI extraction over the submitted activities.
// Empty or unrecognizable input yields an empty POI list, not an
// error.
func (s *Server) handleExtract(c echo.Context) error {
	var req ExtractRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid extract request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	pois := s.extractor.ExtractPOIs(c.Request().Context(), req.Activities, req.Trip)
	recordExtraction(len(req.Activities), len(pois))

	return c.JSON(http.StatusOK, ExtractResponse{POIs: pois, Count: len(pois)})
}

func (s *Server) handleCreateTrip(c echo.Context) error {
	var trip trips.Trip
	if err := c.Bind(&trip); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if userID, ok := c.Get("user_id").(string); ok && trip.UserID == "" {
		trip.UserID = userID
	}

	created, err := s.trips.Create(c.Request().Context(), trip)
	if err != nil {
		if errors.Is(err, trips.ErrInvalidTrip) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create trip")
	}

	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleListTrips(c echo.Context) error {
	list, err := s.trips.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list trips")
	}
	return c.JSON(http.StatusOK, TripListResponse{Trips: list, Count: len(list)})
}

func (s *Server) handleGetTrip(c echo.Context) error {
	trip, err := s.trips.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, trips.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "trip not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load trip")
	}
	return c.JSON(http.StatusOK, trip)
}

func (s *Server) handleUpdateTrip(c echo.Context) error {
	var trip trips.Trip
	if err := c.Bind(&trip); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// The path parameter wins over any ID in the body.
	trip.ID = c.Param("id")

	updated, err := s.trips.Update(c.Request().Context(), trip)
	if err != nil {
		switch {
		case errors.Is(err, trips.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "trip not found")
		case errors.Is(err, trips.ErrInvalidTrip):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update trip")
	}

	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteTrip(c echo.Context) error {
	if err := s.trips.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, trips.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "trip not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete trip")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleEnrichTrip(c echo.Context) error {
	if s.enricher == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "enrichment is not configured")
	}

	result, err := s.enricher.EnrichTrip(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, trips.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "trip not found")
		}
		s.logger.Error("enrichment failed", zap.String("trip_id", c.Param("id")), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to enrich trip")
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearch(c echo.Context) error {
	if s.enricher == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	k := 5
	if raw := c.QueryParam("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "k must be an integer between 1 and 100")
		}
		k = parsed
	}

	results, err := s.enricher.Search(c.Request().Context(), query, k)
	if err != nil {
		s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, SearchResponse{Results: results, Count: len(results)})
}

// handleStats exposes the extraction engine configuration snapshot.
func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.extractor.Stats())
}

// handleUpdateConfig applies runtime configuration updates to the
// extraction engine. Unknown keys and out-of-range values are
// rejected without applying any part of the update.
func (s *Server) handleUpdateConfig(c echo.Context) error {
	var updates map[string]any
	if err := c.Bind(&updates); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(updates) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no configuration keys provided")
	}

	if err := s.extractor.UpdateConfig(updates); err != nil {
		if errors.Is(err, extraction.ErrUnknownConfigKey) || errors.Is(err, extraction.ErrInvalidConfigValue) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update configuration")
	}

	s.logger.Info("engine configuration updated", zap.Any("updates", updates))
	return c.JSON(http.StatusOK, s.extractor.Stats())
}

func (s *Server) handleCreateSession(c echo.Context) error {
	if s.sessions == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "sessions are not configured")
	}

	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id field is required")
	}

	return c.JSON(http.StatusCreated, s.sessions.Issue(req.UserID))
}

func (s *Server) handleRotateSession(c echo.Context) error {
	if s.sessions == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "sessions are not configured")
	}

	token := bearerToken(c)
	if token == "" {
		var req RotateRequest
		if err := c.Bind(&req); err == nil {
			token = req.Token
		}
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	session, err := s.sessions.Rotate(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
	}

	return c.JSON(http.StatusOK, session)
}
