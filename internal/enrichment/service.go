// Package enrichment extracts points of interest from stored trips and
// indexes them for semantic search.
package enrichment

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tripweave/tripd/internal/extraction"
	"github.com/tripweave/tripd/internal/trips"
	"github.com/tripweave/tripd/internal/vectorstore"
)

// Result reports the outcome of enriching a single trip.
type Result struct {
	TripID string           `json:"trip_id"`
	POIs   []extraction.POI `json:"pois"`
}

// Enricher runs the extraction engine over a trip's itinerary and
// indexes the resulting document in the vector store.
type Enricher struct {
	store     trips.Store
	extractor *extraction.Service
	vectors   vectorstore.Store
	logger    *zap.Logger
}

// NewEnricher creates an Enricher. A nil logger falls back to a no-op
// logger.
func NewEnricher(store trips.Store, extractor *extraction.Service, vectors vectorstore.Store, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		store:     store,
		extractor: extractor,
		vectors:   vectors,
		logger:    logger,
	}
}

// EnrichTrip extracts POIs from the trip's activities and upserts a
// searchable document for the trip. Trips without recognizable POIs
// are still indexed by title and destination.
func (e *Enricher) EnrichTrip(ctx context.Context, tripID string) (*Result, error) {
	trip, err := e.store.Get(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("loading trip: %w", err)
	}

	pois := e.extractor.ExtractPOIs(ctx, trip.Activities(), trip.Context())

	doc := vectorstore.Document{
		ID:       trip.ID,
		Content:  buildContent(trip, pois),
		Metadata: buildMetadata(trip, pois),
	}
	if _, err := e.vectors.AddDocuments(ctx, []vectorstore.Document{doc}); err != nil {
		return nil, fmt.Errorf("indexing trip: %w", err)
	}

	e.logger.Info("trip enriched",
		zap.String("trip_id", trip.ID),
		zap.Int("pois", len(pois)),
	)

	return &Result{TripID: trip.ID, POIs: pois}, nil
}

// Search performs a semantic search over enriched trips.
func (e *Enricher) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	return e.vectors.Search(ctx, query, k)
}

func buildContent(trip trips.Trip, pois []extraction.POI) string {
	parts := make([]string, 0, len(pois)+2)
	if trip.Title != "" {
		parts = append(parts, trip.Title)
	}
	if trip.Destination != "" {
		parts = append(parts, trip.Destination)
	}
	for _, p := range pois {
		parts = append(parts, p.Name)
	}
	return strings.Join(parts, ". ")
}

func buildMetadata(trip trips.Trip, pois []extraction.POI) map[string]string {
	names := make([]string, 0, len(pois))
	catSet := make(map[string]struct{})
	for _, p := range pois {
		names = append(names, p.Name)
		catSet[string(p.Category)] = struct{}{}
	}
	cats := make([]string, 0, len(catSet))
	for c := range catSet {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	return map[string]string{
		"trip_id":     trip.ID,
		"user_id":     trip.UserID,
		"destination": trip.Destination,
		"poi_names":   strings.Join(names, "; "),
		"categories":  strings.Join(cats, ","),
	}
}
