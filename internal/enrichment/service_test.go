package enrichment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/tripd/internal/extraction"
	"github.com/tripweave/tripd/internal/trips"
	"github.com/tripweave/tripd/internal/vectorstore"
)

// fakeVectorStore records added documents and serves canned search
// results.
type fakeVectorStore struct {
	docs    []vectorstore.Document
	results []vectorstore.SearchResult
	addErr  error
}

func (f *fakeVectorStore) AddDocuments(ctx context.Context, docs []vectorstore.Document) ([]string, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.docs = append(f.docs, docs...)
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (f *fakeVectorStore) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	return f.results, nil
}

func (f *fakeVectorStore) Count(ctx context.Context) (int, error) {
	return len(f.docs), nil
}

func newEnricherFixture(t *testing.T) (*Enricher, *trips.MemoryStore, *fakeVectorStore) {
	t.Helper()
	store := trips.NewMemoryStore()
	vectors := &fakeVectorStore{}
	svc := extraction.NewService(extraction.DefaultConfig(), nil)
	return NewEnricher(store, svc, vectors, nil), store, vectors
}

func TestEnrichTrip_IndexesExtractedPOIs(t *testing.T) {
	ctx := context.Background()
	enricher, store, vectors := newEnricherFixture(t)

	trip, err := store.Create(ctx, trips.Trip{
		UserID:      "u-1",
		Title:       "Central Vietnam Highlights",
		Destination: "Vietnam",
		City:        "Hue",
		Country:     "Vietnam",
		Days: []trips.ItineraryDay{
			{Day: 1, Activities: []extraction.Activity{
				{Title: "Visit the Imperial City (Dai Noi) in Hue", Category: "sightseeing"},
				{Title: "Lunch at Quan An Ngon restaurant"},
			}},
		},
	})
	require.NoError(t, err)

	result, err := enricher.EnrichTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, result.TripID)
	require.NotEmpty(t, result.POIs)

	require.Len(t, vectors.docs, 1)
	doc := vectors.docs[0]
	assert.Equal(t, trip.ID, doc.ID)
	assert.Contains(t, doc.Content, "Central Vietnam Highlights")
	assert.Contains(t, doc.Content, "Imperial City (Dai Noi)")
	assert.Equal(t, trip.ID, doc.Metadata["trip_id"])
	assert.Equal(t, "u-1", doc.Metadata["user_id"])
	assert.Contains(t, doc.Metadata["poi_names"], "Quan An Ngon")
	assert.Contains(t, strings.Split(doc.Metadata["categories"], ","), "cultural")
	assert.Contains(t, strings.Split(doc.Metadata["categories"], ","), "food")
}

func TestEnrichTrip_NoPOIsStillIndexed(t *testing.T) {
	ctx := context.Background()
	enricher, store, vectors := newEnricherFixture(t)

	trip, err := store.Create(ctx, trips.Trip{
		Title:       "Lazy Weekend",
		Destination: "Da Lat",
		Days: []trips.ItineraryDay{
			{Day: 1, Activities: []extraction.Activity{{Title: "Free time and rest"}}},
		},
	})
	require.NoError(t, err)

	result, err := enricher.EnrichTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, result.POIs)

	require.Len(t, vectors.docs, 1)
	assert.Contains(t, vectors.docs[0].Content, "Da Lat")
	assert.Empty(t, vectors.docs[0].Metadata["poi_names"])
}

func TestEnrichTrip_UnknownTrip(t *testing.T) {
	enricher, _, _ := newEnricherFixture(t)

	_, err := enricher.EnrichTrip(context.Background(), "missing")
	assert.ErrorIs(t, err, trips.ErrNotFound)
}

func TestSearch_Delegates(t *testing.T) {
	enricher, _, vectors := newEnricherFixture(t)
	vectors.results = []vectorstore.SearchResult{{ID: "trip-1", Score: 0.9}}

	results, err := enricher.Search(context.Background(), "temples in Hue", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "trip-1", results[0].ID)
}
