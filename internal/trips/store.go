// Package trips holds the trip model and itinerary persistence.
package trips

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tripweave/tripd/internal/extraction"
)

var (
	// ErrNotFound is returned when a trip does not exist.
	ErrNotFound = errors.New("trip not found")

	// ErrInvalidTrip is returned when a trip fails validation.
	ErrInvalidTrip = errors.New("invalid trip")
)

// ItineraryDay is one day of a trip's itinerary.
type ItineraryDay struct {
	Day        int                   `json:"day"`
	Activities []extraction.Activity `json:"activities,omitempty"`
}

// Trip is a persisted trip with its itinerary.
type Trip struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id,omitempty"`
	Title       string         `json:"title"`
	Destination string         `json:"destination,omitempty"`
	City        string         `json:"city,omitempty"`
	Country     string         `json:"country,omitempty"`
	Days        []ItineraryDay `json:"days,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Context returns the trip's extraction context.
func (t *Trip) Context() extraction.TripContext {
	return extraction.TripContext{
		Destination: t.Destination,
		City:        t.City,
		Country:     t.Country,
	}
}

// Activities flattens the itinerary into a single ordered activity list.
func (t *Trip) Activities() []extraction.Activity {
	var acts []extraction.Activity
	for _, day := range t.Days {
		acts = append(acts, day.Activities...)
	}
	return acts
}

// Store is the persistence interface for trips.
type Store interface {
	Create(ctx context.Context, trip Trip) (Trip, error)
	Get(ctx context.Context, id string) (Trip, error)
	Update(ctx context.Context, trip Trip) (Trip, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Trip, error)
}

// MemoryStore is an in-memory Store, safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	trips map[string]Trip
}

// NewMemoryStore creates an empty in-memory trip store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trips: make(map[string]Trip)}
}

// Create stores a new trip. An empty ID is assigned a fresh UUID.
func (s *MemoryStore) Create(ctx context.Context, trip Trip) (Trip, error) {
	if trip.Title == "" {
		return Trip{}, fmt.Errorf("%w: title is required", ErrInvalidTrip)
	}
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.trips[trip.ID]; exists {
		return Trip{}, fmt.Errorf("%w: id %s already exists", ErrInvalidTrip, trip.ID)
	}
	s.trips[trip.ID] = trip
	return trip, nil
}

// Get returns the trip with the given id.
func (s *MemoryStore) Get(ctx context.Context, id string) (Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trip, ok := s.trips[id]
	if !ok {
		return Trip{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return trip, nil
}

// Update replaces an existing trip, preserving its creation time.
func (s *MemoryStore) Update(ctx context.Context, trip Trip) (Trip, error) {
	if trip.Title == "" {
		return Trip{}, fmt.Errorf("%w: title is required", ErrInvalidTrip)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.trips[trip.ID]
	if !ok {
		return Trip{}, fmt.Errorf("%w: %s", ErrNotFound, trip.ID)
	}

	trip.CreatedAt = existing.CreatedAt
	trip.UpdatedAt = time.Now().UTC()
	s.trips[trip.ID] = trip
	return trip, nil
}

// Delete removes the trip with the given id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.trips, id)
	return nil
}

// List returns all trips ordered by creation time, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Trip, 0, len(s.trips))
	for _, t := range s.trips {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
