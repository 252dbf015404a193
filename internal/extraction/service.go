package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrUnknownConfigKey is returned when UpdateConfig receives a key
	// the engine does not recognize.
	ErrUnknownConfigKey = errors.New("unknown configuration key")

	// ErrInvalidConfigValue is returned when a recognized key carries a
	// value of the wrong type or outside its valid range.
	ErrInvalidConfigValue = errors.New("invalid configuration value")
)

// Service is the POI extraction engine. The only state shared across
// calls is the configuration record, guarded for concurrent reads and
// exclusive writes; each call's working set is local.
type Service struct {
	mu        sync.RWMutex
	threshold float64

	lib     *Library
	matcher *Matcher
	scorer  *Scorer
	logger  *zap.Logger
}

// NewService creates an extraction service with the given configuration.
// A zero-value config falls back to defaults; a nil logger is replaced
// with a no-op logger.
func NewService(cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold > 1 {
		cfg.ConfidenceThreshold = DefaultConfig().ConfidenceThreshold
	}

	lib := NewLibrary(nil)
	return &Service{
		threshold: cfg.ConfidenceThreshold,
		lib:       lib,
		matcher:   NewMatcher(lib),
		scorer:    NewScorer(lib),
		logger:    logger,
	}
}

// ExtractPOIs runs the full pipeline over one itinerary: match every
// activity in order, score every candidate, drop candidates below the
// current threshold, and deduplicate the surviving set.
//
// The call is total: an empty activity list, malformed entries, or an
// empty trip context produce a (possibly empty) valid result, never an
// error. The ctx parameter keeps the signature uniform with sibling
// operations that do block; the pipeline itself is pure CPU work.
func (s *Service) ExtractPOIs(ctx context.Context, activities []Activity, trip TripContext) []POI {
	_ = ctx

	threshold := s.Threshold()
	city, country := resolveLocation(trip)

	var candidates []Candidate
	for i, act := range activities {
		for _, c := range s.matcher.Match(act, i) {
			c.City = city
			c.Country = country
			c.Confidence = s.scorer.Score(c)
			if c.Confidence < threshold {
				continue
			}
			candidates = append(candidates, c)
		}
	}

	pois := Dedupe(candidates)

	s.logger.Debug("extracted POIs",
		zap.Int("activities", len(activities)),
		zap.Int("candidates", len(candidates)),
		zap.Int("pois", len(pois)),
		zap.Float64("threshold", threshold),
	)

	return pois
}

// resolveLocation derives the city/country pair for this call. A city
// missing from the context falls back to the destination field; fields
// that cannot be derived stay empty here and are filled with the
// placeholder on output.
func resolveLocation(trip TripContext) (city, country string) {
	city = trip.City
	if city == "" {
		city = trip.Destination
	}
	return city, trip.Country
}

// Threshold returns the current confidence threshold.
func (s *Service) Threshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// UpdateConfig applies a partial configuration update. Changes take
// effect atomically: every call issued after UpdateConfig returns
// observes the new values. Unknown keys are rejected with a validation
// error naming the key.
func (s *Service) UpdateConfig(changes map[string]any) error {
	updated := make(map[string]float64, len(changes))

	for key, raw := range changes {
		switch key {
		case "confidence_threshold", "confidenceThreshold":
			v, ok := toFloat(raw)
			if !ok {
				return fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidConfigValue, key, raw)
			}
			if v < 0 || v > 1 {
				return fmt.Errorf("%w: %s must be in [0,1], got %v", ErrInvalidConfigValue, key, v)
			}
			updated["confidence_threshold"] = v
		default:
			return fmt.Errorf("%w: %q", ErrUnknownConfigKey, key)
		}
	}

	s.mu.Lock()
	if v, ok := updated["confidence_threshold"]; ok {
		s.threshold = v
	}
	s.mu.Unlock()

	for key, v := range updated {
		s.logger.Info("engine config updated", zap.String("key", key), zap.Float64("value", v))
	}
	return nil
}

// Stats returns a read-only snapshot of the pattern library sizes and
// the current threshold.
func (s *Service) Stats() Stats {
	return Stats{
		Patterns:            s.lib.PatternCount(),
		CategoryKeywords:    s.lib.KeywordCount(),
		ConfidenceThreshold: s.Threshold(),
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
