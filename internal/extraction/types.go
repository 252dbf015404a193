// Package extraction provides rule-based point-of-interest detection
// from free-text trip itinerary activities. It supports pattern-based
// candidate matching, multi-signal confidence scoring, and context-aware
// deduplication.
package extraction

// Category classifies a point of interest into a travel category.
type Category string

// The closed set of POI categories. CategoryOther is the fallback when
// no pattern category fires but a proper-noun-like span was detected.
const (
	CategoryCultural      Category = "cultural"
	CategoryFood          Category = "food"
	CategoryNature        Category = "nature"
	CategoryShopping      Category = "shopping"
	CategoryAccommodation Category = "accommodation"
	CategoryLeisure       Category = "leisure"
	CategoryOther         Category = "other"
)

// Categories returns all valid POI categories.
func Categories() []Category {
	return []Category{
		CategoryCultural,
		CategoryFood,
		CategoryNature,
		CategoryShopping,
		CategoryAccommodation,
		CategoryLeisure,
		CategoryOther,
	}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryCultural, CategoryFood, CategoryNature, CategoryShopping,
		CategoryAccommodation, CategoryLeisure, CategoryOther:
		return true
	}
	return false
}

// MatchStrength describes how a candidate was anchored in the text.
type MatchStrength string

const (
	// StrengthExplicit marks a trigger-phrase match ("visit X", "lunch at X").
	StrengthExplicit MatchStrength = "explicit"

	// StrengthContextual marks a keyword-in-span match ("X Temple", "X restaurant").
	StrengthContextual MatchStrength = "contextual"

	// StrengthWeak marks a bare proper-noun span with no anchor.
	StrengthWeak MatchStrength = "weak"
)

// Activity is a single itinerary entry as supplied by the caller.
// Any field may be empty; malformed entries contribute no candidates.
type Activity struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// TripContext carries the destination context of one extraction call.
// All fields are optional.
type TripContext struct {
	Destination string `json:"destination,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
}

// PlaceholderLocation is substituted for any city/country that cannot
// be derived from the trip context. Output POIs never carry empty
// location fields.
const PlaceholderLocation = "unknown"

// Candidate is an unconfirmed POI mention pending scoring and
// threshold filtering. Candidates live only for the duration of one
// extraction call.
type Candidate struct {
	RawMention    string        `json:"raw_mention"`
	Normalized    string        `json:"normalized"`
	Category      Category      `json:"category"`
	ActivityIndex int           `json:"activity_index"`
	Strength      MatchStrength `json:"strength"`
	Confidence    float64       `json:"confidence"`
	City          string        `json:"city"`
	Country       string        `json:"country"`
}

// POI is a deduplicated, confirmed point of interest.
type POI struct {
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
	City       string   `json:"city"`
	Country    string   `json:"country"`
}

// Stats is a read-only snapshot of the engine configuration, used for
// introspection and operational tuning.
type Stats struct {
	Patterns            int     `json:"patterns"`
	CategoryKeywords    int     `json:"category_keywords"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// Config holds the mutable engine configuration.
type Config struct {
	// ConfidenceThreshold is the minimum score a candidate must reach
	// to be emitted as a POI. Must be in [0,1].
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.5,
	}
}
