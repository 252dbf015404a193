package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe_MergesContainedMentions(t *testing.T) {
	candidates := []Candidate{
		{RawMention: "Eiffel Tower", Normalized: "eiffel tower", Category: CategoryCultural, ActivityIndex: 0, Confidence: 0.85, City: "Paris", Country: "France"},
		{RawMention: "Return to Eiffel Tower", Normalized: "return to eiffel tower", Category: CategoryCultural, ActivityIndex: 1, Confidence: 0.55, City: "Paris", Country: "France"},
		{RawMention: "Eiffel Tower photos", Normalized: "eiffel tower photos", Category: CategoryLeisure, ActivityIndex: 2, Confidence: 0.60, City: "Paris", Country: "France"},
	}

	pois := Dedupe(candidates)

	require.Len(t, pois, 1)
	assert.Equal(t, "Return to Eiffel Tower", pois[0].Name) // longest surviving mention
	assert.Equal(t, CategoryCultural, pois[0].Category)     // majority category
	assert.Equal(t, 0.85, pois[0].Confidence)               // group maximum
	assert.Equal(t, "Paris", pois[0].City)
	assert.Equal(t, "France", pois[0].Country)
}

func TestDedupe_DiscriminatingSuffixStaysSeparate(t *testing.T) {
	candidates := []Candidate{
		{RawMention: "Notre Dame Cathedral", Normalized: "notre dame cathedral", Category: CategoryCultural, Confidence: 0.8, City: "Paris", Country: "France"},
		{RawMention: "Notre Dame Basilica", Normalized: "notre dame basilica", Category: CategoryCultural, Confidence: 0.8, City: "Paris", Country: "France"},
	}

	pois := Dedupe(candidates)
	assert.Len(t, pois, 2)
}

func TestDedupe_DifferentContextNotMerged(t *testing.T) {
	candidates := []Candidate{
		{RawMention: "Notre Dame", Normalized: "notre dame", Category: CategoryCultural, ActivityIndex: 0, Confidence: 0.8, City: "Paris", Country: "France"},
		{RawMention: "Notre Dame", Normalized: "notre dame", Category: CategoryCultural, ActivityIndex: 1, Confidence: 0.8, City: "Ho Chi Minh City", Country: "Vietnam"},
	}

	pois := Dedupe(candidates)

	require.Len(t, pois, 2)
	assert.NotEqual(t, pois[0].City, pois[1].City)
}

func TestDedupe_CategoryTieBrokenByConfidence(t *testing.T) {
	candidates := []Candidate{
		{RawMention: "Dong Ba Market", Normalized: "dong ba market", Category: CategoryShopping, ActivityIndex: 0, Confidence: 0.9, City: "Hue", Country: "Vietnam"},
		{RawMention: "Dong Ba Market", Normalized: "dong ba market", Category: CategoryFood, ActivityIndex: 1, Confidence: 0.6, City: "Hue", Country: "Vietnam"},
	}

	pois := Dedupe(candidates)

	require.Len(t, pois, 1)
	assert.Equal(t, CategoryShopping, pois[0].Category)
}

func TestDedupe_OrderingIsDeterministic(t *testing.T) {
	candidates := []Candidate{
		{RawMention: "Low Temple", Normalized: "low temple", Category: CategoryCultural, ActivityIndex: 2, Confidence: 0.6, City: "Hue", Country: "Vietnam"},
		{RawMention: "High Palace", Normalized: "high palace", Category: CategoryCultural, ActivityIndex: 4, Confidence: 0.9, City: "Hue", Country: "Vietnam"},
		{RawMention: "Tied Garden", Normalized: "tied garden", Category: CategoryLeisure, ActivityIndex: 1, Confidence: 0.6, City: "Hue", Country: "Vietnam"},
	}

	for i := 0; i < 10; i++ {
		pois := Dedupe(candidates)
		require.Len(t, pois, 3)
		assert.Equal(t, "High Palace", pois[0].Name)
		// Equal confidence: first-seen activity index breaks the tie.
		assert.Equal(t, "Tied Garden", pois[1].Name)
		assert.Equal(t, "Low Temple", pois[2].Name)
	}
}

func TestDedupe_PlaceholderContext(t *testing.T) {
	candidates := []Candidate{
		{RawMention: "Sky Bridge", Normalized: "sky bridge", Category: CategoryOther, Confidence: 0.7},
	}

	pois := Dedupe(candidates)

	require.Len(t, pois, 1)
	assert.Equal(t, PlaceholderLocation, pois[0].City)
	assert.Equal(t, PlaceholderLocation, pois[0].Country)
}

func TestDedupe_Empty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
	assert.Empty(t, Dedupe([]Candidate{}))
}
