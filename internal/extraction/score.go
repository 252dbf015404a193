package extraction

import (
	"strings"
	"unicode"
)

// Base confidence by match strength. Additive adjustments below are
// clamped so the final score stays in [0,1].
const (
	baseExplicit   = 0.75
	baseContextual = 0.55
	baseWeak       = 0.30

	bonusProperNoun  = 0.10
	bonusLocation    = 0.08
	penaltyShortSpan = 0.20
	penaltyNoAnchor  = 0.05
)

// Scorer assigns confidence scores to candidates. Scoring is a pure
// function of the candidate's signals against the fixed library.
type Scorer struct {
	lib *Library
}

// NewScorer creates a scorer over the given library.
func NewScorer(lib *Library) *Scorer {
	return &Scorer{lib: lib}
}

// Score computes the confidence for one candidate.
func (s *Scorer) Score(c Candidate) float64 {
	var score float64
	switch c.Strength {
	case StrengthExplicit:
		score = baseExplicit
	case StrengthContextual:
		score = baseContextual
	default:
		// No trigger or keyword anchored this mention.
		score = baseWeak - penaltyNoAnchor
	}

	if capitalizedWords(c.RawMention) >= 2 {
		score += bonusProperNoun
	}

	words := strings.Fields(NormalizeName(c.RawMention))
	for _, w := range words {
		if s.lib.isAnchorTerm(w) {
			score += bonusLocation
			break
		}
	}

	if len(words) == 1 && (isStopword(words[0]) || len(words[0]) <= 4) {
		score -= penaltyShortSpan
	}

	return clamp01(score)
}

// capitalizedWords counts words with an upper-case initial.
func capitalizedWords(s string) int {
	var n int
	for _, w := range strings.Fields(s) {
		for _, r := range w {
			if unicode.IsUpper(r) {
				n++
			}
			break
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
