package extraction

import (
	"regexp"
	"strings"
)

// PatternSet holds the detection vocabulary for one category.
type PatternSet struct {
	// Triggers are verb/preposition phrases that anchor an explicit
	// mention when immediately followed by a capitalized span.
	Triggers []string

	// Keywords classify a capitalized span when they occur inside it
	// or directly after it, independent of any trigger.
	Keywords []string
}

// DefaultPatterns returns the built-in category pattern table.
func DefaultPatterns() map[Category]PatternSet {
	return map[Category]PatternSet{
		CategoryCultural: {
			Triggers: []string{
				"visit", "visiting", "tour", "touring", "explore", "exploring",
				"see", "discover", "admire",
			},
			Keywords: []string{
				"museum", "temple", "pagoda", "cathedral", "church", "basilica",
				"citadel", "palace", "monument", "shrine", "gallery", "ruins",
				"fortress", "fort", "mausoleum", "opera house", "heritage site",
			},
		},
		CategoryFood: {
			Triggers: []string{
				"lunch at", "dinner at", "breakfast at", "eat at", "dine at",
				"brunch at", "coffee at", "drinks at", "taste", "sample",
			},
			Keywords: []string{
				"restaurant", "cafe", "eatery", "bistro", "bakery", "brewery",
				"food court", "street food", "noodle house", "quan", "pho",
			},
		},
		CategoryNature: {
			Triggers: []string{
				"hike", "hiking", "trek", "trekking", "climb", "boat trip in",
				"boat trip on", "cruise on", "kayak in", "swim at", "snorkel at",
			},
			Keywords: []string{
				"mountain", "cave", "waterfall", "beach", "lake", "river", "bay",
				"island", "falls", "gorge", "reef", "jungle", "national park",
				"hot springs", "cliffs", "dunes", "delta",
			},
		},
		CategoryShopping: {
			Triggers: []string{
				"shop at", "shopping at", "browse", "bargain at", "haggle at",
			},
			Keywords: []string{
				"market", "bazaar", "mall", "boutique", "night market",
				"shopping center", "shopping centre", "souvenir shop",
			},
		},
		CategoryAccommodation: {
			Triggers: []string{
				"stay at", "staying at", "check in to", "check into",
				"overnight at", "sleep at",
			},
			Keywords: []string{
				"hotel", "hostel", "resort", "homestay", "lodge", "villa",
				"guesthouse", "guest house", "bungalow", "ryokan",
			},
		},
		CategoryLeisure: {
			Triggers: []string{
				"relax at", "unwind at", "stroll through", "stroll along",
				"walk through", "wander through", "picnic at",
			},
			Keywords: []string{
				"park", "garden", "zoo", "aquarium", "theater", "theatre",
				"spa", "promenade", "boardwalk", "amusement park", "water park",
			},
		},
	}
}

// locationTerms are generic place words whose presence near a mention
// raises confidence that the span names a real location.
var locationTerms = []string{
	"city", "town", "quarter", "district", "tower", "bridge", "square",
	"street", "harbor", "harbour", "port", "hill", "valley", "village",
	"complex", "center", "centre", "station", "pier",
}

// genericPhrases describe non-specific itinerary filler that must not
// produce candidates.
var genericPhrases = []string{
	"rest and relax", "free time", "general exploration", "at leisure",
	"leisure time", "day at leisure", "own arrangements", "free day",
	"relax and unwind", "explore on your own", "optional activities",
	"transfer to", "check out", "departure", "arrival",
}

// stopwords are capitalized words that start sentences or label
// itinerary slots; a span consisting only of these is never a POI.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "day": {}, "morning": {}, "afternoon": {},
	"evening": {}, "night": {}, "today": {}, "tomorrow": {}, "breakfast": {},
	"lunch": {}, "dinner": {}, "visit": {}, "tour": {}, "explore": {},
	"enjoy": {}, "take": {}, "then": {}, "after": {}, "before": {},
	"optional": {}, "activity": {}, "trip": {}, "return": {}, "free": {},
}

// capWord matches a single capitalized word, including combining marks
// so diacritic-bearing scripts (Vietnamese, French) are covered.
const capWord = `\p{Lu}[\p{L}\p{M}'’.-]*`

// connector are lowercase words allowed inside a proper-noun span.
const connector = `(?:of|the|de|du|des|da|di|del|della|la|le|van|von|and|en)`

// spanPattern matches a proper-noun span: a capitalized word followed
// by further capitalized words, optional connectors, and optional
// parenthesized aliases like "(Dai Noi)".
const spanPattern = capWord + `(?:\s+(?:` + connector + `\s+)?` + capWord + `|\s+\([^)\n]{1,60}\))*`

// spanRe extracts bare proper-noun spans for keyword and weak matching.
var spanRe = regexp.MustCompile(spanPattern)

// Library is the compiled, immutable pattern library. Compilation
// happens once at construction so per-activity matching cost stays
// constant against the fixed-size tables.
type Library struct {
	patterns map[Category]PatternSet
	triggers map[Category]*regexp.Regexp
	keywords map[Category][]string

	// anchor indexes every location term and keyword word for the
	// scorer's co-occurrence bonus.
	anchor map[string]struct{}
}

// NewLibrary compiles the given pattern table. A nil or empty table
// falls back to DefaultPatterns.
func NewLibrary(patterns map[Category]PatternSet) *Library {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}

	lib := &Library{
		patterns: patterns,
		triggers: make(map[Category]*regexp.Regexp, len(patterns)),
		keywords: make(map[Category][]string, len(patterns)),
		anchor:   make(map[string]struct{}),
	}

	for cat, set := range patterns {
		if len(set.Triggers) > 0 {
			lib.triggers[cat] = compileTriggers(set.Triggers)
		}
		folded := make([]string, 0, len(set.Keywords))
		for _, kw := range set.Keywords {
			f := Fold(kw)
			folded = append(folded, f)
			for _, w := range strings.Fields(f) {
				lib.anchor[w] = struct{}{}
			}
		}
		lib.keywords[cat] = folded
	}

	for _, term := range locationTerms {
		lib.anchor[term] = struct{}{}
	}

	return lib
}

// compileTriggers builds a single alternation regex for a category's
// trigger phrases. The trigger part is case-insensitive while the
// captured span stays case-sensitive to preserve proper-noun shape.
func compileTriggers(triggers []string) *regexp.Regexp {
	alts := make([]string, 0, len(triggers))
	for _, t := range triggers {
		alts = append(alts, regexp.QuoteMeta(t))
	}
	expr := `\b(?i:` + strings.Join(alts, "|") + `)\s+(?:(?i:the|a|an)\s+)?(` + spanPattern + `)`
	return regexp.MustCompile(expr)
}

// PatternCount returns the total number of trigger phrases in the library.
func (l *Library) PatternCount() int {
	var n int
	for _, set := range l.patterns {
		n += len(set.Triggers)
	}
	return n
}

// KeywordCount returns the total number of category keywords in the library.
func (l *Library) KeywordCount() int {
	var n int
	for _, kws := range l.keywords {
		n += len(kws)
	}
	return n
}

// isAnchorTerm reports whether the folded word is a location term or a
// category keyword word. Used by the scorer's co-occurrence bonus.
func (l *Library) isAnchorTerm(word string) bool {
	if _, ok := l.anchor[word]; ok {
		return true
	}
	// Plural keyword forms anchor too ("mountains", "gardens").
	if len(word) > 1 && strings.HasSuffix(word, "s") {
		_, ok := l.anchor[word[:len(word)-1]]
		return ok
	}
	return false
}

// isGeneric reports whether the folded text is non-specific itinerary
// filler that should produce no candidates.
func isGeneric(folded string) bool {
	for _, phrase := range genericPhrases {
		if strings.Contains(folded, phrase) {
			return true
		}
	}
	return false
}

// isStopword reports whether the folded word is itinerary boilerplate.
func isStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
