package extraction

import (
	"strings"
)

// Matcher scans activity text against the pattern library and produces
// raw POI candidates. It holds no per-call state and is safe for
// concurrent use.
type Matcher struct {
	lib *Library

	// leadingStrip holds folded trigger and filler words that must not
	// start a mention ("Visit the Imperial City" -> "Imperial City").
	leadingStrip map[string]struct{}
}

// NewMatcher creates a matcher over the given compiled library.
func NewMatcher(lib *Library) *Matcher {
	strip := make(map[string]struct{})
	for _, set := range lib.patterns {
		for _, trigger := range set.Triggers {
			for _, word := range strings.Fields(Fold(trigger)) {
				strip[word] = struct{}{}
			}
		}
	}
	return &Matcher{lib: lib, leadingStrip: strip}
}

// Match extracts zero or more candidates from one activity. Missing or
// empty title/description fields contribute no candidates and never
// fail. The activity's own category field is used only as a
// disambiguating hint when two content-derived categories tie.
func (m *Matcher) Match(act Activity, index int) []Candidate {
	var out []Candidate
	if title := strings.TrimSpace(act.Title); title != "" {
		m.matchText(title, act.Category, index, &out)
	}
	if desc := strings.TrimSpace(act.Description); desc != "" {
		m.matchText(desc, act.Category, index, &out)
	}
	return out
}

func (m *Matcher) matchText(text, hint string, index int, out *[]Candidate) {
	generic := isGeneric(Fold(text))

	// Trigger-phrase matches: "visit X", "lunch at X", "hike X".
	for _, cat := range Categories() {
		re, ok := m.lib.triggers[cat]
		if !ok {
			continue
		}
		for _, sub := range re.FindAllStringSubmatch(text, -1) {
			span := m.cleanSpan(sub[1])
			if span == "" {
				continue
			}
			m.add(out, Candidate{
				RawMention:    span,
				Normalized:    NormalizeName(span),
				Category:      cat,
				ActivityIndex: index,
				Strength:      StrengthExplicit,
			})
		}
	}

	// Keyword-in-span matches and weak proper-noun fallbacks.
	for _, loc := range spanRe.FindAllStringIndex(text, -1) {
		span := m.cleanSpan(text[loc[0]:loc[1]])
		if span == "" {
			continue
		}

		cats := m.spanCategories(text, loc, span)
		if len(cats) > 0 {
			m.add(out, Candidate{
				RawMention:    span,
				Normalized:    NormalizeName(span),
				Category:      resolveCategory(cats, hint),
				ActivityIndex: index,
				Strength:      StrengthContextual,
			})
			continue
		}

		// No category fired. A multi-word proper-noun span in
		// non-generic text still surfaces as a low-confidence
		// fallback; generic filler produces nothing.
		if generic {
			continue
		}
		if norm := NormalizeName(span); len(strings.Fields(norm)) >= 2 {
			m.add(out, Candidate{
				RawMention:    span,
				Normalized:    norm,
				Category:      CategoryOther,
				ActivityIndex: index,
				Strength:      StrengthWeak,
			})
		}
	}
}

// cleanSpan trims surrounding punctuation and strips leading trigger
// and filler words from a raw span. Returns "" when nothing specific
// remains.
func (m *Matcher) cleanSpan(span string) string {
	words := strings.Fields(strings.Trim(span, " .,;:'’-"))
	for len(words) > 0 {
		first := Fold(strings.Trim(words[0], ".,;:'’-"))
		if _, strip := m.leadingStrip[first]; strip || isStopword(first) {
			words = words[1:]
			continue
		}
		break
	}
	if len(words) == 0 {
		return ""
	}
	return strings.Trim(strings.Join(words, " "), " .,;:-")
}

// spanCategories returns every category whose keywords classify the
// span, either inside it ("Angkor Wat Temple Complex"), directly after
// it ("Quan An Ngon restaurant"), or directly before it.
func (m *Matcher) spanCategories(text string, loc []int, span string) []Category {
	padded := " " + NormalizeName(span) + " "

	afterWords := strings.Fields(text[loc[1]:])
	if len(afterWords) > 3 {
		afterWords = afterWords[:3]
	}
	after := NormalizeName(strings.Join(afterWords, " "))

	var prev string
	if beforeWords := strings.Fields(NormalizeName(text[:loc[0]])); len(beforeWords) > 0 {
		prev = beforeWords[len(beforeWords)-1]
	}

	var cats []Category
	for _, cat := range Categories() {
		for _, kw := range m.lib.keywords[cat] {
			if matchesKeyword(padded, after, prev, kw) {
				cats = append(cats, cat)
				break
			}
		}
	}
	return cats
}

// matchesKeyword checks a keyword (and its plural) against the span
// interior, the words following it, and the word preceding it.
func matchesKeyword(padded, after, prev, kw string) bool {
	if strings.Contains(padded, " "+kw+" ") || strings.Contains(padded, " "+kw+"s ") {
		return true
	}
	if strings.HasPrefix(after+" ", kw+" ") || strings.HasPrefix(after+" ", kw+"s ") {
		return true
	}
	return prev != "" && (prev == kw || prev == kw+"s")
}

// resolveCategory picks one category from the content-derived matches.
// Content classification wins outright; the caller-supplied hint only
// breaks ties between multiple content-derived categories.
func resolveCategory(cats []Category, hint string) Category {
	if len(cats) == 1 {
		return cats[0]
	}
	if h := parseHint(hint); h != "" {
		for _, c := range cats {
			if c == h {
				return c
			}
		}
	}
	// Categories() ordering keeps this deterministic.
	return cats[0]
}

// parseHint maps a caller-supplied activity category to the closed
// enum. Unrecognized hints are ignored.
func parseHint(hint string) Category {
	switch strings.ReplaceAll(Fold(strings.TrimSpace(hint)), "_", " ") {
	case "cultural", "culture", "sightseeing", "history", "historical":
		return CategoryCultural
	case "food", "food drink", "dining", "culinary":
		return CategoryFood
	case "nature", "outdoor", "outdoors", "adventure":
		return CategoryNature
	case "shopping":
		return CategoryShopping
	case "accommodation", "lodging", "hotel":
		return CategoryAccommodation
	case "leisure", "relaxation", "entertainment":
		return CategoryLeisure
	}
	return ""
}

func strengthRank(s MatchStrength) int {
	switch s {
	case StrengthExplicit:
		return 3
	case StrengthContextual:
		return 2
	default:
		return 1
	}
}

// add appends a candidate, merging it with an existing same-activity
// candidate for the same entity. The stronger anchor wins; a
// keyword-derived category refines a trigger-derived one for the same
// span, and the longer mention is kept as the raw form.
func (m *Matcher) add(out *[]Candidate, c Candidate) {
	for i := range *out {
		e := &(*out)[i]
		if e.ActivityIndex != c.ActivityIndex || !NamesEqual(e.Normalized, c.Normalized) {
			continue
		}
		if strengthRank(c.Strength) > strengthRank(e.Strength) {
			e.Strength = c.Strength
			e.Category = c.Category
		} else if c.Strength == StrengthContextual && e.Strength == StrengthExplicit &&
			c.Category != e.Category {
			e.Category = c.Category
		}
		if len(c.RawMention) > len(e.RawMention) {
			e.RawMention = c.RawMention
			e.Normalized = c.Normalized
		}
		return
	}
	*out = append(*out, c)
}
