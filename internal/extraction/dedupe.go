package extraction

import (
	"sort"
)

// cluster groups candidates that refer to the same real-world entity
// within one extraction call.
type cluster struct {
	members []Candidate
	city    string
	country string
}

// Dedupe merges candidates referring to the same entity and emits one
// POI per group. Candidates join a group when their normalized names
// are equal (identical or whole-word containment) and their resolved
// city/country context matches; same-named entities in different
// cities stay separate.
//
// Per group: name is the longest surviving raw mention (ties broken by
// earliest occurrence), confidence is the group maximum, category is
// the group majority with ties broken by the highest-confidence
// member. Results are ordered by descending confidence, then by
// first-seen activity index; the ordering is deterministic for
// identical input.
func Dedupe(candidates []Candidate) []POI {
	var clusters []*cluster

next:
	for _, c := range candidates {
		for _, cl := range clusters {
			if cl.city != c.City || cl.country != c.Country {
				continue
			}
			for _, m := range cl.members {
				if NamesEqual(m.Normalized, c.Normalized) {
					cl.members = append(cl.members, c)
					continue next
				}
			}
		}
		clusters = append(clusters, &cluster{
			members: []Candidate{c},
			city:    c.City,
			country: c.Country,
		})
	}

	type entry struct {
		poi   POI
		first int
	}
	entries := make([]entry, 0, len(clusters))
	for _, cl := range clusters {
		entries = append(entries, entry{poi: cl.merge(), first: cl.firstActivity()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].poi.Confidence != entries[j].poi.Confidence {
			return entries[i].poi.Confidence > entries[j].poi.Confidence
		}
		return entries[i].first < entries[j].first
	})

	pois := make([]POI, 0, len(entries))
	for _, e := range entries {
		pois = append(pois, e.poi)
	}
	return pois
}

// merge collapses a cluster into a single POI.
func (cl *cluster) merge() POI {
	best := cl.members[0]
	maxConf := best.Confidence

	for _, m := range cl.members[1:] {
		// Strictly longer wins; the earliest occurrence keeps ties.
		if len(m.RawMention) > len(best.RawMention) {
			best = m
		}
		if m.Confidence > maxConf {
			maxConf = m.Confidence
		}
	}

	return POI{
		Name:       best.RawMention,
		Category:   cl.majorityCategory(),
		Confidence: maxConf,
		City:       orPlaceholder(cl.city),
		Country:    orPlaceholder(cl.country),
	}
}

// majorityCategory returns the most frequent category among members,
// breaking ties with the highest-confidence member's category.
func (cl *cluster) majorityCategory() Category {
	counts := make(map[Category]int, len(cl.members))
	for _, m := range cl.members {
		counts[m.Category]++
	}

	var best Category
	var bestCount int
	for _, cat := range Categories() {
		if counts[cat] > bestCount {
			best = cat
			bestCount = counts[cat]
		}
	}

	tied := false
	for _, cat := range Categories() {
		if cat != best && counts[cat] == bestCount {
			tied = true
			break
		}
	}
	if tied {
		top := cl.members[0]
		for _, m := range cl.members[1:] {
			if m.Confidence > top.Confidence {
				top = m
			}
		}
		return top.Category
	}

	return best
}

// firstActivity returns the smallest source activity index in the cluster.
func (cl *cluster) firstActivity() int {
	min := cl.members[0].ActivityIndex
	for _, m := range cl.members[1:] {
		if m.ActivityIndex < min {
			min = m.ActivityIndex
		}
	}
	return min
}

func orPlaceholder(s string) string {
	if s == "" {
		return PlaceholderLocation
	}
	return s
}
