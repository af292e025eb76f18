package narrative

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Find returns the narratives matching query, best match first.
// An exact id match short-circuits the fuzzy search.
func Find(summaries []Summary, query string) []Summary {
	query = strings.TrimSpace(query)
	if query == "" {
		return summaries
	}

	if exact, ok := lo.Find(summaries, func(s Summary) bool {
		return strings.EqualFold(s.ID, query)
	}); ok {
		return []Summary{exact}
	}

	type scored struct {
		summary  Summary
		distance int
	}

	var matches []scored
	for _, s := range summaries {
		best := -1
		for _, target := range []string{s.ID, s.Title} {
			if target == "" {
				continue
			}
			if d := fuzzy.RankMatchNormalizedFold(query, target); d >= 0 && (best < 0 || d < best) {
				best = d
			}
		}
		if best >= 0 {
			matches = append(matches, scored{summary: s, distance: best})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	return lo.Map(matches, func(m scored, _ int) Summary {
		return m.summary
	})
}
