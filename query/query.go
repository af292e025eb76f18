// Package query remembers which narratives get picked and ranks later matches by it.
package query

import (
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/key"
	"github.com/storyplay/storyplay/where"
	"golang.org/x/exp/slices"
)

type pickRecord struct {
	Rank int    `json:"rank"`
	ID   string `json:"id"`
}

var (
	cacher = gache.New[map[string]*pickRecord](
		&gache.Options{
			Path:       where.Picks(),
			FileSystem: &filesystem.GacheFs{},
		},
	)
	mu sync.Mutex
)

func load() map[string]*pickRecord {
	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		return make(map[string]*pickRecord)
	}
	return cached
}

// Remember counts one more pick of the narrative id.
func Remember(id string, weight int) error {
	mu.Lock()
	defer mu.Unlock()

	id = sanitize(id)
	cached := load()

	if record, ok := cached[id]; ok {
		record.Rank += weight
	} else {
		cached[id] = &pickRecord{Rank: weight, ID: id}
	}

	return cacher.Set(cached)
}

// Rank orders ids by how often they were picked, most picked first. Ties keep their order.
func Rank(ids []string) []string {
	ranked := slices.Clone(ids)
	if !viper.GetBool(key.LibraryRankPicks) {
		return ranked
	}

	mu.Lock()
	cached := load()
	mu.Unlock()

	rank := func(id string) int {
		if record, ok := cached[sanitize(id)]; ok {
			return record.Rank
		}
		return 0
	}

	slices.SortStableFunc(ranked, func(a, b string) int {
		return rank(b) - rank(a)
	})
	return ranked
}

// Suggest returns the remembered ids matching the partial input, most picked first.
func Suggest(q string) []string {
	q = sanitize(q)

	mu.Lock()
	cached := load()
	mu.Unlock()

	records := lo.Filter(lo.Values(cached), func(r *pickRecord, _ int) bool {
		return fuzzy.Match(q, r.ID)
	})
	slices.SortFunc(records, func(a, b *pickRecord) int {
		if a.Rank != b.Rank {
			return b.Rank - a.Rank
		}
		return strings.Compare(a.ID, b.ID)
	})

	return lo.Map(records, func(r *pickRecord, _ int) string {
		return r.ID
	})
}

func sanitize(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
