// Package history persists where each narrative was left so playback can continue later.
package history

import (
	"fmt"
	"time"

	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/storyplay/storyplay/engine"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/util"
	"github.com/storyplay/storyplay/where"
)

// Saved is a resume point for one narrative.
type Saved struct {
	engine.Snapshot

	Title   string    `json:"title"`
	TotalMs int64     `json:"total_ms"`
	SavedAt time.Time `json:"saved_at"`
}

func (s *Saved) String() string {
	return fmt.Sprintf("%s : %s / %s", lo.Ternary(s.Title != "", s.Title, s.NarrativeID),
		util.FormatMillis(s.PositionMs), util.FormatMillis(s.TotalMs))
}

// Finished reports whether the snapshot sits at the end of the narrative.
func (s *Saved) Finished() bool {
	return s.TotalMs > 0 && s.PositionMs >= s.TotalMs
}

var cacher = gache.New[map[string]*Saved](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every saved snapshot keyed by narrative id.
func Get() (map[string]*Saved, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Saved), nil
	}
	return cached, nil
}

// Lookup returns the snapshot of a narrative.
func Lookup(narrativeID string) (mo.Option[*Saved], error) {
	saved, err := Get()
	if err != nil {
		return mo.None[*Saved](), err
	}
	if s, ok := saved[narrativeID]; ok {
		return mo.Some(s), nil
	}
	return mo.None[*Saved](), nil
}

// Save records snap, replacing any earlier snapshot of the same narrative.
func Save(snap engine.Snapshot, title string, totalMs int64) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	saved[snap.NarrativeID] = &Saved{
		Snapshot: snap,
		Title:    title,
		TotalMs:  totalMs,
		SavedAt:  time.Now(),
	}
	return cacher.Set(saved)
}

// Remove deletes the snapshot of a narrative.
func Remove(narrativeID string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, narrativeID)
	return cacher.Set(saved)
}
