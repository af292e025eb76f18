// Package cache remembers facts about media files that are expensive to learn, such as the true
// length of an audio file, across runs.
package cache

import (
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/spf13/afero"
	"github.com/samber/mo"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/where"
)

// Lifetime is how long a cache file is trusted after its last write.
const Lifetime = 30 * 24 * time.Hour

type cacheData[K comparable, T any] struct {
	Entries map[K]T `json:"entries"`
}

type cacher[K comparable, T any] struct {
	internal *gache.Cache[*cacheData[K, T]]
	mu       sync.RWMutex
}

func newCacher[K comparable, T any](path string) *cacher[K, T] {
	return &cacher[K, T]{
		internal: gache.New[*cacheData[K, T]](
			&gache.Options{
				Path:       path,
				Lifetime:   Lifetime,
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

func (c *cacher[K, T]) Get(key K) mo.Option[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[T]()
	}

	if value, ok := data.Entries[key]; ok {
		return mo.Some(value)
	}
	return mo.None[T]()
}

func (c *cacher[K, T]) Set(key K, value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if expired || data == nil {
		data = &cacheData[K, T]{Entries: make(map[K]T)}
	}
	data.Entries[key] = value
	return c.internal.Set(data)
}

func (c *cacher[K, T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return 0
	}
	return len(data.Entries)
}

// Durations maps audio files to the duration their decoder reported.
// Entries are keyed by path, size and modification time, so an edited file is measured again.
type Durations struct {
	internal *cacher[string, int64]
}

// NewDurations opens the cache stored at path.
func NewDurations(path string) *Durations {
	return &Durations{internal: newCacher[string, int64](path)}
}

// DefaultDurations opens the cache in the application cache directory.
func DefaultDurations() *Durations {
	return NewDurations(where.Durations())
}

func fingerprint(path string) (string, bool) {
	info, err := filesystem.API().Stat(path)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()), true
}

// Lookup returns the remembered duration of path, or 0 when unknown.
func (d *Durations) Lookup(path string) int64 {
	key, ok := fingerprint(path)
	if !ok {
		return 0
	}
	return d.internal.Get(key).OrElse(0)
}

// Record remembers a positive duration. Failures only cost a later re-measure, so they are ignored.
func (d *Durations) Record(path string, durationMs int64) {
	if durationMs <= 0 {
		return
	}
	key, ok := fingerprint(path)
	if !ok {
		return
	}
	_ = d.internal.Set(key, durationMs)
}

// Len returns the number of remembered durations.
func (d *Durations) Len() int {
	return d.internal.Len()
}

// CollectGarbage removes cache files that were not written for longer than Lifetime.
func CollectGarbage() {
	dir := where.Cache()
	_ = afero.Walk(filesystem.API(), dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > Lifetime {
			_ = filesystem.API().Remove(path)
		}
		return nil
	})
}
