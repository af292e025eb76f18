package narrative

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/log"
)

// ErrNotFound is returned when no manifest carries the requested id.
var ErrNotFound = errors.New("narrative not found")

// Store is the persistence collaborator a playback session reads frames from.
type Store interface {
	// FrameSequence returns the frames of a narrative in sequence order.
	FrameSequence(ctx context.Context, narrativeID string) ([]Frame, error)

	// Narratives lists everything the store can serve.
	Narratives(ctx context.Context) ([]Summary, error)
}

// FileStore serves narratives from a directory of manifest files.
type FileStore struct {
	dir string
}

// NewFileStore creates a store over the given library directory.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the library directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Narratives lists every manifest in the library, sorted by id.
// Manifests that fail to decode are skipped with a warning.
func (s *FileStore) Narratives(ctx context.Context) ([]Summary, error) {
	entries, err := filesystem.API().ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}

	var summaries []Summary
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !isManifest(entry.Name()) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		m, err := ReadManifest(path)
		if err != nil {
			log.Warnf("skipping manifest %s: %v", path, err)
			continue
		}

		summaries = append(summaries, Summary{
			ID:     m.ID,
			Title:  m.Title,
			Path:   path,
			Frames: len(m.Frames),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// ManifestPath returns the file a narrative is read from.
func (s *FileStore) ManifestPath(ctx context.Context, narrativeID string) (string, error) {
	summaries, err := s.Narratives(ctx)
	if err != nil {
		return "", err
	}
	for _, summary := range summaries {
		if summary.ID == narrativeID {
			return summary.Path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, narrativeID)
}

// Narrative loads the full narrative with the given id.
func (s *FileStore) Narrative(ctx context.Context, narrativeID string) (*Narrative, error) {
	path, err := s.ManifestPath(ctx, narrativeID)
	if err != nil {
		return nil, err
	}

	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return m.Narrative(filepath.Dir(path))
}

// FrameSequence implements Store.
func (s *FileStore) FrameSequence(ctx context.Context, narrativeID string) ([]Frame, error) {
	n, err := s.Narrative(ctx, narrativeID)
	if err != nil {
		return nil, err
	}
	return n.Frames, nil
}
