package narrative

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/mo"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/util"
	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk description of a narrative.
type Manifest struct {
	ID     string          `json:"id,omitempty" yaml:"id,omitempty" jsonschema:"description=Narrative id; defaults to the file name"`
	Title  string          `json:"title,omitempty" yaml:"title,omitempty"`
	Frames []ManifestFrame `json:"frames" yaml:"frames"`
}

// ManifestFrame is one frame entry of a Manifest.
type ManifestFrame struct {
	ID         string         `json:"id,omitempty" yaml:"id,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty" jsonschema:"minimum=0"`
	Media      []ManifestItem `json:"media,omitempty" yaml:"media,omitempty"`
}

// ManifestItem is one media entry of a ManifestFrame.
type ManifestItem struct {
	ID            string `json:"id,omitempty" yaml:"id,omitempty"`
	Type          string `json:"type,omitempty" yaml:"type,omitempty" jsonschema:"enum=image,enum=audio,enum=text"`
	Path          string `json:"path,omitempty" yaml:"path,omitempty" jsonschema:"description=Relative paths resolve against the manifest directory"`
	SpanFrames    bool   `json:"span_frames,omitempty" yaml:"span_frames,omitempty"`
	ContinuesFrom string `json:"continues_from,omitempty" yaml:"continues_from,omitempty"`
	DurationMs    int64  `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty" jsonschema:"minimum=0"`
}

// isManifest reports whether the file extension is one the store decodes.
func isManifest(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

// ReadManifest decodes the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &m)
	default:
		err = yaml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", filepath.Base(path), err)
	}

	if m.ID == "" {
		m.ID = util.FileStem(path)
	}
	return &m, nil
}

// Narrative converts the manifest into the domain model.
// Relative media paths are resolved against dir, continuation items inherit
// the type and path of the item they continue.
func (m *Manifest) Narrative(dir string) (*Narrative, error) {
	n := &Narrative{ID: m.ID, Title: m.Title}
	if n.Title == "" {
		n.Title = m.ID
	}

	seen := make(map[string]MediaItem)
	for fi, mf := range m.Frames {
		frame := Frame{
			ID:             mf.ID,
			DurationHintMs: mf.DurationMs,
		}
		if frame.ID == "" {
			frame.ID = fmt.Sprintf("frame-%d", fi+1)
		}

		for ii, mi := range mf.Media {
			item := MediaItem{
				ID:         mi.ID,
				Path:       resolvePath(dir, mi.Path),
				SpanFrames: mi.SpanFrames,
				DurationMs: mi.DurationMs,
			}
			if item.ID == "" {
				item.ID = fmt.Sprintf("%s/%d", frame.ID, ii+1)
			}

			if mi.ContinuesFrom != "" {
				item.ContinuesFrom = mo.Some(mi.ContinuesFrom)
				if origin, ok := seen[mi.ContinuesFrom]; ok {
					if mi.Type == "" {
						item.Type = origin.Type
					}
					if item.Path == "" {
						item.Path = origin.Path
					}
					item.SpanFrames = true
				}
			}

			if mi.Type != "" {
				t, err := ParseMediaType(mi.Type)
				if err != nil {
					return nil, fmt.Errorf("frame %s item %s: %w", frame.ID, item.ID, err)
				}
				item.Type = t
			}

			seen[item.ID] = item
			frame.Media = append(frame.Media, item)
		}

		n.Frames = append(n.Frames, frame)
	}

	return n, nil
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
