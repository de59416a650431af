package scene

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/framescript/internal/frame"
	"github.com/roach88/framescript/internal/project"
)

// Scene is a parsed scene file.
type Scene struct {
	// Name identifies the scene in logs and traces.
	Name string `yaml:"name"`

	// Project is an optional path to a CUE project file or directory,
	// relative to the scene file.
	Project string `yaml:"project,omitempty"`

	// Settings override the project file when present.
	Settings *frame.Settings `yaml:"settings,omitempty"`

	// Variables maps names to initial values: a number, a [x, y] or
	// [x, y, z] list, or a mapping with x, y and optionally z.
	Variables map[string]any `yaml:"variables,omitempty"`

	// Nodes is the top level of the tree.
	Nodes []NodeSpec `yaml:"nodes"`

	dir string
}

// NodeSpec is one node. Exactly one field must be set.
type NodeSpec struct {
	Clip     *ClipSpec     `yaml:"clip,omitempty"`
	Static   *StaticSpec   `yaml:"static,omitempty"`
	Sequence *SequenceSpec `yaml:"sequence,omitempty"`
	Serial   []StaticSpec  `yaml:"serial,omitempty"`
	Animate  *AnimateSpec  `yaml:"animate,omitempty"`
	Sample   *SampleSpec   `yaml:"sample,omitempty"`
	Sound    *SoundSpec    `yaml:"sound,omitempty"`
	Video    *VideoSpec    `yaml:"video,omitempty"`
	Voice    *VoiceSpec    `yaml:"voice,omitempty"`
}

// Load reads and parses a scene file. Relative project paths resolve
// against the file's directory.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	s.dir = filepath.Dir(path)
	if s.Name == "" {
		s.Name = trimExt(filepath.Base(path))
	}
	return s, nil
}

// Parse decodes a scene with strict field checking and validates it.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}
	return &s, nil
}

// ResolveSettings returns the inline settings, else the project file's,
// else the defaults.
func (s *Scene) ResolveSettings() (frame.Settings, error) {
	if s.Settings != nil {
		settings := *s.Settings
		if settings.Name == "" {
			settings.Name = s.Name
		}
		if err := settings.Validate(); err != nil {
			return frame.Settings{}, fmt.Errorf("scene settings: %w", err)
		}
		return settings, nil
	}
	if s.Project != "" {
		path := s.Project
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		return project.Load(path)
	}
	settings := frame.DefaultSettings()
	if s.Name != "" {
		settings.Name = s.Name
	}
	return settings, nil
}

// VariableNames returns the declared variable names, sorted.
func (s *Scene) VariableNames() []string {
	names := make([]string, 0, len(s.Variables))
	for name := range s.Variables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
