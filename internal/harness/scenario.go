package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario mounts one scene and checks what it produces.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Scene is the path to a scene file, relative to the scenario file.
	// Exactly one of Scene and Inline must be set.
	Scene string `yaml:"scene,omitempty"`

	// Inline is a scene written directly in the scenario.
	Inline yaml.Node `yaml:"inline,omitempty"`

	// Lengths fixes source lengths in frames by path. Sources not listed
	// have unknown length.
	Lengths map[string]int `yaml:"lengths,omitempty"`

	// Voices lists the lines that have generated audio.
	Voices []VoiceStep `yaml:"voices,omitempty"`

	// Dev mounts in development mode, where variable misuse is fatal.
	Dev bool `yaml:"dev,omitempty"`

	// Hide lists clip labels to hide before probing.
	Hide []string `yaml:"hide,omitempty"`

	// ExpectError, when set, requires mounting to fail with an error whose
	// message contains it. Probes and assertions are skipped.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Probes render single frames and compare them.
	Probes []Probe `yaml:"probes,omitempty"`

	// Assertions validate the mounted timeline and audio plan.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	dir string
}

// VoiceStep declares a line with generated audio.
type VoiceStep struct {
	Text    string `yaml:"text"`
	Speaker int    `yaml:"speaker,omitempty"`
	ID      string `yaml:"id"`
}

// Probe renders one project frame.
type Probe struct {
	Frame  int          `yaml:"frame"`
	Expect *FrameExpect `yaml:"expect,omitempty"`
}

// FrameExpect is a subset match against a rendered frame. Nil fields are
// not checked; an empty list expects nothing active.
type FrameExpect struct {
	// Labels of the active clips, in mount order.
	Labels []string `yaml:"labels,omitempty"`

	// Values maps sample labels (or variable names when unlabelled) to
	// values formatted by anim.Format ("0.500", "(1.000, 2.000)").
	Values map[string]string `yaml:"values,omitempty"`

	// Subtitles are the visible subtitle texts.
	Subtitles []string `yaml:"subtitles,omitempty"`

	// Videos maps video paths to the source frame shown.
	Videos map[string]int `yaml:"videos,omitempty"`
}

// Assertion validates the mounted scene.
type Assertion struct {
	// Type specifies the assertion type:
	// - "duration": total length in frames equals Frames
	// - "clip": a clip with Label covers [Start, End]
	// - "clip_count": exactly Count clips are registered
	// - "segment": a segment of Path starts at Start and lasts Duration
	// - "segment_count": exactly Count audio segments are planned
	Type string `yaml:"type"`

	Frames int    `yaml:"frames,omitempty"`
	Label  string `yaml:"label,omitempty"`
	Path   string `yaml:"path,omitempty"`
	Count  int    `yaml:"count,omitempty"`

	Start       *int `yaml:"start,omitempty"`
	End         *int `yaml:"end,omitempty"`
	Duration    *int `yaml:"duration,omitempty"`
	SourceStart *int `yaml:"source_start,omitempty"`
}

// Assertion type constants.
const (
	AssertDuration     = "duration"
	AssertClip         = "clip"
	AssertClipCount    = "clip_count"
	AssertSegment      = "segment"
	AssertSegmentCount = "segment_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	s.dir = filepath.Dir(path)
	if s.Scene != "" && !filepath.IsAbs(s.Scene) {
		s.Scene = filepath.Join(s.dir, s.Scene)
	}
	return s, nil
}

// ParseScenario decodes a scenario with strict field checking.
// Relative scene paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	hasInline := s.Inline.Kind != 0
	if (s.Scene == "") == !hasInline {
		return fmt.Errorf("exactly one of scene and inline is required")
	}
	if hasInline && s.Inline.Kind != yaml.MappingNode {
		return fmt.Errorf("inline: scene must be a mapping")
	}

	if s.ExpectError == "" && len(s.Probes) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one probe or assertion is required")
	}

	for i, v := range s.Voices {
		if v.Text == "" || v.ID == "" {
			return fmt.Errorf("voices[%d]: text and id are required", i)
		}
	}
	for i, p := range s.Probes {
		if p.Frame < 0 {
			return fmt.Errorf("probes[%d]: frame must be non-negative", i)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertDuration:
		if a.Frames < 0 {
			return fmt.Errorf("assertions[%d]: frames must be non-negative for duration", index)
		}
	case AssertClip:
		if a.Label == "" {
			return fmt.Errorf("assertions[%d]: label is required for clip", index)
		}
	case AssertSegment:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for segment", index)
		}
	case AssertClipCount, AssertSegmentCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
