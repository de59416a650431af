package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/framescript/internal/anim"
	"github.com/roach88/framescript/internal/canon"
)

// toCanonicalMap converts a report to plain values for canonical JSON.
// Sampled values are formatted with anim.Format since canonical JSON has no
// floats.
func (r Report) toCanonicalMap(name string) map[string]any {
	clips := make([]any, len(r.Clips))
	for i, c := range r.Clips {
		clips[i] = map[string]any{
			"id":             c.ID,
			"label":          c.Label,
			"lane_id":        c.LaneID,
			"parent_id":      c.ParentID,
			"depth":          c.Depth,
			"absolute_start": c.AbsoluteStart,
			"absolute_end":   c.AbsoluteEnd,
		}
	}

	frames := make([]any, len(r.Frames))
	for i, f := range r.Frames {
		active := make([]any, len(f.Clips))
		for j, c := range f.Clips {
			active[j] = map[string]any{"id": c.ID, "label": c.Label, "local": c.Local}
		}
		values := make([]any, len(f.Values))
		for j, v := range f.Values {
			values[j] = map[string]any{
				"variable": v.Variable,
				"label":    v.Label,
				"local":    v.Local,
				"value":    anim.Format(v.Value),
			}
		}
		subtitles := make([]any, len(f.Subtitles))
		for j, s := range f.Subtitles {
			subtitles[j] = map[string]any{"text": s.Text, "position": string(s.Position)}
		}
		videos := make([]any, len(f.Videos))
		for j, v := range f.Videos {
			videos[j] = map[string]any{"path": v.Path, "source_frame": v.SourceFrame}
		}
		frames[i] = map[string]any{
			"frame":     f.Frame,
			"clips":     active,
			"values":    values,
			"subtitles": subtitles,
			"videos":    videos,
		}
	}

	segments := make([]any, len(r.Plan.Segments))
	for i, s := range r.Plan.Segments {
		segments[i] = map[string]any{
			"id":                  s.ID,
			"kind":                string(s.Source.Kind),
			"path":                s.Source.Path,
			"project_start_frame": s.ProjectStartFrame,
			"source_start_frame":  s.SourceStartFrame,
			"duration_frames":     s.DurationFrames,
		}
	}

	return map[string]any{
		"scenario_name": name,
		"duration":      r.Duration,
		"clips":         clips,
		"frames":        frames,
		"plan": map[string]any{
			"seq":      r.Plan.Seq,
			"id":       r.Plan.ID,
			"fps":      r.Plan.FPS,
			"segments": segments,
		},
	}
}

// MarshalGolden returns the canonical JSON form of a report, the bytes
// stored in golden files.
func MarshalGolden(name string, r Report) ([]byte, error) {
	return canon.Marshal(r.toCanonicalMap(name))
}

// RunWithGolden executes a scenario and compares its report against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the report doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return result, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalGolden(scenarioName, result.Report)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
