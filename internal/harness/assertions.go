package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/framescript/internal/anim"
	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/compose"
	"github.com/roach88/framescript/internal/timeline"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions runs each assertion against report and returns one
// message per failure.
func EvaluateAssertions(report Report, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(report, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(report Report, a Assertion) error {
	switch a.Type {
	case AssertDuration:
		if report.Duration != a.Frames {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d frames", a.Frames),
				Actual:   fmt.Sprintf("%d frames", report.Duration),
			}
		}
	case AssertClip:
		return assertClip(report.Clips, a)
	case AssertClipCount:
		if len(report.Clips) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d clips", a.Count),
				Actual:   fmt.Sprintf("%d clips", len(report.Clips)),
			}
		}
	case AssertSegment:
		return assertSegment(report.Plan.Segments, a)
	case AssertSegmentCount:
		if len(report.Plan.Segments) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d segments", a.Count),
				Actual:   fmt.Sprintf("%d segments", len(report.Plan.Segments)),
			}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// assertClip passes when any clip with the label matches every bound set.
func assertClip(clips []timeline.ClipNode, a Assertion) error {
	var found []string
	for _, c := range clips {
		if c.Label != a.Label {
			continue
		}
		if matchInt(a.Start, c.AbsoluteStart) && matchInt(a.End, c.AbsoluteEnd) {
			return nil
		}
		found = append(found, fmt.Sprintf("[%d, %d]", c.AbsoluteStart, c.AbsoluteEnd))
	}
	actual := "no clip with that label"
	if len(found) > 0 {
		actual = "windows " + strings.Join(found, ", ")
	}
	return &AssertionError{
		Type:     AssertClip,
		Expected: fmt.Sprintf("clip %q covering [%s, %s]", a.Label, optInt(a.Start), optInt(a.End)),
		Actual:   actual,
	}
}

func assertSegment(segments []audioplan.Segment, a Assertion) error {
	var found []string
	for _, s := range segments {
		if s.Source.Path != a.Path {
			continue
		}
		if matchInt(a.Start, s.ProjectStartFrame) &&
			matchInt(a.Duration, s.DurationFrames) &&
			matchInt(a.SourceStart, s.SourceStartFrame) {
			return nil
		}
		found = append(found, fmt.Sprintf("start=%d source_start=%d duration=%d",
			s.ProjectStartFrame, s.SourceStartFrame, s.DurationFrames))
	}
	actual := "no segment for that path"
	if len(found) > 0 {
		actual = strings.Join(found, "; ")
	}
	return &AssertionError{
		Type: AssertSegment,
		Expected: fmt.Sprintf("segment %q start=%s source_start=%s duration=%s",
			a.Path, optInt(a.Start), optInt(a.SourceStart), optInt(a.Duration)),
		Actual: actual,
	}
}

func matchInt(want *int, got int) bool {
	return want == nil || *want == got
}

func optInt(v *int) string {
	if v == nil {
		return "*"
	}
	return fmt.Sprint(*v)
}

// compareFrame checks a rendered frame against a probe's expectations.
func compareFrame(p Probe, f compose.Frame) []string {
	if p.Expect == nil {
		return nil
	}
	var errs []string
	want := p.Expect

	if want.Labels != nil {
		got := f.Labels()
		if !slices.Equal(want.Labels, got) {
			errs = append(errs, fmt.Sprintf("labels: expected %v, got %v", want.Labels, got))
		}
	}

	if want.Values != nil {
		got := make(map[string]string, len(f.Values))
		for _, v := range f.Values {
			key := v.Label
			if key == "" {
				key = v.Variable
			}
			got[key] = anim.Format(v.Value)
		}
		for _, key := range slices.Sorted(maps.Keys(want.Values)) {
			if g, ok := got[key]; !ok {
				errs = append(errs, fmt.Sprintf("value %q: not sampled", key))
			} else if g != want.Values[key] {
				errs = append(errs, fmt.Sprintf("value %q: expected %s, got %s", key, want.Values[key], g))
			}
		}
	}

	if want.Subtitles != nil {
		got := make([]string, 0, len(f.Subtitles))
		for _, s := range f.Subtitles {
			got = append(got, s.Text)
		}
		if !slices.Equal(want.Subtitles, got) {
			errs = append(errs, fmt.Sprintf("subtitles: expected %v, got %v", want.Subtitles, got))
		}
	}

	if want.Videos != nil {
		got := make(map[string]int, len(f.Videos))
		for _, v := range f.Videos {
			got[v.Path] = v.SourceFrame
		}
		if !maps.Equal(want.Videos, got) {
			errs = append(errs, fmt.Sprintf("videos: expected %v, got %v", want.Videos, got))
		}
	}
	return errs
}
