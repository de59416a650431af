package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runInline(t *testing.T, src string) *Result {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	return result
}

func TestRun_Passes(t *testing.T) {
	result := runInline(t, `
name: nested
description: "nested clips clamp to their parent"
inline:
  settings: {width: 640, height: 360, fps: 30}
  nodes:
    - clip:
        label: outer
        duration: 10
        children:
          - clip: {label: inner, start: 5, duration: 20}
probes:
  - frame: 4
    expect: {labels: [outer]}
  - frame: 5
    expect: {labels: [outer, inner]}
assertions:
  - {type: duration, frames: 10}
  - {type: clip, label: inner, start: 5, end: 9}
  - {type: clip_count, count: 2}
  - {type: segment_count, count: 0}
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 10, result.Report.Duration)
	require.Len(t, result.Report.Clips, 2)
	assert.Equal(t, "clip-1", result.Report.Clips[0].ID)
	assert.Equal(t, "clip-1", result.Report.Clips[1].ParentID)
	assert.Equal(t, int64(1), result.Report.Plan.Seq)
}

func TestRun_ReportsFailures(t *testing.T) {
	result := runInline(t, `
name: failing
description: "every check is wrong"
inline:
  settings: {width: 640, height: 360, fps: 30}
  nodes:
    - clip:
        label: a
        children:
          - sound: {path: a.wav}
lengths: {a.wav: 12}
probes:
  - frame: 0
    expect: {labels: [b]}
assertions:
  - {type: duration, frames: 99}
  - {type: clip, label: a, end: 3}
  - {type: segment, path: a.wav, duration: 3}
  - {type: segment_count, count: 5}
`)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "probes[0] frame 0: labels: expected [b], got [a]")
	assert.Contains(t, result.Errors[1], "Expected: 99 frames")
	assert.Contains(t, result.Errors[2], "windows [0, 11]")
	assert.Contains(t, result.Errors[3], "start=0 source_start=0 duration=12")
	assert.Contains(t, result.Errors[4], "Expected: 5 segments")
}

func TestRun_HiddenClips(t *testing.T) {
	result := runInline(t, `
name: hidden
description: "hiding a parent hides its children"
inline:
  nodes:
    - clip:
        label: outer
        duration: 10
        children:
          - clip: {label: inner, duration: 5}
hide: [outer]
probes:
  - frame: 0
    expect: {labels: []}
assertions:
  - {type: clip_count, count: 2}
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ExpectError(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/shared_variable.yaml")
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	s.ExpectError = "SHAPE_MISMATCH"
	result, err = Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `expected mount error containing "SHAPE_MISMATCH"`)
}

func TestRun_MountErrorWithoutExpectation(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/shared_variable.yaml")
	require.NoError(t, err)
	s.ExpectError = ""
	s.Assertions = []Assertion{{Type: AssertDuration}}

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to mount scene")
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/animated_title.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := MarshalGolden(s.Name, first.Report)
	require.NoError(t, err)
	b, err := MarshalGolden(s.Name, second.Report)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
