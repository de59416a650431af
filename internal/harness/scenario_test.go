package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ResolvesScenePath(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/sequence_of_sounds.yaml")
	require.NoError(t, err)

	assert.Equal(t, "sequence_of_sounds", s.Name)
	assert.Equal(t, filepath.Join("testdata", "scenes", "two_sounds.yaml"), s.Scene)
	assert.Equal(t, map[string]int{"a.wav": 30, "b.wav": 45}, s.Lengths)
	require.Len(t, s.Probes, 3)
	assert.Equal(t, []string{}, s.Probes[2].Expect.Labels)
	require.Len(t, s.Assertions, 5)
	require.NotNil(t, s.Assertions[1].Start)
	assert.Equal(t, 0, *s.Assertions[1].Start)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Inline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: inline
description: "inline scene"
inline:
  nodes: [{clip: {duration: 3}}]
assertions:
  - {type: duration, frames: 3}
`), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Empty(t, s.Scene)
	assert.NotZero(t, s.Inline.Kind)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "unknown field",
			src:     "name: x\ndescription: y\nscene: s.yaml\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			src:     "description: y\nscene: s.yaml\nassertions: [{type: duration}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			src:     "name: x\nscene: s.yaml\nassertions: [{type: duration}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no scene",
			src:     "name: x\ndescription: y\nassertions: [{type: duration}]\n",
			wantErr: "exactly one of scene and inline is required",
		},
		{
			name:    "both scenes",
			src:     "name: x\ndescription: y\nscene: s.yaml\ninline: {nodes: []}\nassertions: [{type: duration}]\n",
			wantErr: "exactly one of scene and inline is required",
		},
		{
			name:    "inline not a mapping",
			src:     "name: x\ndescription: y\ninline: [1]\nassertions: [{type: duration}]\n",
			wantErr: "inline: scene must be a mapping",
		},
		{
			name:    "nothing to check",
			src:     "name: x\ndescription: y\nscene: s.yaml\n",
			wantErr: "at least one probe or assertion is required",
		},
		{
			name:    "unknown assertion",
			src:     "name: x\ndescription: y\nscene: s.yaml\nassertions: [{type: trace_order}]\n",
			wantErr: `assertions[0]: unknown assertion type "trace_order"`,
		},
		{
			name:    "clip without label",
			src:     "name: x\ndescription: y\nscene: s.yaml\nassertions: [{type: clip}]\n",
			wantErr: "assertions[0]: label is required for clip",
		},
		{
			name:    "segment without path",
			src:     "name: x\ndescription: y\nscene: s.yaml\nassertions: [{type: segment}]\n",
			wantErr: "assertions[0]: path is required for segment",
		},
		{
			name:    "voice without id",
			src:     "name: x\ndescription: y\nscene: s.yaml\nvoices: [{text: hi}]\nassertions: [{type: duration}]\n",
			wantErr: "voices[0]: text and id are required",
		},
		{
			name:    "negative probe",
			src:     "name: x\ndescription: y\nscene: s.yaml\nprobes: [{frame: -1}]\n",
			wantErr: "probes[0]: frame must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
