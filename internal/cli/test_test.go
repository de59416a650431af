package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	scenariosDir = "../harness/testdata/scenarios"
	goldenDir    = "../harness/testdata/golden"
)

func TestTestCommand_Passes(t *testing.T) {
	stdout, _, code := runCLI(t, "test", scenariosDir, "--golden", goldenDir)
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "✓ sequence_of_sounds")
	assert.Contains(t, stdout, "✓ animated_title")
	assert.Contains(t, stdout, "✓ shared_variable")
	assert.Contains(t, stdout, "All scenarios passed")
}

func TestTestCommand_JSON(t *testing.T) {
	stdout, _, code := runCLI(t, "test", scenariosDir, "--golden", goldenDir, "--filter", "sequence*", "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)

	var result TestResult
	resp := decodeResponse(t, stdout, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Passed)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "sequence_of_sounds", result.Scenarios[0].Name)
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	dir := t.TempDir()

	stdout, _, code := runCLI(t, "test", scenariosDir, "--golden", dir, "--update")
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "(golden updated)")

	// The regenerated goldens are the checked-in ones.
	for _, name := range []string{"sequence_of_sounds", "animated_title"} {
		want, err := os.ReadFile(filepath.Join(goldenDir, name+".golden"))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(dir, name+".golden"))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), name)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "animated_title.golden"), []byte("{}"), 0o644))
	stdout, _, code = runCLI(t, "test", scenariosDir, "--golden", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ animated_title")
	assert.Contains(t, stdout, "does not match golden file")
	assert.Contains(t, stdout, "2 passed, 1 failed, 3 total")
}

func TestTestCommand_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	scenario := `name: wrong_length
description: "Expects the wrong duration"
inline:
  nodes:
    - clip:
        children:
          - sound: {path: a.wav}
lengths: {a.wav: 30}
assertions:
  - type: duration
    frames: 31
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong_length.yaml"), []byte(scenario), 0o644))

	stdout, _, code := runCLI(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ wrong_length")
	assert.Contains(t, stdout, "0 passed, 1 failed, 1 total")
}

func TestTestCommand_Empty(t *testing.T) {
	stdout, _, code := runCLI(t, "test", t.TempDir())
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, stderr, code := runCLI(t, "test", filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "scenarios directory not found")
}
