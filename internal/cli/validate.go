package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/framescript/internal/frame"
	"github.com/roach88/framescript/internal/scene"
)

// ValidationResult is the validate command's output.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Scene    string          `json:"scene,omitempty"`
	Settings *frame.Settings `json:"settings,omitempty"`
	Errors   []string        `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scene>",
		Short: "Check a scene file without mounting it",
		Long: `Parse a scene file, check every node and instruction, resolve its
project settings and compile its scripts. Nothing is mounted and no media
is probed, so validate is fast and needs no metadata backend.

Exit codes:
  0 - Scene is valid
  1 - Scene is invalid
  2 - Command error (file not found, bad project settings)`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	sc, err := scene.Load(path)
	if isInvalidScene(err) {
		result := ValidationResult{Valid: false, Errors: validationMessages(err)}
		if f.JSON() {
			if outErr := f.Error(ErrCodeInvalid, "scene is invalid", result); outErr != nil {
				return outErr
			}
		} else {
			w := f.Writer
			fmt.Fprintf(w, "✗ %s: %d problem(s)\n", path, len(result.Errors))
			for _, msg := range result.Errors {
				fmt.Fprintf(w, "  %s\n", msg)
			}
		}
		return NewExitError(ExitFailure, "scene is invalid")
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeLoad, "failed to load scene", err)
	}
	f.VerboseLog("Validated %s", path)

	settings, err := sc.ResolveSettings()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "failed to resolve project settings", err)
	}
	if _, err := sc.Compile(settings); err != nil {
		return f.Fail(ExitFailure, ErrCodeInvalid, "failed to compile scene", err)
	}

	result := ValidationResult{Valid: true, Scene: sc.Name, Settings: &settings}
	return f.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s is valid (%dx%d at %d fps)\n", path, settings.Width, settings.Height, settings.FPS)
	})
}
