package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/framescript/internal/anim"
	"github.com/roach88/framescript/internal/compose"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Frames []int // explicit frames; empty means every Step-th frame
	Step   int
}

// RenderResult is the render command's output.
type RenderResult struct {
	Scene    string          `json:"scene"`
	FPS      int             `json:"fps"`
	Duration int             `json:"duration"`
	Frames   []compose.Frame `json:"frames"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Print the resolved state of frames",
		Long: `Mount a scene and print, for each requested frame, the active clips
with their local frames, sampled variable values, subtitles and video
source frames.

Examples:
  framescript render intro.yaml
  framescript render intro.yaml --frame 0 --frame 45
  framescript render intro.yaml --step 30 --format json`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntSliceVar(&opts.Frames, "frame", nil, "frame to render (repeatable)")
	cmd.Flags().IntVar(&opts.Step, "step", 1, "render every n-th frame when no --frame is given")

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	if opts.Step < 1 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("step must be positive, got %d", opts.Step), nil)
	}
	for _, fr := range opts.Frames {
		if fr < 0 {
			return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("frame must not be negative, got %d", fr), nil)
		}
	}

	s, err := openSession(cmd.Context(), f, path, newLogger(opts.RootOptions, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer s.Close()

	duration := s.engine.Duration()
	frames := opts.Frames
	if len(frames) == 0 {
		for fr := 0; fr < duration; fr += opts.Step {
			frames = append(frames, fr)
		}
	}

	result := RenderResult{
		Scene:    s.scene.Name,
		FPS:      s.settings.FPS,
		Duration: duration,
		Frames:   make([]compose.Frame, 0, len(frames)),
	}
	for _, fr := range frames {
		result.Frames = append(result.Frames, s.engine.Render(fr))
	}

	return f.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %d frames at %d fps\n", result.Scene, duration, result.FPS)
		for _, fr := range result.Frames {
			fmt.Fprintln(w, formatFrame(fr))
		}
	})
}

// formatFrame renders one frame as a single line:
//
//	frame 20  a@20, b@5  x=10.000  [top] hello  intro.mp4#25
func formatFrame(fr compose.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame %d ", fr.Frame)

	clips := make([]string, 0, len(fr.Clips))
	for _, c := range fr.Clips {
		name := c.Label
		if name == "" {
			name = c.ID
		}
		clips = append(clips, fmt.Sprintf("%s@%d", name, c.Local))
	}
	if len(clips) == 0 {
		b.WriteString(" -")
	} else {
		b.WriteString(" " + strings.Join(clips, ", "))
	}

	for _, v := range fr.Values {
		name := v.Label
		if name == "" {
			name = v.Variable
		}
		fmt.Fprintf(&b, "  %s=%s", name, anim.Format(v.Value))
	}
	for _, sub := range fr.Subtitles {
		fmt.Fprintf(&b, "  [%s] %s", sub.Position, sub.Text)
	}
	for _, v := range fr.Videos {
		fmt.Fprintf(&b, "  %s#%d", v.Path, v.SourceFrame)
	}
	return b.String()
}
