package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/framescript/internal/timeline"
)

// TimelineOptions holds flags for the timeline command.
type TimelineOptions struct {
	*RootOptions
	Hide []string // clip labels to hide before dumping
}

// TimelineResult is the timeline command's output.
type TimelineResult struct {
	Scene    string              `json:"scene"`
	FPS      int                 `json:"fps"`
	Duration int                 `json:"duration"`
	Version  uint64              `json:"version"`
	Clips    []timeline.ClipNode `json:"clips"`
	Hidden   []string            `json:"hidden"`
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TimelineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "timeline <scene>",
		Short: "Dump the resolved clip registry",
		Long: `Mount a scene and print every registered clip with its absolute
window, depth, parent and lane. Hiding a clip by label hides its whole
subtree without changing any window.

Examples:
  framescript timeline intro.yaml
  framescript timeline intro.yaml --hide title --format json`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Hide, "hide", nil, "label of a clip to hide (repeatable)")

	return cmd
}

func runTimeline(opts *TimelineOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	s, err := openSession(cmd.Context(), f, path, newLogger(opts.RootOptions, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer s.Close()

	for _, label := range opts.Hide {
		ids := clipsLabelled(s.reg.Snapshot(), label)
		if len(ids) == 0 {
			return f.Fail(ExitCommandError, ErrCodeUnknownClip, fmt.Sprintf("no clip labelled %q", label), nil)
		}
		for _, id := range ids {
			s.reg.SetVisible(id, false)
		}
	}

	snap := s.reg.Snapshot()
	result := TimelineResult{
		Scene:    s.scene.Name,
		FPS:      s.settings.FPS,
		Duration: s.engine.Duration(),
		Version:  snap.Version,
		Clips:    snap.Clips,
		Hidden:   []string{},
	}
	for _, c := range snap.Clips {
		if snap.Hidden[c.ID] {
			result.Hidden = append(result.Hidden, c.ID)
		}
	}

	return f.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %d frames at %d fps, %d clip(s)\n\n", result.Scene, result.Duration, result.FPS, len(result.Clips))
		writeClipTable(w, snap)
	})
}

func clipsLabelled(snap timeline.Snapshot, label string) []string {
	var ids []string
	for _, c := range snap.Clips {
		if c.Label == label {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func writeClipTable(w io.Writer, snap timeline.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLIP\tSTART\tEND\tFRAMES\tLANE\tVISIBLE")
	for _, c := range snap.Clips {
		name := c.Label
		if name == "" {
			name = c.ID
		}
		visible := "yes"
		switch {
		case snap.Hidden[c.ID]:
			visible = "hidden"
		case !snap.Visible(c.ID):
			visible = "inherited"
		}
		fmt.Fprintf(tw, "%s%s\t%d\t%d\t%d\t%s\t%s\n",
			strings.Repeat("  ", c.Depth), name,
			c.AbsoluteStart, c.AbsoluteEnd, c.Span(), c.LaneID, visible)
	}
	tw.Flush()
}
