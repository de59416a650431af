package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/framescript/internal/voice"
)

// VoicesOptions holds flags for the voices command.
type VoicesOptions struct {
	*RootOptions
	Out string // voice map to write; defaults to FRAMESCRIPT_VOICE_MAP
}

// VoicesResult is the voices command's output.
type VoicesResult struct {
	Path    string        `json:"path"`
	Entries []voice.Entry `json:"entries"`
}

// NewVoicesCommand creates the voices command.
func NewVoicesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VoicesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "voices <scene>",
		Short: "Write the voice map for a scene's spoken lines",
		Long: `Mount a scene, collect every voice line in tree order and write a voice
map assigning each distinct (text, speaker, params) key an id. Speech
synthesis reads the map and writes <voice-dir>/<id>.wav for each entry.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVoices(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "voice map to write (default $FRAMESCRIPT_VOICE_MAP)")

	return cmd
}

func runVoices(opts *VoicesOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	s, err := openSession(cmd.Context(), f, path, newLogger(opts.RootOptions, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer s.Close()

	out := opts.Out
	if out == "" {
		out = s.cfg.VoiceMap
	}
	m := voice.BuildMap(s.engine.Lines())
	if err := m.Save(out); err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to write voice map", err)
	}

	result := VoicesResult{Path: out, Entries: m.Voices}
	return f.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "wrote %d voice(s) to %s\n", len(m.Voices), out)
		for _, e := range m.Voices {
			fmt.Fprintf(w, "  %s  speaker %d  %q\n", e.ID, e.SpeakerID, e.Text)
		}
	})
}
