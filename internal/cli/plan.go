package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/store"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Out string // write the plan JSON here
	DB  string // sqlite outbox to deliver into
	Mix string // render a mixdown with ffmpeg to this file
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <scene>",
		Short: "Build the audio plan for a scene",
		Long: `Mount a scene, collect every sound, video and voice segment, and hand
the resulting plan to each requested sink.

The plan id is a content hash of fps and segments: building the same scene
twice yields the same id, and an outbox stores it once.

Examples:
  framescript plan intro.yaml
  framescript plan intro.yaml --out plan.json
  framescript plan intro.yaml --db plans.db
  framescript plan intro.yaml --mix mix.wav`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the plan as JSON to this file")
	cmd.Flags().StringVar(&opts.DB, "db", "", "deliver the plan into this sqlite outbox")
	cmd.Flags().StringVar(&opts.Mix, "mix", "", "render the plan to this audio file with ffmpeg")

	return cmd
}

func runPlan(opts *PlanOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	ctx := cmd.Context()

	s, err := openSession(ctx, f, path, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	var sinks multiSink
	seq := audioplan.NewCounterAt(0)

	if opts.Out != "" {
		out, err := os.Create(opts.Out)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to create plan file", err)
		}
		defer out.Close()
		sinks = append(sinks, audioplan.WriterSink{W: out})
	}
	if opts.DB != "" {
		st, err := store.Open(opts.DB)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to open plan store", err)
		}
		defer st.Close()
		last, err := st.LastSeq(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to read plan store", err)
		}
		seq = audioplan.NewCounterAt(last)
		sinks = append(sinks, st)
		f.VerboseLog("Delivering into %s after seq %d", opts.DB, last)
	}
	if opts.Mix != "" {
		sinks = append(sinks, audioplan.MixerSink{
			Binary: s.cfg.FFMpeg,
			Output: opts.Mix,
			Logger: logger,
		})
	}

	handoff := audioplan.NewHandoff(s.agg, s.settings.FPS, sinks,
		audioplan.WithSequencer(seq),
		audioplan.WithHandoffLogger(logger),
	)
	plan, err := handoff.Flush(ctx)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeDelivery, "failed to deliver plan", err)
	}

	return f.Success(plan, func(w io.Writer) {
		fmt.Fprintf(w, "plan %s (seq %d, %d fps, %d segment(s))\n", plan.ID, plan.Seq, plan.FPS, len(plan.Segments))
		if len(plan.Segments) == 0 {
			return
		}
		fmt.Fprintln(w)
		writeSegmentTable(w, plan.Segments)
	})
}

// multiSink delivers to every sink in order and joins their errors.
type multiSink []audioplan.Sink

func (m multiSink) Deliver(ctx context.Context, plan audioplan.Plan) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ctx, plan); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeSegmentTable(w io.Writer, segments []audioplan.Segment) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tPATH\tSTART\tEND\tSOURCE\tFRAMES")
	for _, seg := range segments {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n",
			seg.Source.Kind, seg.Source.Path,
			seg.ProjectStartFrame, seg.ProjectEndFrame(),
			seg.SourceStartFrame, seg.DurationFrames)
	}
	tw.Flush()
}
