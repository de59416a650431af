package audioplan

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/roach88/framescript/internal/frame"
)

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// MixerSink renders each plan to one audio file with ffmpeg.
//
// Every segment becomes one input, trimmed to its source range, delayed to
// its project start, and all inputs are mixed with amix.
type MixerSink struct {
	Binary string // defaults to "ffmpeg"
	Output string // output file, e.g. "mix.wav"
	Root   string // base directory for relative source paths
	Run    Runner // defaults to ExecRunner
	Logger *slog.Logger
}

// Args returns the ffmpeg arguments for plan, or nil for an empty plan.
func (m MixerSink) Args(plan Plan) ([]string, error) {
	if plan.FPS <= 0 {
		return nil, fmt.Errorf("mixer: fps must be positive, got %d", plan.FPS)
	}
	if len(plan.Segments) == 0 {
		return nil, nil
	}
	if m.Output == "" {
		return nil, fmt.Errorf("mixer: output path is required")
	}

	fps := float64(plan.FPS)
	args := []string{"-y"}
	var graph strings.Builder
	for i, seg := range plan.Segments {
		args = append(args, "-i", m.resolve(seg.Source.Path))
		fmt.Fprintf(&graph,
			"[%d:a]atrim=start=%.3f:duration=%.3f,asetpts=PTS-STARTPTS,adelay=delays=%d:all=1[a%d];",
			i,
			float64(seg.SourceStartFrame)/fps,
			float64(seg.DurationFrames)/fps,
			frame.Round(float64(seg.ProjectStartFrame)*1000/fps),
			i)
	}
	for i := range plan.Segments {
		fmt.Fprintf(&graph, "[a%d]", i)
	}
	fmt.Fprintf(&graph, "amix=inputs=%d:duration=longest:normalize=0[aout]", len(plan.Segments))

	args = append(args,
		"-filter_complex", graph.String(),
		"-map", "[aout]",
		m.Output)
	return args, nil
}

// Deliver implements Sink.
func (m MixerSink) Deliver(ctx context.Context, plan Plan) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	args, err := m.Args(plan)
	if err != nil {
		return err
	}
	if args == nil {
		logger.Info("mixer: plan has no segments, nothing to render", "seq", plan.Seq)
		return nil
	}

	bin := m.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	run := m.Run
	if run == nil {
		run = ExecRunner
	}
	logger.Debug("mixer: running", "bin", bin, "args", strings.Join(args, " "))
	out, err := run(ctx, bin, args...)
	if err != nil {
		return fmt.Errorf("mixer: %s failed: %w: %s", bin, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m MixerSink) resolve(path string) string {
	if m.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Root, path)
}
