package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/framescript/internal/anim"
	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/compose"
	"github.com/roach88/framescript/internal/scene"
	"github.com/roach88/framescript/internal/testutil"
	"github.com/roach88/framescript/internal/timeline"
	"github.com/roach88/framescript/internal/voice"
)

// Harness mounts one scenario's scene with deterministic helpers.
type Harness struct {
	engine  *compose.Engine
	reg     *timeline.Registry
	agg     *audioplan.Aggregator
	handoff *audioplan.Handoff
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario mounts into a fresh registry and aggregator. Clip ids come
// from a sequential generator and plan seqs from a deterministic clock, so
// identical scenarios produce identical reports.
//
// Execution flow:
// 1. Load or decode the scene and resolve its settings
// 2. Mount it against the scenario's fixed source lengths and voices
// 3. Hide the listed clips, then render each probe frame
// 4. Flush the audio plan
// 5. Evaluate probes and assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	sc, err := loadScene(scenario)
	if err != nil {
		return nil, err
	}
	settings, err := sc.ResolveSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve settings: %w", err)
	}
	comp, err := sc.Compile(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to compile scene: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		reg:    timeline.New(timeline.WithLogger(logger)),
		agg:    audioplan.NewAggregator(),
		logger: logger,
	}
	h.engine = compose.New(settings,
		compose.WithRegistry(h.reg),
		compose.WithAggregator(h.agg),
		compose.WithLengths(testutil.NewLengths(scenario.Lengths)),
		compose.WithVoices(voiceMap(scenario.Voices), "voices"),
		compose.WithIDGenerator(compose.NewSequentialGenerator("clip")),
		compose.WithArena(anim.NewArena()),
		compose.WithDevMode(scenario.Dev),
		compose.WithLogger(logger),
	)
	defer h.engine.Unmount()
	h.handoff = audioplan.NewHandoff(h.agg, settings.FPS,
		audioplan.SinkFunc(func(context.Context, audioplan.Plan) error { return nil }),
		audioplan.WithSequencer(testutil.NewDeterministicClock()),
		audioplan.WithHandoffLogger(logger),
	)

	result := NewResult()
	mountErr := h.engine.Mount(ctx, comp)
	if scenario.ExpectError != "" {
		switch {
		case mountErr == nil:
			result.AddError(fmt.Sprintf("expected mount error containing %q, got none", scenario.ExpectError))
		case !strings.Contains(mountErr.Error(), scenario.ExpectError):
			result.AddError(fmt.Sprintf("expected mount error containing %q, got %q", scenario.ExpectError, mountErr))
		}
		return result, nil
	}
	if mountErr != nil {
		return nil, fmt.Errorf("failed to mount scene: %w", mountErr)
	}

	h.hide(scenario.Hide)

	report, err := h.report(ctx, scenario.Probes)
	if err != nil {
		return nil, err
	}
	result.Report = report

	for i, p := range scenario.Probes {
		for _, msg := range compareFrame(p, report.Frames[i]) {
			result.AddError(fmt.Sprintf("probes[%d] frame %d: %s", i, p.Frame, msg))
		}
	}
	for _, msg := range EvaluateAssertions(report, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"duration", report.Duration,
		"clips", len(report.Clips),
		"segments", len(report.Plan.Segments),
		"pass", result.Pass)
	return result, nil
}

func loadScene(scenario *Scenario) (*scene.Scene, error) {
	if scenario.Scene != "" {
		sc, err := scene.Load(scenario.Scene)
		if err != nil {
			return nil, fmt.Errorf("failed to load scene: %w", err)
		}
		return sc, nil
	}
	data, err := yaml.Marshal(&scenario.Inline)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inline scene: %w", err)
	}
	sc, err := scene.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse inline scene: %w", err)
	}
	if sc.Name == "" {
		sc.Name = scenario.Name
	}
	return sc, nil
}

func voiceMap(steps []VoiceStep) *voice.Map {
	entries := make([]voice.Entry, 0, len(steps))
	for _, s := range steps {
		speaker := s.Speaker
		if speaker == 0 {
			speaker = voice.DefaultSpeaker
		}
		entries = append(entries, voice.Entry{
			Key:       voice.Key(s.Text, speaker, voice.Params{}),
			ID:        s.ID,
			Text:      s.Text,
			SpeakerID: speaker,
		})
	}
	return voice.NewMap(entries)
}

// hide hides every registered clip carrying one of labels.
func (h *Harness) hide(labels []string) {
	if len(labels) == 0 {
		return
	}
	want := make(map[string]bool, len(labels))
	for _, l := range labels {
		want[l] = true
	}
	for _, c := range h.reg.Snapshot().Clips {
		if want[c.Label] {
			h.reg.SetVisible(c.ID, false)
		}
	}
}

func (h *Harness) report(ctx context.Context, probes []Probe) (Report, error) {
	plan, err := h.handoff.Flush(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to flush audio plan: %w", err)
	}
	frames := make([]compose.Frame, len(probes))
	for i, p := range probes {
		frames[i] = h.engine.Render(p.Frame)
	}
	return Report{
		Duration: h.engine.Duration(),
		Clips:    h.reg.Snapshot().Clips,
		Frames:   frames,
		Plan:     plan,
	}, nil
}
