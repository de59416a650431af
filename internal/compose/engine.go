package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/framescript/internal/anim"
	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/clip"
	"github.com/roach88/framescript/internal/frame"
	"github.com/roach88/framescript/internal/timeline"
	"github.com/roach88/framescript/internal/voice"
)

// Lengths reports source lengths in project frames, 0 when unknown.
// Implemented by media.Cache.
type Lengths interface {
	Frames(ctx context.Context, src audioplan.Source) int
}

// Engine mounts a Composition and renders frames from it.
type Engine struct {
	mu sync.Mutex

	settings  frame.Settings
	reg       timeline.Registrar
	agg       *audioplan.Aggregator
	lengths   Lengths
	voices    *voice.Map
	voiceDir  string
	ids       IDGenerator
	clock     *frame.Clock
	arena     *anim.Arena
	dev       bool
	maxPasses int
	logger    *slog.Logger

	vars    Vars
	root    []instance
	lines   []voice.Line
	mounted bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRegistry registers clips with reg instead of timeline.Global().
// Pass a *timeline.Scope to isolate a preview.
func WithRegistry(reg timeline.Registrar) EngineOption {
	return func(e *Engine) {
		e.reg = reg
	}
}

// WithAggregator registers audio with agg instead of audioplan.Global().
func WithAggregator(agg *audioplan.Aggregator) EngineOption {
	return func(e *Engine) {
		e.agg = agg
	}
}

// WithLengths sets the source length lookup. Without one every source is
// 0 frames long.
func WithLengths(l Lengths) EngineOption {
	return func(e *Engine) {
		e.lengths = l
	}
}

// WithVoices resolves Voice lines through m, with audio under dir.
func WithVoices(m *voice.Map, dir string) EngineOption {
	return func(e *Engine) {
		e.voices = m
		e.voiceDir = dir
	}
}

// WithIDGenerator names clips, lanes and segments with g.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock renders through clock, so a host can observe the frame.
func WithClock(clock *frame.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithArena allocates animation owners from a.
func WithArena(a *anim.Arena) EngineOption {
	return func(e *Engine) {
		e.arena = a
	}
}

// WithDevMode turns animation misuse into Refresh errors.
func WithDevMode(dev bool) EngineOption {
	return func(e *Engine) {
		e.dev = dev
	}
}

// WithMaxPasses bounds Refresh.
func WithMaxPasses(n int) EngineOption {
	return func(e *Engine) {
		e.maxPasses = n
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine for a project with the given settings.
func New(settings frame.Settings, opts ...EngineOption) *Engine {
	e := &Engine{
		settings:  settings,
		ids:       UUIDv7Generator{},
		clock:     frame.NewClock(),
		voiceDir:  "project/voices",
		maxPasses: DefaultMaxPasses,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reg == nil {
		e.reg = timeline.Global()
	}
	if e.agg == nil {
		e.agg = audioplan.Global()
	}
	return e
}

// Settings returns the project settings.
func (e *Engine) Settings() frame.Settings {
	return e.settings
}

// Registry returns the registrar clips are written to.
func (e *Engine) Registry() timeline.Registrar {
	return e.reg
}

// Aggregator returns the aggregator audio segments are written to.
func (e *Engine) Aggregator() *audioplan.Aggregator {
	return e.agg
}

// Clock returns the engine's frame clock.
func (e *Engine) Clock() *frame.Clock {
	return e.clock
}

// Mount builds comp and lays it out. A previously mounted tree is
// unmounted first.
func (e *Engine) Mount(ctx context.Context, comp Composition) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mounted {
		e.unmountLocked()
	}

	vars, err := e.buildVars(comp.Variables)
	if err != nil {
		return err
	}
	e.vars = vars
	e.lines = nil

	b := &builder{e: e}
	root, err := b.nodes(comp.Nodes, "")
	if err != nil {
		return err
	}
	e.root = root
	e.mounted = true

	e.logger.Debug("composition mounted", "nodes", len(comp.Nodes), "variables", len(vars))
	return e.refreshLocked(ctx)
}

func (e *Engine) buildVars(decls []VariableDecl) (Vars, error) {
	vars := make(Vars, len(decls))
	for _, d := range decls {
		if d.Name == "" {
			return nil, errors.New("variable name is required")
		}
		if d.Initial == nil {
			return nil, fmt.Errorf("variable %q: initial value is required", d.Name)
		}
		if _, dup := vars[d.Name]; dup {
			return nil, fmt.Errorf("variable %q declared twice", d.Name)
		}
		vars[d.Name] = anim.NewVariable(d.Name, d.Initial)
	}
	return vars, nil
}

// Refresh re-measures every duration and re-places every window until
// nothing changes.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refreshLocked(ctx)
}

func (e *Engine) refreshLocked(ctx context.Context) error {
	quota := newPassQuota(e.maxPasses)
	for {
		if err := quota.Check(); err != nil {
			return err
		}
		changed := false
		for _, in := range e.root {
			c, err := in.measure(ctx, e)
			if err != nil {
				return err
			}
			changed = changed || c
		}
		for _, in := range e.root {
			if err := in.place(e, clip.RootParent(), in.declaredStart()); err != nil {
				return err
			}
		}
		if !changed {
			e.logger.Debug("layout settled", "passes", quota.current)
			return nil
		}
	}
}

// Render evaluates the tree at frame. Negative frames render frame 0.
func (e *Engine) Render(f int) Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clock.Set(f)
	out := Frame{Frame: e.clock.Current()}
	rc := renderCtx{local: out.Frame}
	for _, in := range e.root {
		in.render(e, rc, &out)
	}
	return out
}

// Duration returns the number of frames up to the end of the last
// top-level clip.
func (e *Engine) Duration() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := 0
	for _, in := range e.root {
		d = max(d, in.extent())
	}
	return d
}

// Variable returns the named variable of the mounted tree.
func (e *Engine) Variable(name string) (*anim.Variable, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vars[name]
	return v, ok
}

// Lines returns every Voice line seen while mounting, in tree order,
// including lines without generated audio.
func (e *Engine) Lines() []voice.Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]voice.Line(nil), e.lines...)
}

// Unmount removes every clip and segment of the mounted tree and releases
// its animations.
func (e *Engine) Unmount() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unmountLocked()
}

func (e *Engine) unmountLocked() {
	for _, in := range e.root {
		in.unmount(e)
	}
	e.root = nil
	e.vars = nil
	e.mounted = false
}

// Frame is the result of rendering one frame.
type Frame struct {
	Frame     int              `json:"frame"`
	Clips     []ActiveClip     `json:"clips"`
	Values    []SampledValue   `json:"values,omitempty"`
	Subtitles []voice.Subtitle `json:"subtitles,omitempty"`
	Videos    []VideoFrame     `json:"videos,omitempty"`
}

// Labels returns the labels of the active clips, in tree order.
func (f Frame) Labels() []string {
	out := make([]string, 0, len(f.Clips))
	for _, c := range f.Clips {
		out = append(out, c.Label)
	}
	return out
}

// ActiveClip is a clip showing at the rendered frame.
type ActiveClip struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Lane  string `json:"lane,omitempty"`
	Depth int    `json:"depth"`
	Local int    `json:"local"`
}

// SampledValue is a variable read by a Sample node.
type SampledValue struct {
	Variable string     `json:"variable"`
	Label    string     `json:"label,omitempty"`
	Local    int        `json:"local"`
	Value    anim.Value `json:"value"`
}

// VideoFrame is the source frame a visible video shows.
type VideoFrame struct {
	Path        string `json:"path"`
	SourceFrame int    `json:"source_frame"`
}
