package anim

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// Script describes an animation. It runs once per (re-)mount, to completion.
type Script func(tr *Trace) error

// Animation runs a Script and owns the segments it writes.
type Animation struct {
	script Script
	arena  *Arena
	dev    bool
	logger *slog.Logger

	deps     []any
	hasRun   bool
	owner    OwnerID
	vars     []*Variable
	duration int
	ready    bool
}

// Option configures an Animation.
type Option func(*Animation)

// WithArena allocates owner ids from a instead of the package default.
func WithArena(a *Arena) Option {
	return func(an *Animation) {
		an.arena = a
	}
}

// WithDevMode makes Run return misuse errors instead of only logging them.
func WithDevMode(dev bool) Option {
	return func(an *Animation) {
		an.dev = dev
	}
}

// WithLogger sets the logger used for misuse warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(an *Animation) {
		an.logger = logger
	}
}

// NewAnimation creates an animation for script. Nothing runs until Run or
// SetDeps.
func NewAnimation(script Script, opts ...Option) *Animation {
	a := &Animation{
		script:   script,
		arena:    defaultArena,
		logger:   slog.Default(),
		duration: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Duration returns the frame count of the last completed trace, at least 1.
func (a *Animation) Duration() int {
	return a.duration
}

// Ready reports whether a trace has completed since the last reset.
// Variables must not be sampled before this is true.
func (a *Animation) Ready() bool {
	return a.ready
}

// Owner returns the current owner id, 0 when unmounted.
func (a *Animation) Owner() OwnerID {
	return a.owner
}

// SetDeps runs the script when deps differ from the previous call, or when
// it has never run. It reports whether a run happened.
func (a *Animation) SetDeps(deps ...any) (bool, error) {
	if a.hasRun && reflect.DeepEqual(a.deps, deps) {
		return false, nil
	}
	a.deps = append([]any(nil), deps...)
	return true, a.Run()
}

// Run releases every claim of the previous run, takes a fresh owner id and
// traces the script.
//
// A script error, or a misuse error in development mode, leaves the
// animation not ready.
func (a *Animation) Run() error {
	a.release()
	a.hasRun = true
	a.owner = a.arena.Allocate()
	a.duration = 1
	a.ready = false

	tr := &Trace{anim: a, owner: a.owner}
	if err := a.script(tr); err != nil {
		return fmt.Errorf("animation script (owner=%d): %w", a.owner, err)
	}
	if a.dev && len(tr.errs) > 0 {
		return errors.Join(tr.errs...)
	}

	a.duration = max(1, tr.maxFrame)
	a.ready = true
	return nil
}

// Unmount releases every claim and invalidates the owner id.
func (a *Animation) Unmount() {
	a.release()
	a.owner = 0
	a.ready = false
	a.duration = 1
	a.hasRun = false
	a.deps = nil
}

func (a *Animation) release() {
	for _, v := range a.vars {
		v.release(a.owner)
	}
	a.vars = nil
}
