package compose

import (
	"context"
	"fmt"

	"github.com/roach88/framescript/internal/anim"
	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/clip"
	"github.com/roach88/framescript/internal/media"
	"github.com/roach88/framescript/internal/voice"
)

// leaf supplies the no-op parts of instance for nodes without a window.
type leaf struct{}

func (leaf) declaredStart() int { return 0 }

func (leaf) extent() int { return 0 }

func (leaf) duration() int { return 0 }

func (leaf) measure(context.Context, *Engine) (bool, error) { return false, nil }

func (leaf) place(*Engine, clip.Parent, int) error { return nil }

func (leaf) render(*Engine, renderCtx, *Frame) {}

func (leaf) unmount(*Engine) {}

// mediaInst is a mounted Sound or Video.
//
// It reports its trimmed length to the enclosing clip and contributes one
// audio segment covering min(clip window, trimmed length). Outside any
// clip it contributes nothing.
type mediaInst struct {
	leaf
	id   string
	src  audioplan.Source
	trim *media.Trim

	measured  bool
	resolved  media.ResolvedTrim
	available int
}

func newMedia(id string, kind audioplan.SourceKind, path string, trim *media.Trim) *mediaInst {
	return &mediaInst{
		id:   id,
		src:  audioplan.Source{Kind: kind, Path: path},
		trim: trim,
	}
}

func (m *mediaInst) measure(ctx context.Context, e *Engine) (bool, error) {
	raw := 0
	if e.lengths != nil {
		raw = e.lengths.Frames(ctx, m.src)
	}
	resolved := m.trim.Resolve(raw)
	available := resolved.Available(raw)
	changed := !m.measured || available != m.available || resolved != m.resolved
	m.measured = true
	m.resolved = resolved
	m.available = available
	return changed, nil
}

func (m *mediaInst) duration() int {
	return m.available
}

func (m *mediaInst) place(e *Engine, parent clip.Parent, _ int) error {
	if parent.ID == "" {
		e.agg.Unregister(m.id)
		return nil
	}
	e.agg.Place(m.id, m.src, parent.Window, m.resolved.StartFrames, m.available)
	return nil
}

func (m *mediaInst) render(_ *Engine, rc renderCtx, out *Frame) {
	if m.src.Kind != audioplan.SourceVideo || !rc.inClip {
		return
	}
	out.Videos = append(out.Videos, VideoFrame{
		Path:        m.src.Path,
		SourceFrame: rc.local + m.resolved.StartFrames,
	})
}

func (m *mediaInst) unmount(e *Engine) {
	e.agg.Unregister(m.id)
}

// voiceInst is a mounted Voice. sound is nil when the line has no
// generated audio, in which case it renders nothing.
type voiceInst struct {
	leaf
	sound       *mediaInst
	subtitle    voice.Subtitle
	hasSubtitle bool
}

func (v *voiceInst) measure(ctx context.Context, e *Engine) (bool, error) {
	if v.sound == nil {
		return false, nil
	}
	return v.sound.measure(ctx, e)
}

func (v *voiceInst) duration() int {
	if v.sound == nil {
		return 0
	}
	return v.sound.duration()
}

func (v *voiceInst) place(e *Engine, parent clip.Parent, start int) error {
	if v.sound == nil {
		return nil
	}
	return v.sound.place(e, parent, start)
}

func (v *voiceInst) render(_ *Engine, _ renderCtx, out *Frame) {
	if v.sound != nil && v.hasSubtitle {
		out.Subtitles = append(out.Subtitles, v.subtitle)
	}
}

func (v *voiceInst) unmount(e *Engine) {
	if v.sound != nil {
		v.sound.unmount(e)
	}
}

// animInst is a mounted Animate. It reports the traced duration.
type animInst struct {
	leaf
	name string
	anim *anim.Animation
	deps []any
	dur  int
}

func (a *animInst) measure(_ context.Context, _ *Engine) (bool, error) {
	if _, err := a.anim.SetDeps(a.deps...); err != nil {
		return false, fmt.Errorf("animation %q: %w", a.name, err)
	}
	d := a.anim.Duration()
	if d == a.dur {
		return false, nil
	}
	a.dur = d
	return true, nil
}

func (a *animInst) duration() int {
	return a.anim.Duration()
}

func (a *animInst) unmount(_ *Engine) {
	a.anim.Unmount()
}

// sampleInst is a mounted Sample.
type sampleInst struct {
	leaf
	variable *anim.Variable
	label    string
}

func (s *sampleInst) render(_ *Engine, rc renderCtx, out *Frame) {
	out.Values = append(out.Values, SampledValue{
		Variable: s.variable.ID(),
		Label:    s.label,
		Local:    rc.local,
		Value:    s.variable.Get(rc.local),
	})
}
