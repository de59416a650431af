package compose

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/framescript/internal/anim"
	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/clip"
	"github.com/roach88/framescript/internal/layout"
	"github.com/roach88/framescript/internal/voice"
)

// instance is a mounted node.
type instance interface {
	// measure refreshes what the instance reports to its enclosing clip or
	// sequence, and whether that or anything below it changed.
	measure(ctx context.Context, e *Engine) (bool, error)
	// duration is the last measured report.
	duration() int
	// place resolves the instance under parent. start replaces the
	// declared start when a sequence positions the instance.
	place(e *Engine, parent clip.Parent, start int) error
	declaredStart() int
	// extent is one past the last absolute frame the instance covers.
	extent() int
	render(e *Engine, rc renderCtx, out *Frame)
	unmount(e *Engine)
}

// renderCtx carries what leaves need from their enclosing clip.
type renderCtx struct {
	local  int
	inClip bool
}

type builder struct {
	e *Engine
}

func (b *builder) nodes(nodes []Node, lane string) ([]instance, error) {
	out := make([]instance, 0, len(nodes))
	for i, n := range nodes {
		in, err := b.node(n, lane)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		out = append(out, in)
	}
	return out, nil
}

// node builds n. lane, when set, overrides a clip's own lane.
func (b *builder) node(n Node, lane string) (instance, error) {
	e := b.e
	switch n := n.(type) {
	case *Clip:
		if lane == "" {
			lane = n.Lane
		}
		return b.clip(n.Label, lane, n.Start, n.Children, func(c *clipInst) {
			c.explicit = max(0, n.Duration)
		})
	case *Static:
		if lane == "" {
			lane = n.Lane
		}
		return b.clip(n.Label, lane, n.Start, n.Children, func(c *clipInst) {
			c.static = true
			c.end = n.End
		})
	case *Sequence:
		return b.sequence(n)
	case *Serial:
		return b.serial(n)
	case *Animate:
		if n.Script == nil {
			return nil, fmt.Errorf("animate %q: script is required", n.Name)
		}
		return b.animate(n), nil
	case *Sample:
		v, err := e.vars.Get(n.Variable)
		if err != nil {
			return nil, fmt.Errorf("sample: %w", err)
		}
		return &sampleInst{variable: v, label: n.Label}, nil
	case *Sound:
		if n.Path == "" {
			return nil, errors.New("sound: path is required")
		}
		return newMedia(e.ids.Generate(), audioplan.SourceSound, n.Path, n.Trim), nil
	case *Video:
		if n.Path == "" {
			return nil, errors.New("video: path is required")
		}
		return newMedia(e.ids.Generate(), audioplan.SourceVideo, n.Path, n.Trim), nil
	case *Voice:
		if n.Text == "" {
			return nil, errors.New("voice: text is required")
		}
		return b.voice(n), nil
	case nil:
		return nil, errors.New("nil node")
	default:
		return nil, fmt.Errorf("unsupported node %s", n.nodeKind())
	}
}

func (b *builder) clip(label, lane string, start int, children []Node, configure func(*clipInst)) (*clipInst, error) {
	c := &clipInst{
		label: label,
		start: start,
		lane:  lane,
		mount: clip.NewMount(b.e.reg, b.e.ids.Generate(), label, lane),
	}
	configure(c)
	kids, err := b.nodes(children, "")
	if err != nil {
		return nil, fmt.Errorf("clip %q: %w", label, err)
	}
	c.children = kids
	return c, nil
}

func (b *builder) sequence(n *Sequence) (*seqInst, error) {
	lane := b.e.ids.Generate()
	s := &seqInst{start: n.Start}
	items := make([]layout.Item, 0, len(n.Children))
	for i, child := range n.Children {
		key := strconv.Itoa(i)
		fallback := 0
		switch child := child.(type) {
		case *Clip:
			fallback = max(0, child.Duration)
		case *Sequence:
		default:
			if child == nil {
				return nil, fmt.Errorf("sequence: child %d is nil", i)
			}
			return nil, fmt.Errorf("sequence: child %d is a %s, want clip or sequence", i, child.nodeKind())
		}
		in, err := b.node(child, lane)
		if err != nil {
			return nil, fmt.Errorf("sequence: child %d: %w", i, err)
		}
		s.children = append(s.children, in)
		s.keys = append(s.keys, key)
		items = append(items, layout.Item{Key: key, Duration: fallback})
	}
	s.seq = layout.NewSequence(0, items...)
	return s, nil
}

func (b *builder) serial(n *Serial) (*serialInst, error) {
	lane := b.e.ids.Generate()
	ranges := make([]clip.Decl, len(n.Children))
	for i, st := range n.Children {
		if st == nil {
			return nil, fmt.Errorf("serial: child %d is nil", i)
		}
		ranges[i] = clip.Span(st.Start, st.End)
	}
	placed := layout.Serial(ranges)

	s := &serialInst{}
	for i, st := range n.Children {
		moved := *st
		moved.Start = placed[i].Start
		moved.End = placed[i].End
		in, err := b.node(&moved, lane)
		if err != nil {
			return nil, fmt.Errorf("serial: child %d: %w", i, err)
		}
		s.children = append(s.children, in)
	}
	return s, nil
}

func (b *builder) animate(n *Animate) *animInst {
	e := b.e
	opts := []anim.Option{anim.WithDevMode(e.dev), anim.WithLogger(e.logger)}
	if e.arena != nil {
		opts = append(opts, anim.WithArena(e.arena))
	}
	vars := e.vars
	script := n.Script
	a := anim.NewAnimation(func(tr *anim.Trace) error {
		return script(tr, vars)
	}, opts...)
	return &animInst{name: n.Name, anim: a, deps: n.Deps}
}

func (b *builder) voice(n *Voice) *voiceInst {
	e := b.e
	speaker := n.Speaker
	if speaker == 0 {
		speaker = voice.DefaultSpeaker
	}
	e.lines = append(e.lines, voice.Line{Text: n.Text, SpeakerID: speaker, Params: n.Params})

	entry, ok := e.voices.Lookup(voice.Key(n.Text, speaker, n.Params))
	if !ok {
		e.logger.Error("voice: audio not found, generate voices first", "text", n.Text, "speaker", speaker)
		return &voiceInst{}
	}
	v := &voiceInst{
		sound: newMedia(e.ids.Generate(), audioplan.SourceSound, voice.AudioPath(e.voiceDir, entry.ID), nil),
	}
	v.subtitle, v.hasSubtitle = n.Subtitle.Resolve(n.Text)
	return v
}

// clipInst is a mounted Clip or Static.
type clipInst struct {
	label    string
	start    int
	lane     string
	effLane  string
	explicit int
	static   bool
	end      int

	mount    *clip.Mount
	frames   int
	children []instance
}

func (c *clipInst) measure(ctx context.Context, e *Engine) (bool, error) {
	changed := false
	content := 0
	for _, in := range c.children {
		ch, err := in.measure(ctx, e)
		if err != nil {
			return false, err
		}
		changed = changed || ch
		if d := in.duration(); d > 0 {
			content = max(content, in.declaredStart()+d)
		}
	}
	if c.static {
		return changed, nil
	}
	frames := content
	if c.explicit > 0 {
		frames = c.explicit
	}
	if frames != c.frames {
		c.frames = frames
		changed = true
	}
	return changed, nil
}

func (c *clipInst) duration() int {
	if c.static {
		return 0
	}
	return c.frames
}

func (c *clipInst) declaredStart() int {
	return c.start
}

func (c *clipInst) decl(start int) clip.Decl {
	if c.static {
		return clip.Span(c.start, c.end)
	}
	return clip.For(start, max(1, c.frames))
}

func (c *clipInst) place(e *Engine, parent clip.Parent, start int) error {
	r, err := c.mount.Update(c.decl(start), parent)
	if err != nil {
		return fmt.Errorf("clip %s: %w", c.mount.ID(), err)
	}
	c.effLane = c.lane
	if c.effLane == "" {
		c.effLane = parent.LaneID
	}
	child := r.Child(c.mount.ID(), c.effLane)
	for _, in := range c.children {
		if err := in.place(e, child, in.declaredStart()); err != nil {
			return err
		}
	}
	return nil
}

func (c *clipInst) extent() int {
	r := c.mount.Resolved()
	if !r.HasSpan() || r.Window.End == clip.Unbounded {
		return 0
	}
	return r.Window.End + 1
}

func (c *clipInst) render(e *Engine, _ renderCtx, out *Frame) {
	f := e.clock.Current()
	if !c.mount.Active(f) {
		return
	}
	r := c.mount.Resolved()
	local := e.clock.Local(r.Window.Start)
	out.Clips = append(out.Clips, ActiveClip{
		ID:    c.mount.ID(),
		Label: c.label,
		Lane:  c.effLane,
		Depth: r.Depth,
		Local: local,
	})
	inner := renderCtx{local: local, inClip: true}
	for _, in := range c.children {
		in.render(e, inner, out)
	}
}

func (c *clipInst) unmount(e *Engine) {
	for _, in := range c.children {
		in.unmount(e)
	}
	c.mount.Unmount()
}

// seqInst is a mounted Sequence.
type seqInst struct {
	start    int
	keys     []string
	seq      *layout.Sequence
	children []instance
}

func (s *seqInst) measure(ctx context.Context, e *Engine) (bool, error) {
	changed := false
	for i, in := range s.children {
		ch, err := in.measure(ctx, e)
		if err != nil {
			return false, err
		}
		if s.seq.Report(s.keys[i], in.duration()) {
			ch = true
		}
		changed = changed || ch
	}
	return changed, nil
}

func (s *seqInst) duration() int      { return s.seq.Total() }
func (s *seqInst) declaredStart() int { return s.start }

func (s *seqInst) place(e *Engine, parent clip.Parent, start int) error {
	for i, p := range s.seq.Layout() {
		if err := s.children[i].place(e, parent, start+p.Start); err != nil {
			return err
		}
	}
	return nil
}

func (s *seqInst) extent() int {
	return maxExtent(s.children)
}

func (s *seqInst) render(e *Engine, rc renderCtx, out *Frame) {
	for _, in := range s.children {
		in.render(e, rc, out)
	}
}

func (s *seqInst) unmount(e *Engine) {
	for _, in := range s.children {
		in.unmount(e)
	}
}

// serialInst is a mounted Serial. Its children already carry their
// repositioned ranges.
type serialInst struct {
	children []instance
}

func (s *serialInst) measure(ctx context.Context, e *Engine) (bool, error) {
	changed := false
	for _, in := range s.children {
		ch, err := in.measure(ctx, e)
		if err != nil {
			return false, err
		}
		changed = changed || ch
	}
	return changed, nil
}

func (s *serialInst) duration() int      { return 0 }
func (s *serialInst) declaredStart() int { return 0 }

func (s *serialInst) place(e *Engine, parent clip.Parent, _ int) error {
	for _, in := range s.children {
		if err := in.place(e, parent, in.declaredStart()); err != nil {
			return err
		}
	}
	return nil
}

func (s *serialInst) extent() int {
	return maxExtent(s.children)
}

func (s *serialInst) render(e *Engine, rc renderCtx, out *Frame) {
	for _, in := range s.children {
		in.render(e, rc, out)
	}
}

func (s *serialInst) unmount(e *Engine) {
	for _, in := range s.children {
		in.unmount(e)
	}
}

func maxExtent(children []instance) int {
	ext := 0
	for _, in := range children {
		ext = max(ext, in.extent())
	}
	return ext
}
