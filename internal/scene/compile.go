package scene

import (
	"fmt"

	"github.com/roach88/framescript/internal/anim"
	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/compose"
	"github.com/roach88/framescript/internal/frame"
)

// Compile converts the scene into a composition. Second-based durations
// are converted with settings.
func (s *Scene) Compile(settings frame.Settings) (compose.Composition, error) {
	var comp compose.Composition
	for _, name := range s.VariableNames() {
		initial, err := anim.ValueOf(s.Variables[name])
		if err != nil {
			return compose.Composition{}, fmt.Errorf("variable %q: %w", name, err)
		}
		comp.Variables = append(comp.Variables, compose.VariableDecl{Name: name, Initial: initial})
	}
	c := compiler{settings: settings}
	comp.Nodes = c.nodes(s.Nodes)
	return comp, nil
}

// Sources returns the sound and video files the scene references, in tree
// order and without repeats. Voice audio is not included.
func (s *Scene) Sources() []audioplan.Source {
	var out []audioplan.Source
	seen := make(map[audioplan.Source]bool)
	var walk func(nodes []NodeSpec)
	add := func(kind audioplan.SourceKind, path string) {
		src := audioplan.Source{Kind: kind, Path: path}
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	walk = func(nodes []NodeSpec) {
		for _, n := range nodes {
			switch {
			case n.Clip != nil:
				walk(n.Clip.Children)
			case n.Static != nil:
				walk(n.Static.Children)
			case n.Sequence != nil:
				walk(n.Sequence.Children)
			case n.Serial != nil:
				for _, st := range n.Serial {
					walk(st.Children)
				}
			case n.Sound != nil:
				add(audioplan.SourceSound, n.Sound.Path)
			case n.Video != nil:
				add(audioplan.SourceVideo, n.Video.Path)
			}
		}
	}
	walk(s.Nodes)
	return out
}

type compiler struct {
	settings frame.Settings
}

func (c compiler) nodes(specs []NodeSpec) []compose.Node {
	out := make([]compose.Node, 0, len(specs))
	for _, n := range specs {
		out = append(out, c.node(n))
	}
	return out
}

func (c compiler) node(n NodeSpec) compose.Node {
	switch {
	case n.Clip != nil:
		duration := n.Clip.Duration
		if n.Clip.Seconds > 0 {
			duration = c.settings.Seconds(n.Clip.Seconds)
		}
		return &compose.Clip{
			Label:    n.Clip.Label,
			Lane:     n.Clip.Lane,
			Start:    n.Clip.Start,
			Duration: duration,
			Children: c.nodes(n.Clip.Children),
		}
	case n.Static != nil:
		return c.static(*n.Static)
	case n.Sequence != nil:
		return &compose.Sequence{Start: n.Sequence.Start, Children: c.nodes(n.Sequence.Children)}
	case n.Serial != nil:
		serial := &compose.Serial{}
		for _, st := range n.Serial {
			serial.Children = append(serial.Children, c.static(st))
		}
		return serial
	case n.Animate != nil:
		return &compose.Animate{Name: n.Animate.Name, Script: c.script(n.Animate.Script)}
	case n.Sample != nil:
		return &compose.Sample{Variable: n.Sample.Variable, Label: n.Sample.Label}
	case n.Sound != nil:
		return &compose.Sound{Path: n.Sound.Path, Trim: n.Sound.Trim()}
	case n.Video != nil:
		return &compose.Video{Path: n.Video.Path, Trim: n.Video.Trim}
	case n.Voice != nil:
		return &compose.Voice{
			Text:     n.Voice.Text,
			Speaker:  n.Voice.Speaker,
			Params:   n.Voice.Params,
			Subtitle: n.Voice.Subtitle,
		}
	}
	return nil
}

func (c compiler) static(st StaticSpec) *compose.Static {
	return &compose.Static{
		Label:    st.Label,
		Lane:     st.Lane,
		Start:    st.Start,
		End:      st.End,
		Children: c.nodes(st.Children),
	}
}

func (c compiler) script(ins []Instruction) compose.Script {
	return func(tr *anim.Trace, vars compose.Vars) error {
		for i, in := range ins {
			h, err := c.step(tr, vars, in)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			if in.Move != nil && in.Move.Await != nil && !*in.Move.Await {
				continue
			}
			h.Await()
		}
		return nil
	}
}

// step starts in and returns its handle without awaiting it.
func (c compiler) step(tr *anim.Trace, vars compose.Vars, in Instruction) (*anim.Handle, error) {
	switch {
	case in.Sleep != nil:
		return tr.Sleep(in.Sleep.In(c.settings)), nil
	case in.Move != nil:
		m := in.Move
		v, err := vars.Get(m.Var)
		if err != nil {
			return nil, err
		}
		to, err := anim.ValueOf(m.To)
		if err != nil {
			return nil, fmt.Errorf("move %s: %w", m.Var, err)
		}
		easing, ok := anim.EasingByName(m.Easing)
		if !ok {
			return nil, fmt.Errorf("move %s: unknown easing %q", m.Var, m.Easing)
		}
		frames := m.Frames
		if m.Seconds > 0 {
			frames = c.settings.Seconds(m.Seconds)
		}
		return tr.Move(v).To(to, frames, easing), nil
	case in.Parallel != nil:
		handles := make([]*anim.Handle, 0, len(in.Parallel))
		for _, branch := range in.Parallel {
			h, err := c.step(tr, vars, branch)
			if err != nil {
				return nil, err
			}
			handles = append(handles, h)
		}
		return tr.Parallel(handles...), nil
	}
	return tr.Sleep(0), nil
}
