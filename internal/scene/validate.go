package scene

import (
	"errors"
	"fmt"

	"github.com/roach88/framescript/internal/anim"
)

// ValidationError is one problem found in a scene, located by a path
// such as nodes[0].clip.children[2].
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks the tree's structure and references. All problems are
// reported, joined.
func (s *Scene) Validate() error {
	v := &validator{vars: make(map[string]bool, len(s.Variables))}
	for _, name := range s.VariableNames() {
		v.vars[name] = true
		if _, err := anim.ValueOf(s.Variables[name]); err != nil {
			v.add("variables."+name, err.Error())
		}
	}
	if len(s.Nodes) == 0 {
		v.add("nodes", "at least one node is required")
	}
	v.nodes("nodes", s.Nodes)
	return errors.Join(v.errs...)
}

type validator struct {
	vars map[string]bool
	errs []error
}

func (v *validator) add(path, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) nodes(path string, nodes []NodeSpec) {
	for i, n := range nodes {
		v.node(fmt.Sprintf("%s[%d]", path, i), n)
	}
}

// kind returns the name of the set field and how many fields are set.
func (n NodeSpec) kind() (string, int) {
	name, count := "", 0
	set := func(ok bool, k string) {
		if ok {
			name = k
			count++
		}
	}
	set(n.Clip != nil, "clip")
	set(n.Static != nil, "static")
	set(n.Sequence != nil, "sequence")
	set(n.Serial != nil, "serial")
	set(n.Animate != nil, "animate")
	set(n.Sample != nil, "sample")
	set(n.Sound != nil, "sound")
	set(n.Video != nil, "video")
	set(n.Voice != nil, "voice")
	return name, count
}

func (v *validator) node(path string, n NodeSpec) {
	kind, count := n.kind()
	if count != 1 {
		v.add(path, "exactly one node kind must be set, got %d", count)
		return
	}
	path += "." + kind

	switch {
	case n.Clip != nil:
		if n.Clip.Duration < 0 || n.Clip.Seconds < 0 {
			v.add(path, "duration must not be negative")
		}
		v.nodes(path+".children", n.Clip.Children)
	case n.Static != nil:
		v.nodes(path+".children", n.Static.Children)
	case n.Sequence != nil:
		for i, child := range n.Sequence.Children {
			if child.Clip == nil && child.Sequence == nil {
				v.add(fmt.Sprintf("%s.children[%d]", path, i), "sequence children must be clip or sequence")
			}
		}
		v.nodes(path+".children", n.Sequence.Children)
	case n.Serial != nil:
		if len(n.Serial) == 0 {
			v.add(path, "at least one static is required")
		}
		for i, st := range n.Serial {
			v.nodes(fmt.Sprintf("%s[%d].children", path, i), st.Children)
		}
	case n.Animate != nil:
		if len(n.Animate.Script) == 0 {
			v.add(path, "script is required")
		}
		v.instructions(path+".script", n.Animate.Script)
	case n.Sample != nil:
		if !v.vars[n.Sample.Variable] {
			v.add(path, "unknown variable %q", n.Sample.Variable)
		}
	case n.Sound != nil:
		if n.Sound.Path == "" {
			v.add(path, "path is required")
		}
	case n.Video != nil:
		if n.Video.Path == "" {
			v.add(path, "path is required")
		}
	case n.Voice != nil:
		if n.Voice.Text == "" {
			v.add(path, "text is required")
		}
		if n.Voice.Speaker < 0 {
			v.add(path, "speaker must not be negative")
		}
	}
}

func (v *validator) instructions(path string, ins []Instruction) {
	for i, in := range ins {
		v.instruction(fmt.Sprintf("%s[%d]", path, i), in)
	}
}

func (v *validator) instruction(path string, in Instruction) {
	count := 0
	for _, set := range []bool{in.Sleep != nil, in.Move != nil, in.Parallel != nil} {
		if set {
			count++
		}
	}
	if count != 1 {
		v.add(path, "exactly one of sleep, move, parallel must be set, got %d", count)
		return
	}

	switch {
	case in.Move != nil:
		m := in.Move
		path += ".move"
		if !v.vars[m.Var] {
			v.add(path, "unknown variable %q", m.Var)
		}
		if _, err := anim.ValueOf(m.To); err != nil {
			v.add(path, "to: %v", err)
		}
		if m.Frames < 0 || m.Seconds < 0 {
			v.add(path, "duration must not be negative")
		}
		if _, ok := anim.EasingByName(m.Easing); !ok {
			v.add(path, "unknown easing %q", m.Easing)
		}
	case in.Parallel != nil:
		if len(in.Parallel) == 0 {
			v.add(path+".parallel", "at least one branch is required")
		}
		v.instructions(path+".parallel", in.Parallel)
	}
}
