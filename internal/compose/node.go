package compose

import (
	"fmt"

	"github.com/roach88/framescript/internal/anim"
	"github.com/roach88/framescript/internal/media"
	"github.com/roach88/framescript/internal/voice"
)

// Node is an element of a composition tree. The set of node types is
// closed.
type Node interface {
	nodeKind() string
}

// Clip owns a window of frames starting at Start, relative to its parent
// clip. It lasts Duration frames, or as long as its longest child reports
// when Duration is 0. The window is never shorter than one frame.
type Clip struct {
	Label    string
	Lane     string
	Start    int
	Duration int
	Children []Node
}

// Static is a clip with a fixed inclusive range. It ignores the durations
// its children report.
type Static struct {
	Label    string
	Lane     string
	Start    int
	End      int
	Children []Node
}

// Sequence places its children back-to-back on one lane, starting at
// Start. Children must be Clips or Sequences.
type Sequence struct {
	Start    int
	Children []Node
}

// Serial repositions fixed ranges back-to-back on one lane.
type Serial struct {
	Children []*Static
}

// Animate runs Script once per mount, or again whenever Deps change.
type Animate struct {
	Name   string
	Script Script
	Deps   []any
}

// Sample reports a variable's value at the enclosing clip's local frame.
type Sample struct {
	Variable string
	Label    string
}

// Sound plays an audio file.
type Sound struct {
	Path string
	Trim *media.Trim
}

// Video shows a video file and contributes its audio track.
type Video struct {
	Path string
	Trim *media.Trim
}

// Voice plays a pre-generated spoken line and shows it as a subtitle.
type Voice struct {
	Text     string
	Speaker  int // 0 means voice.DefaultSpeaker
	Params   voice.Params
	Subtitle voice.SubtitleOption
}

func (*Clip) nodeKind() string     { return "clip" }
func (*Static) nodeKind() string   { return "static" }
func (*Sequence) nodeKind() string { return "sequence" }
func (*Serial) nodeKind() string   { return "serial" }
func (*Animate) nodeKind() string  { return "animate" }
func (*Sample) nodeKind() string   { return "sample" }
func (*Sound) nodeKind() string    { return "sound" }
func (*Video) nodeKind() string    { return "video" }
func (*Voice) nodeKind() string    { return "voice" }

// VariableDecl declares an animated variable shared by the whole tree.
type VariableDecl struct {
	Name    string
	Initial anim.Value
}

// Composition is a mountable tree.
type Composition struct {
	Variables []VariableDecl
	Nodes     []Node
}

// Vars gives scripts access to the composition's variables.
type Vars map[string]*anim.Variable

// Get returns the named variable.
func (v Vars) Get(name string) (*anim.Variable, error) {
	variable, ok := v[name]
	if !ok {
		return nil, fmt.Errorf("unknown variable %q", name)
	}
	return variable, nil
}

// Script describes an animation against the composition's variables.
type Script func(tr *anim.Trace, vars Vars) error
