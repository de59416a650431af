package scene

import (
	"github.com/roach88/framescript/internal/media"
	"github.com/roach88/framescript/internal/voice"
)

// ClipSpec declares a duration-aware clip. Seconds, when set, replaces
// Duration.
type ClipSpec struct {
	Label    string     `yaml:"label,omitempty"`
	Lane     string     `yaml:"lane,omitempty"`
	Start    int        `yaml:"start,omitempty"`
	Duration int        `yaml:"duration,omitempty"`
	Seconds  float64    `yaml:"seconds,omitempty"`
	Children []NodeSpec `yaml:"children,omitempty"`
}

// StaticSpec declares a clip over the fixed inclusive range [Start, End].
type StaticSpec struct {
	Label    string     `yaml:"label,omitempty"`
	Lane     string     `yaml:"lane,omitempty"`
	Start    int        `yaml:"start"`
	End      int        `yaml:"end"`
	Children []NodeSpec `yaml:"children,omitempty"`
}

// SequenceSpec chains clip and sequence children.
type SequenceSpec struct {
	Start    int        `yaml:"start,omitempty"`
	Children []NodeSpec `yaml:"children"`
}

// AnimateSpec declares an animation script.
type AnimateSpec struct {
	Name   string        `yaml:"name,omitempty"`
	Script []Instruction `yaml:"script"`
}

// SampleSpec reads a variable inside the enclosing clip.
type SampleSpec struct {
	Variable string `yaml:"variable"`
	Label    string `yaml:"label,omitempty"`
}

// SoundSpec plays an audio file, trimmed with trim_start / trim_end or a
// window.
type SoundSpec struct {
	Path      string            `yaml:"path"`
	TrimStart float64           `yaml:"trim_start,omitempty"`
	TrimEnd   float64           `yaml:"trim_end,omitempty"`
	Window    *media.TrimWindow `yaml:"window,omitempty"`
}

// Trim returns the sound's trim, nil when untrimmed.
func (s SoundSpec) Trim() *media.Trim {
	if s.TrimStart == 0 && s.TrimEnd == 0 && s.Window == nil {
		return nil
	}
	return &media.Trim{Start: s.TrimStart, End: s.TrimEnd, Window: s.Window}
}

// VideoSpec shows a video file.
type VideoSpec struct {
	Path string      `yaml:"path"`
	Trim *media.Trim `yaml:"trim,omitempty"`
}

// VoiceSpec plays a generated line.
type VoiceSpec struct {
	Text     string               `yaml:"text"`
	Speaker  int                  `yaml:"speaker,omitempty"`
	Params   voice.Params         `yaml:"params,omitempty"`
	Subtitle voice.SubtitleOption `yaml:"subtitle,omitempty"`
}

// Instruction is one step of an animation script. Exactly one field must
// be set.
//
// At the top level, steps run in order: sleep and move wait for
// themselves to finish (unless a move sets await: false). Inside parallel,
// every branch starts at the same frame and the step finishes when the
// longest branch does.
type Instruction struct {
	Sleep    *Duration     `yaml:"sleep,omitempty"`
	Move     *MoveSpec     `yaml:"move,omitempty"`
	Parallel []Instruction `yaml:"parallel,omitempty"`
}

// MoveSpec tweens a variable to a value.
type MoveSpec struct {
	Var     string  `yaml:"var"`
	To      any     `yaml:"to"`
	Frames  int     `yaml:"frames,omitempty"`
	Seconds float64 `yaml:"seconds,omitempty"`
	Easing  string  `yaml:"easing,omitempty"`
	Await   *bool   `yaml:"await,omitempty"`
}

// Duration is a frame count, or seconds when written with an "s" suffix
// ("1.5s").
type Duration struct {
	Frames  int
	Seconds float64
}
