// Package clip resolves nested clip windows.
//
// A clip is declared relative to its parent's local zero. Resolve turns that
// declaration into an absolute window clamped to the parent's window, and a
// Mount keeps the timeline registry in step with the resolved result.
// Parent windows are passed explicitly; nothing here reads ambient state.
package clip

import "math"

// Unbounded marks a window without an end. Only the root uses it.
const Unbounded = math.MaxInt

// Window is an inclusive absolute frame range. End < Start means empty.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Root returns [0, +inf).
func Root() Window {
	return Window{Start: 0, End: Unbounded}
}

// Empty reports whether the window covers no frames.
func (w Window) Empty() bool {
	return w.End < w.Start
}

// Contains reports whether frame lies inside the window.
func (w Window) Contains(frame int) bool {
	return !w.Empty() && frame >= w.Start && frame <= w.End
}

// Len returns the number of frames in the window, 0 when empty.
func (w Window) Len() int {
	if w.Empty() {
		return 0
	}
	if w.End == Unbounded {
		return Unbounded
	}
	return w.End - w.Start + 1
}

// Parent is what a clip inherits from the clip it is nested in.
type Parent struct {
	Window Window
	Depth  int
	ID     string
	LaneID string
}

// RootParent is the parent of top-level clips: unbounded window, depth -1.
func RootParent() Parent {
	return Parent{Window: Root(), Depth: -1}
}

// Decl is a clip's declared range relative to its parent's start.
type Decl struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Span declares an inclusive [start, end] range.
func Span(start, end int) Decl {
	return Decl{Start: start, End: end}
}

// For declares a range of duration frames beginning at start.
// A duration of 0 or less yields an empty range.
func For(start, duration int) Decl {
	return Decl{Start: start, End: start + duration - 1}
}

// Duration returns End - Start + 1, which may be 0 or negative.
func (d Decl) Duration() int {
	return d.End - d.Start + 1
}
