package clip

// Resolved is the outcome of resolving a Decl against a Parent.
type Resolved struct {
	// AbsStart and AbsEnd are the unclamped absolute bounds.
	AbsStart int
	AbsEnd   int
	// Window is the clamped window; empty when the clip has no span.
	Window Window
	Depth  int
}

// Resolve maps d into absolute frames under parent and clamps the result to
// the parent's window.
//
// A result with an empty window is valid: the clip is never active and is
// not registered, but its children still resolve (against the empty window,
// so they are empty too).
func Resolve(d Decl, parent Parent) Resolved {
	base := parent.Window.Start
	absStart := base + d.Start
	absEnd := base + d.End

	return Resolved{
		AbsStart: absStart,
		AbsEnd:   absEnd,
		Window: Window{
			Start: max(absStart, base),
			End:   min(absEnd, parent.Window.End),
		},
		Depth: parent.Depth + 1,
	}
}

// HasSpan reports whether the clamped window covers at least one frame.
func (r Resolved) HasSpan() bool {
	return !r.Window.Empty()
}

// Active reports whether the clip is showing at frame.
func (r Resolved) Active(frame int, visible bool) bool {
	return r.HasSpan() && r.Window.Contains(frame) && visible
}

// Local converts an absolute frame into the clip's zero-based frame.
func (r Resolved) Local(frame int) int {
	return frame - r.Window.Start
}

// Child returns the Parent that nested clips resolve against.
func (r Resolved) Child(id, laneID string) Parent {
	return Parent{
		Window: r.Window,
		Depth:  r.Depth,
		ID:     id,
		LaneID: laneID,
	}
}
