package timeline

// ClipNode is the resolved descriptor of one mounted clip.
//
// AbsoluteStart and AbsoluteEnd are inclusive project frames, already clamped
// to the parent's window. Clips without a span are never registered.
type ClipNode struct {
	ID            string `json:"id"`
	AbsoluteStart int    `json:"absolute_start"`
	AbsoluteEnd   int    `json:"absolute_end"`
	Depth         int    `json:"depth"`
	ParentID      string `json:"parent_id,omitempty"`
	LaneID        string `json:"lane_id,omitempty"`
	Label         string `json:"label,omitempty"`
}

// Span returns the number of frames covered by the node.
func (n ClipNode) Span() int {
	return n.AbsoluteEnd - n.AbsoluteStart + 1
}

// Contains reports whether frame lies inside the node's window.
func (n ClipNode) Contains(frame int) bool {
	return frame >= n.AbsoluteStart && frame <= n.AbsoluteEnd
}
