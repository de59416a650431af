package clip

import (
	"github.com/roach88/framescript/internal/timeline"
)

// Mount ties one clip instance to a registry.
//
// Update resolves the clip and registers, supersedes, or removes its
// ClipNode as the window changes. Unmount removes it for good.
type Mount struct {
	id     string
	label  string
	laneID string
	reg    timeline.Registrar

	resolved   Resolved
	registered bool
	node       timeline.ClipNode
}

// NewMount creates a mount for clip id writing to reg.
func NewMount(reg timeline.Registrar, id, label, laneID string) *Mount {
	return &Mount{
		id:     id,
		label:  label,
		laneID: laneID,
		reg:    reg,
	}
}

// ID returns the clip id.
func (m *Mount) ID() string {
	return m.id
}

// Resolved returns the most recent resolution.
func (m *Mount) Resolved() Resolved {
	return m.resolved
}

// Update resolves d under parent and syncs the registry.
func (m *Mount) Update(d Decl, parent Parent) (Resolved, error) {
	r := Resolve(d, parent)
	m.resolved = r

	if !r.HasSpan() {
		if m.registered {
			m.reg.Unregister(m.id)
			m.registered = false
		}
		return r, nil
	}

	laneID := m.laneID
	if laneID == "" {
		laneID = parent.LaneID
	}
	node := timeline.ClipNode{
		ID:            m.id,
		AbsoluteStart: r.Window.Start,
		AbsoluteEnd:   r.Window.End,
		Depth:         r.Depth,
		ParentID:      parent.ID,
		LaneID:        laneID,
		Label:         m.label,
	}
	if m.registered && node == m.node {
		return r, nil
	}
	if err := m.reg.Register(node); err != nil {
		return r, err
	}
	m.node = node
	m.registered = true
	return r, nil
}

// Active reports whether the clip is showing at frame, consulting the
// registry's visibility cascade.
func (m *Mount) Active(frame int) bool {
	if !m.resolved.HasSpan() {
		return false
	}
	return m.resolved.Active(frame, m.reg.Visible(m.id))
}

// Unmount removes the clip from the registry.
func (m *Mount) Unmount() {
	if m.registered {
		m.reg.Unregister(m.id)
		m.registered = false
	}
}
