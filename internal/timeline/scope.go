package timeline

import "github.com/roach88/framescript/internal/bus"

// Scope is a registry bounded to the clips mounted beneath one scope
// boundary.
//
// Clip writes go to the scope's own list and are forwarded to the parent
// registry, so the global view stays complete. The hidden-id set is shared:
// it always lives in the parent, which means hiding a clip through a scope
// hides it everywhere.
type Scope struct {
	local  *Registry
	parent *Registry
}

// NewScope creates a scope forwarding to parent. A nil parent means the
// global registry.
func NewScope(parent *Registry) *Scope {
	if parent == nil {
		parent = Global()
	}
	return &Scope{
		local:  New(),
		parent: parent,
	}
}

// Parent returns the registry the scope forwards to.
func (s *Scope) Parent() *Registry {
	return s.parent
}

// Changes returns the topic the scope's own clip list is published on.
// Hidden-set changes are published on the parent's topic.
func (s *Scope) Changes() *bus.Topic[Snapshot] {
	return s.local.Changes()
}

// Register records node in the scope and in the parent. When the parent
// rejects the node the scope's previous entry for the id is restored.
func (s *Scope) Register(node ClipNode) error {
	prev, had := s.local.Snapshot().Clip(node.ID)
	if err := s.local.Register(node); err != nil {
		return err
	}
	if err := s.parent.Register(node); err != nil {
		if had {
			_ = s.local.Register(prev)
		} else {
			s.local.Unregister(node.ID)
		}
		return err
	}
	return nil
}

// Unregister removes id from the scope and from the parent.
func (s *Scope) Unregister(id string) {
	s.local.Unregister(id)
	s.parent.Unregister(id)
}

// SetVisible toggles id in the parent's hidden set.
func (s *Scope) SetVisible(id string, visible bool) {
	s.parent.SetVisible(id, visible)
}

// Visible walks the scope's clips against the parent's hidden set.
func (s *Scope) Visible(id string) bool {
	return s.Snapshot().Visible(id)
}

// Snapshot returns the scope's clips combined with the parent's hidden set.
func (s *Scope) Snapshot() Snapshot {
	local := s.local.Snapshot()
	local.Hidden = s.parent.Snapshot().Hidden
	return local
}
