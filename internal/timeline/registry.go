package timeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/framescript/internal/bus"
)

// ErrParentCycle is returned when registering a node would make the
// ParentID chain loop back to the node itself.
var ErrParentCycle = errors.New("parent chain forms a cycle")

// ErrDepthMismatch is returned when a node's depth is not exactly one more
// than its registered parent's depth.
var ErrDepthMismatch = errors.New("depth must be parent depth + 1")

// Registrar is the write and read surface shared by Registry and Scope.
type Registrar interface {
	Register(node ClipNode) error
	Unregister(id string)
	SetVisible(id string, visible bool)
	Visible(id string) bool
	Snapshot() Snapshot
}

// Registry is a keyed store of ClipNodes plus a hidden-id set.
type Registry struct {
	mu      sync.Mutex // single writer
	current Snapshot
	changes *bus.Topic[Snapshot]
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithBus publishes changes on topic instead of a private one.
func WithBus(topic *bus.Topic[Snapshot]) Option {
	return func(r *Registry) {
		r.changes = topic
	}
}

// WithLogger sets the logger used for rejected registrations.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		current: emptySnapshot(),
		changes: bus.New[Snapshot](),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Changes returns the topic snapshots are published on.
func (r *Registry) Changes() *bus.Topic[Snapshot] {
	return r.changes
}

// Snapshot returns the current snapshot.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Register stores node, replacing any node with the same id.
//
// Re-registering an identical node is a no-op and does not notify.
// Registration is rejected when the node's parent chain would loop or its
// depth disagrees with a registered parent.
func (r *Registry) Register(node ClipNode) error {
	r.mu.Lock()
	if err := validate(r.current, node); err != nil {
		r.mu.Unlock()
		r.logger.Warn("clip registration rejected", "id", node.ID, "error", err)
		return err
	}
	if existing, ok := r.current.Clip(node.ID); ok && existing == node {
		r.mu.Unlock()
		return nil
	}
	r.current = r.current.withClip(node)
	snap := r.current
	r.changes.Enqueue(snap)
	r.mu.Unlock()

	r.changes.Flush()
	return nil
}

// Unregister removes id and clears its hidden flag.
// Removing an unknown id does not notify.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	_, registered := r.current.Clip(id)
	if !registered && !r.current.Hidden[id] {
		r.mu.Unlock()
		return
	}
	r.current = r.current.withoutClip(id)
	snap := r.current
	r.changes.Enqueue(snap)
	r.mu.Unlock()

	r.changes.Flush()
}

// SetVisible hides or shows id. The id does not need to be registered yet.
func (r *Registry) SetVisible(id string, visible bool) {
	r.mu.Lock()
	if r.current.Hidden[id] == !visible {
		r.mu.Unlock()
		return
	}
	r.current = r.current.withHidden(id, !visible)
	snap := r.current
	r.changes.Enqueue(snap)
	r.mu.Unlock()

	r.changes.Flush()
}

// Visible reports whether id is visible against the current hidden set.
func (r *Registry) Visible(id string) bool {
	return r.Snapshot().Visible(id)
}

// validate checks node against the parent chain in s.
func validate(s Snapshot, node ClipNode) error {
	if node.ID == "" {
		return errors.New("clip id is required")
	}
	if node.ParentID == "" {
		return nil
	}
	if node.ParentID == node.ID {
		return fmt.Errorf("register %q: %w", node.ID, ErrParentCycle)
	}
	if parent, ok := s.Clip(node.ParentID); ok && parent.Depth+1 != node.Depth {
		return fmt.Errorf("register %q: %w (parent depth %d, got %d)",
			node.ID, ErrDepthMismatch, parent.Depth, node.Depth)
	}

	seen := map[string]struct{}{node.ParentID: {}}
	cursor := node.ParentID
	for {
		parent, ok := s.Clip(cursor)
		if !ok || parent.ParentID == "" {
			return nil
		}
		if parent.ParentID == node.ID {
			return fmt.Errorf("register %q: %w", node.ID, ErrParentCycle)
		}
		if _, dup := seen[parent.ParentID]; dup {
			return nil
		}
		seen[parent.ParentID] = struct{}{}
		cursor = parent.ParentID
	}
}
