package audioplan

import (
	"sync"

	"github.com/roach88/framescript/internal/bus"
	"github.com/roach88/framescript/internal/clip"
)

// Snapshot is an immutable view of an Aggregator.
type Snapshot struct {
	Version  uint64    `json:"version"`
	Segments []Segment `json:"segments"`
}

// Aggregator is a keyed store of Segments.
//
// Segments are kept in registration order; re-registering a changed segment
// moves it to the end. Writes are serialized; every change publishes a new
// Snapshot after it has been installed.
type Aggregator struct {
	mu      sync.Mutex
	current Snapshot
	changes *bus.Topic[Snapshot]
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithChanges publishes on topic instead of a private one.
func WithChanges(topic *bus.Topic[Snapshot]) AggregatorOption {
	return func(a *Aggregator) {
		a.changes = topic
	}
}

// NewAggregator creates an empty aggregator.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		current: Snapshot{Segments: []Segment{}},
		changes: bus.New[Snapshot](),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Changes returns the topic snapshots are published on.
func (a *Aggregator) Changes() *bus.Topic[Snapshot] {
	return a.changes
}

// Snapshot returns the current snapshot.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Segments returns the current segment list. It must not be modified.
func (a *Aggregator) Segments() []Segment {
	return a.Snapshot().Segments
}

// Register stores seg. It returns false, without notifying, when an
// identical segment is already stored under seg.ID.
func (a *Aggregator) Register(seg Segment) bool {
	a.mu.Lock()
	for _, existing := range a.current.Segments {
		if existing.ID == seg.ID && existing == seg {
			a.mu.Unlock()
			return false
		}
	}
	next := make([]Segment, 0, len(a.current.Segments)+1)
	for _, existing := range a.current.Segments {
		if existing.ID != seg.ID {
			next = append(next, existing)
		}
	}
	next = append(next, seg)
	snap := a.install(next)
	a.changes.Enqueue(snap)
	a.mu.Unlock()

	a.changes.Flush()
	return true
}

// Unregister removes id. It returns false, without notifying, when id was
// not stored.
func (a *Aggregator) Unregister(id string) bool {
	a.mu.Lock()
	next := make([]Segment, 0, len(a.current.Segments))
	for _, existing := range a.current.Segments {
		if existing.ID != id {
			next = append(next, existing)
		}
	}
	if len(next) == len(a.current.Segments) {
		a.mu.Unlock()
		return false
	}
	snap := a.install(next)
	a.changes.Enqueue(snap)
	a.mu.Unlock()

	a.changes.Flush()
	return true
}

// Place registers the segment a media leaf contributes, or removes it.
//
// The duration is min(window length, available) where available is the
// source length left after trimming. A non-positive duration removes any
// segment previously stored under id.
func (a *Aggregator) Place(id string, src Source, window clip.Window, sourceStart, available int) bool {
	duration := min(window.Len(), available)
	if duration <= 0 {
		return a.Unregister(id)
	}
	return a.Register(Segment{
		ID:                id,
		Source:            src,
		ProjectStartFrame: window.Start,
		SourceStartFrame:  max(0, sourceStart),
		DurationFrames:    duration,
	})
}

// install must be called with mu held.
func (a *Aggregator) install(segments []Segment) Snapshot {
	a.current = Snapshot{
		Version:  a.current.Version + 1,
		Segments: segments,
	}
	return a.current
}

var (
	globalMu sync.Mutex
	global   = NewAggregator()
)

// Global returns the process-wide aggregator used when no aggregator is
// passed explicitly.
func Global() *Aggregator {
	globalMu.Lock()
	defer globalMu.Unlock()
	return global
}

// ResetGlobal replaces the process-wide aggregator with an empty one and
// returns the previous instance.
func ResetGlobal() *Aggregator {
	globalMu.Lock()
	defer globalMu.Unlock()
	prev := global
	global = NewAggregator()
	return prev
}
