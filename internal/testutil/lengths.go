package testutil

import (
	"context"
	"sync"

	"github.com/roach88/framescript/internal/audioplan"
)

// Lengths reports fixed source lengths in frames, keyed by path, and
// counts lookups. Unknown paths report 0.
//
// Implements compose.Lengths without probing anything.
type Lengths struct {
	mu      sync.Mutex
	frames  map[string]int
	lookups map[string]int
}

// NewLengths creates Lengths from a path to frames map.
func NewLengths(frames map[string]int) *Lengths {
	l := &Lengths{frames: make(map[string]int, len(frames)), lookups: map[string]int{}}
	for path, n := range frames {
		l.frames[path] = n
	}
	return l
}

// Frames returns the configured length of src.
func (l *Lengths) Frames(_ context.Context, src audioplan.Source) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lookups[src.Path]++
	return l.frames[src.Path]
}

// Set changes the length of path, simulating a file edited on disk.
func (l *Lengths) Set(path string, frames int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames[path] = frames
}

// Lookups returns how many times path was asked for.
func (l *Lengths) Lookups(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookups[path]
}
