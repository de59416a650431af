package frame

import "sync/atomic"

// Clock holds the current frame of a composition.
//
// There is exactly one writer (the playback host or the render loop calling
// Set) and any number of readers. Readers nested under a clip use Local to
// obtain a zero-based frame relative to that clip's absolute start.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	current atomic.Int64
}

// NewClock creates a clock positioned at frame 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock positioned at a specific frame.
// Negative frames are clamped to 0.
func NewClockAt(frame int) *Clock {
	c := &Clock{}
	c.Set(frame)
	return c
}

// Set moves the clock to frame. Negative frames are clamped to 0.
func (c *Clock) Set(frame int) {
	if frame < 0 {
		frame = 0
	}
	c.current.Store(int64(frame))
}

// Current returns the current frame.
func (c *Clock) Current() int {
	return int(c.current.Load())
}

// Local returns the current frame relative to a clip that starts at start.
// The result is negative before the clip starts.
func (c *Clock) Local(start int) int {
	return c.Current() - start
}
