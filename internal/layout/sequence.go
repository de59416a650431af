// Package layout places sibling clips back-to-back on one lane.
//
// Sequence handles children whose durations are only known after their own
// content has been laid out: each child reports a duration and the sequence
// recomputes every start offset. Serial handles children that already carry
// a fixed [start, end] range and only need to be repositioned.
package layout

import "github.com/roach88/framescript/internal/clip"

// Item declares one child of a Sequence. Duration is the fallback used until
// the child reports; 0 means unknown.
type Item struct {
	Key      string
	Duration int
}

// Placement is a child's computed position, relative to the parent's zero.
type Placement struct {
	Key      string
	Start    int
	Duration int
}

// Sequence lays out children in declaration order starting at Start.
type Sequence struct {
	start    int
	items    []Item
	reported map[string]int
	total    int
	onChange []func(total int)
}

// NewSequence creates a sequence starting at start (relative to its parent).
func NewSequence(start int, items ...Item) *Sequence {
	s := &Sequence{
		start:    start,
		items:    append([]Item(nil), items...),
		reported: make(map[string]int, len(items)),
	}
	s.total = s.compute()
	return s
}

// OnChange registers fn to be called whenever the aggregate duration
// changes. Nested sequences use it to report upward.
func (s *Sequence) OnChange(fn func(total int)) {
	s.onChange = append(s.onChange, fn)
}

// Report records a child's duration. Negative values count as 0.
//
// It returns false, and notifies nobody, when the value equals what was
// already recorded for key.
func (s *Sequence) Report(key string, frames int) bool {
	frames = max(0, frames)
	if prev, ok := s.reported[key]; ok && prev == frames {
		return false
	}
	s.reported[key] = frames

	total := s.compute()
	if total != s.total {
		s.total = total
		for _, fn := range s.onChange {
			fn(total)
		}
	}
	return true
}

// Duration returns the duration currently used for key.
func (s *Sequence) Duration(key string) int {
	if d, ok := s.reported[key]; ok {
		return d
	}
	for _, it := range s.items {
		if it.Key == key {
			return max(0, it.Duration)
		}
	}
	return 0
}

// Layout returns every child's placement in declaration order.
func (s *Sequence) Layout() []Placement {
	out := make([]Placement, 0, len(s.items))
	cursor := s.start
	for _, it := range s.items {
		d := s.Duration(it.Key)
		out = append(out, Placement{Key: it.Key, Start: cursor, Duration: d})
		cursor += d
	}
	return out
}

// Total returns cursor - start after the last child.
func (s *Sequence) Total() int {
	return s.total
}

// Start returns the sequence's own start offset.
func (s *Sequence) Start() int {
	return s.start
}

func (s *Sequence) compute() int {
	total := 0
	for _, it := range s.items {
		total += s.Duration(it.Key)
	}
	return total
}

// Serial repositions fixed ranges back-to-back.
//
// Each range keeps its length end - start (clamped at 0). The first range
// keeps its own start; each following range begins one frame after the
// previous range's end.
func Serial(ranges []clip.Decl) []clip.Decl {
	if len(ranges) == 0 {
		return nil
	}
	out := make([]clip.Decl, len(ranges))
	cursor := ranges[0].Start
	for i, r := range ranges {
		length := max(0, r.End-r.Start)
		start := cursor
		out[i] = clip.Span(start, start+length)
		cursor = start + length + 1
	}
	return out
}
