package timeline

import "maps"

// Snapshot is an immutable view of a registry.
//
// Clips are in registration order; a re-registered id moves to the end.
// Snapshots returned by a Registry must not be modified.
type Snapshot struct {
	Version uint64          `json:"version"`
	Clips   []ClipNode      `json:"clips"`
	Hidden  map[string]bool `json:"hidden"`

	index map[string]int
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Clips:  []ClipNode{},
		Hidden: map[string]bool{},
		index:  map[string]int{},
	}
}

// Clip looks up a node by id.
func (s Snapshot) Clip(id string) (ClipNode, bool) {
	i, ok := s.index[id]
	if !ok {
		return ClipNode{}, false
	}
	return s.Clips[i], true
}

// Visible reports whether id and all of its registered ancestors are not
// hidden. The walk stops at the first id that is not registered, and at a
// repeated id so a malformed chain cannot loop.
func (s Snapshot) Visible(id string) bool {
	seen := make(map[string]struct{}, 8)
	cursor := id
	for cursor != "" {
		if s.Hidden[cursor] {
			return false
		}
		if _, dup := seen[cursor]; dup {
			return true
		}
		seen[cursor] = struct{}{}

		node, ok := s.Clip(cursor)
		if !ok {
			return true
		}
		cursor = node.ParentID
	}
	return true
}

// withClip returns a copy with node registered (replacing any prior entry).
func (s Snapshot) withClip(node ClipNode) Snapshot {
	clips := make([]ClipNode, 0, len(s.Clips)+1)
	for _, c := range s.Clips {
		if c.ID != node.ID {
			clips = append(clips, c)
		}
	}
	clips = append(clips, node)
	return s.rebuild(clips, s.Hidden)
}

// withoutClip returns a copy with id and its hidden flag removed.
func (s Snapshot) withoutClip(id string) Snapshot {
	clips := make([]ClipNode, 0, len(s.Clips))
	for _, c := range s.Clips {
		if c.ID != id {
			clips = append(clips, c)
		}
	}
	hidden := s.Hidden
	if hidden[id] {
		hidden = maps.Clone(s.Hidden)
		delete(hidden, id)
	}
	return s.rebuild(clips, hidden)
}

// withHidden returns a copy with the hidden flag for id set or cleared.
func (s Snapshot) withHidden(id string, hidden bool) Snapshot {
	next := maps.Clone(s.Hidden)
	if hidden {
		next[id] = true
	} else {
		delete(next, id)
	}
	return s.rebuild(s.Clips, next)
}

func (s Snapshot) rebuild(clips []ClipNode, hidden map[string]bool) Snapshot {
	index := make(map[string]int, len(clips))
	for i, c := range clips {
		index[c.ID] = i
	}
	return Snapshot{
		Version: s.Version + 1,
		Clips:   clips,
		Hidden:  hidden,
		index:   index,
	}
}
