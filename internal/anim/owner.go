package anim

import "sync/atomic"

// OwnerID identifies one run of one Animation. Zero means unowned.
type OwnerID uint64

// Arena hands out owner ids. Ids increase monotonically and are never
// reused, so a stale id can never match a live claim.
//
// Thread-safety: Arena is safe for concurrent use.
type Arena struct {
	next atomic.Uint64
}

// NewArena creates an arena whose first id is 1.
func NewArena() *Arena {
	return &Arena{}
}

// Allocate returns a fresh owner id.
func (a *Arena) Allocate() OwnerID {
	return OwnerID(a.next.Add(1))
}

var defaultArena = NewArena()
