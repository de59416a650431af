// Package timeline is the registry of resolved clips.
//
// Every clip with a non-empty window publishes a ClipNode here when it
// mounts, supersedes it when its window changes, and removes it when it
// unmounts. A separate hidden-id set records clips the editor has switched
// off. External readers (the studio server, the CLI timeline dump) consume
// immutable Snapshots and subscribe to changes.
//
// ACCESS MODES
//
// A Scope collects the clips mounted under an explicit scope boundary and
// forwards every write to its parent Registry. When no scope is present,
// callers use the process-wide registry returned by Global. Resolve picks
// the scope when one is given, so both modes behave identically.
//
// CONSISTENCY
//
// Writes are serialized by a single-writer mutex. Each write builds a new
// Snapshot, swaps it in, and only then notifies subscribers, so a reader
// never observes a partially applied change.
//
// VISIBILITY
//
// A clip is visible when neither it nor any ancestor is hidden. Visible
// walks the ParentID chain against the hidden set on every call; nothing is
// cached, so toggling a flag is immediately reflected in the whole subtree.
package timeline
