// Package compose mounts a composition tree and renders frames from it.
//
// A Composition is a tree of Nodes: clips that own a window of frames,
// sequences that chain clips back-to-back, animations, variable samples
// and media leaves. Engine.Mount turns the tree into live instances that
// register clips with a timeline registry and audio segments with an
// aggregator.
//
// Durations flow bottom-up. Leaves report how long they are (a sound its
// trimmed length, an animation its traced length); a Clip without an
// explicit duration takes the longest report of its children; a Sequence
// sums its children. Windows flow top-down from those durations. Refresh
// repeats measure and placement until no reported duration changes, with
// the number of passes bounded.
//
// Engine.Render evaluates one frame: the active clips, every sampled
// variable, subtitles and video source frames. An Engine is safe for use
// from several goroutines; calls are serialized.
package compose
