// Package frame holds the composition's notion of time.
//
// Time is a non-negative integer frame index. There is no wall clock anywhere
// in the core: a project's fps is used only to turn author-facing seconds
// into frame counts at declaration time.
//
// The package has no internal imports; every other core package depends on it.
package frame
