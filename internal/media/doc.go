// Package media resolves source lengths and trims for media leaves.
//
// Lengths come from a Prober: HTTPProber asks the rendering backend's
// /audio/meta and /video/meta endpoints, FFProbe runs ffprobe locally. A
// Cache sits in front of either and remembers one length per source path
// for the life of the process. Lookups never fail from the caller's point
// of view: any error degrades to a length of 0 and is logged, so one missing
// asset does not stop the rest of the composition.
package media
