// Package voice maps spoken lines to pre-generated audio files.
//
// A line is identified by a content Key over its text, speaker and
// synthesis parameters. A Map, produced by an offline generation step,
// resolves keys to file ids; AudioPath turns an id into the wav path a
// Sound leaf plays. Subtitle normalizes the subtitle option a Voice
// accepts.
package voice
