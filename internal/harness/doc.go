// Package harness runs scene scenarios as executable contract tests.
//
// A scenario mounts one scene with fixed source lengths, renders a few
// frames and checks the timeline and audio plan the scene produced.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	scene: ../scenes/intro.yaml    # or inline: {nodes: [...]}
//	lengths:
//	  a.wav: 30
//	voices:
//	  - {text: hello, id: voice_001}
//	hide: [outro]
//	probes:
//	  - frame: 0
//	    expect:
//	      labels: [intro]
//	      values: {opacity: "0.000"}
//	      subtitles: [hello]
//	      videos: {clip.mp4: 5}
//	assertions:
//	  - type: duration
//	    frames: 75
//	  - type: segment
//	    path: a.wav
//	    start: 0
//	    duration: 30
//
// # Assertion Types
//
//   - duration: total length in frames
//   - clip: a labelled clip covers an absolute window
//   - clip_count: number of registered clips
//   - segment: an audio segment for a path (start, source_start, duration)
//   - segment_count: number of planned audio segments
//
// A scenario with expect_error only checks that mounting fails with a
// matching message.
//
// # Deterministic Testing
//
// Every run uses a fresh registry and aggregator, sequential clip ids
// (clip-1, clip-2, ...) and a deterministic plan clock, so the same
// scenario always produces byte-identical golden reports.
package harness
