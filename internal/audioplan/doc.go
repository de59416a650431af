// Package audioplan collects the audio that a composition needs mixed.
//
// Every media leaf (sound, video, voice) places one Segment in an
// Aggregator: which file, where it starts on the project timeline, where it
// starts inside the source after trimming, and how many frames play. The
// aggregator deduplicates structurally identical writes so subscribers only
// hear about real changes.
//
// A Handoff watches the aggregator and, once the segment set has been
// quiet for a debounce window, delivers a Plan (segments plus fps) to a
// Sink: a JSON writer, the sqlite outbox in internal/store, or an ffmpeg
// mixer. An empty plan is still delivered, marked ready.
package audioplan
