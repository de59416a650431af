package media

import "github.com/roach88/framescript/internal/frame"

// Trim removes frames from either end of a source. Either set
// Start/End, or set Window with From/Duration; Window wins when both are
// present.
type Trim struct {
	Start float64 `json:"trim_start,omitempty" yaml:"trim_start,omitempty"`
	End   float64 `json:"trim_end,omitempty" yaml:"trim_end,omitempty"`

	Window *TrimWindow `json:"window,omitempty" yaml:"window,omitempty"`
}

// TrimWindow keeps Duration frames of the source starting at From.
type TrimWindow struct {
	From     float64 `json:"from" yaml:"from"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// ResolvedTrim is a trim in whole frames.
type ResolvedTrim struct {
	StartFrames int
	EndFrames   int
}

// Available returns the frames left of raw after trimming, never negative.
func (r ResolvedTrim) Available(raw int) int {
	return max(0, raw-r.StartFrames-r.EndFrames)
}

// Resolve converts t against a source of raw frames.
//
// All values are floored and clamped at 0; non-finite values count as 0.
// For a window, the end trim is whatever follows From+Duration, or 0 when
// the source length is unknown.
func (t *Trim) Resolve(raw int) ResolvedTrim {
	if t == nil {
		return ResolvedTrim{}
	}
	raw = max(0, raw)
	if t.Window != nil {
		from := frame.Floor(t.Window.From)
		endExclusive := from + frame.Floor(t.Window.Duration)
		end := 0
		if raw > 0 {
			end = max(0, raw-endExclusive)
		}
		return ResolvedTrim{StartFrames: from, EndFrames: end}
	}
	return ResolvedTrim{
		StartFrames: frame.Floor(t.Start),
		EndFrames:   frame.Floor(t.End),
	}
}
