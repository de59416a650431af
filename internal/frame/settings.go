package frame

import (
	"fmt"
	"math"
)

// Default project settings.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
	DefaultFPS    = 60
)

// Settings describes a project's output format.
type Settings struct {
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	FPS    int    `json:"fps" yaml:"fps"`
}

// DefaultSettings returns 1920x1080 at 60 fps.
func DefaultSettings() Settings {
	return Settings{
		Name:   "untitled",
		Width:  DefaultWidth,
		Height: DefaultHeight,
		FPS:    DefaultFPS,
	}
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	switch {
	case s.FPS <= 0:
		return fmt.Errorf("fps must be positive, got %d", s.FPS)
	case s.Width <= 0:
		return fmt.Errorf("width must be positive, got %d", s.Width)
	case s.Height <= 0:
		return fmt.Errorf("height must be positive, got %d", s.Height)
	}
	return nil
}

// Seconds converts a duration in seconds to a frame count, rounded to the
// nearest frame.
func (s Settings) Seconds(seconds float64) int {
	return Round(seconds * float64(s.FPS))
}

// FramesFromMillis converts milliseconds to a frame count, rounded to the
// nearest frame.
func (s Settings) FramesFromMillis(ms float64) int {
	return Round(ms / 1000 * float64(s.FPS))
}

// Round rounds half away from zero. Non-finite input yields 0.
func Round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

// Floor truncates toward negative infinity and clamps at 0.
// Non-finite input yields 0. Used for trim values, which are never negative.
func Floor(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return max(0, int(math.Floor(v)))
}
