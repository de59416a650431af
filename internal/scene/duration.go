package scene

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/framescript/internal/frame"
)

// UnmarshalYAML accepts 12 or "0.5s".
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a number of frames or seconds like 1.5s", node.Line)
	}
	if s, ok := strings.CutSuffix(node.Value, "s"); ok {
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil || secs < 0 {
			return fmt.Errorf("line %d: invalid duration %q", node.Line, node.Value)
		}
		*d = Duration{Seconds: secs}
		return nil
	}
	frames, err := strconv.Atoi(node.Value)
	if err != nil || frames < 0 {
		return fmt.Errorf("line %d: invalid duration %q", node.Line, node.Value)
	}
	*d = Duration{Frames: frames}
	return nil
}

// In returns d in frames under settings.
func (d Duration) In(settings frame.Settings) int {
	if d.Seconds > 0 {
		return settings.Seconds(d.Seconds)
	}
	return d.Frames
}
