package voice

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Position places a subtitle on screen.
type Position string

const (
	PositionTop    Position = "top"
	PositionCenter Position = "center"
	PositionBottom Position = "bottom"
)

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	switch p {
	case PositionTop, PositionCenter, PositionBottom:
		return true
	}
	return false
}

// SubtitleOption is the subtitle setting of a Voice as written in a scene:
// false, true, a string, or a mapping with text and position. The zero
// value behaves like true.
type SubtitleOption struct {
	Disabled bool
	Text     string
	Position Position
}

// UnmarshalYAML accepts the boolean, string and mapping forms.
func (o *SubtitleOption) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!bool" {
			var on bool
			if err := node.Decode(&on); err != nil {
				return err
			}
			*o = SubtitleOption{Disabled: !on}
			return nil
		}
		*o = SubtitleOption{Text: node.Value}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Text     string   `yaml:"text"`
			Position Position `yaml:"position"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		if raw.Position != "" && !raw.Position.Valid() {
			return fmt.Errorf("line %d: unknown subtitle position %q", node.Line, raw.Position)
		}
		*o = SubtitleOption{Text: raw.Text, Position: raw.Position}
		return nil
	}
	return fmt.Errorf("line %d: subtitle must be a bool, string or mapping", node.Line)
}

// Subtitle is a resolved subtitle.
type Subtitle struct {
	Text     string   `json:"text"`
	Position Position `json:"position"`
}

// Resolve returns the subtitle for a line of text, or false when disabled.
// Missing text falls back to the line; missing position to bottom.
func (o SubtitleOption) Resolve(line string) (Subtitle, bool) {
	if o.Disabled {
		return Subtitle{}, false
	}
	s := Subtitle{Text: o.Text, Position: o.Position}
	if s.Text == "" {
		s.Text = line
	}
	if s.Position == "" {
		s.Position = PositionBottom
	}
	return s, true
}
