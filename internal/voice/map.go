package voice

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Entry is one generated line.
type Entry struct {
	Key       string `json:"key" yaml:"key"`
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	SpeakerID int    `json:"speaker_id" yaml:"speaker_id"`
	Params    Params `json:"params" yaml:"params"`
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Map resolves keys to generated entries.
type Map struct {
	Voices []Entry `json:"voices" yaml:"voices"`

	byKey map[string]Entry
}

// NewMap indexes entries by key. A later duplicate key wins.
func NewMap(entries []Entry) *Map {
	m := &Map{Voices: entries}
	m.index()
	return m
}

func (m *Map) index() {
	m.byKey = make(map[string]Entry, len(m.Voices))
	for _, e := range m.Voices {
		m.byKey[e.Key] = e
	}
}

// LoadMap reads a voice map. JSON files parse too, since JSON is YAML.
// A missing file yields an empty map.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewMap(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read voice map: %w", err)
	}
	return ParseMap(data)
}

// ParseMap decodes a voice map.
func ParseMap(data []byte) (*Map, error) {
	m := &Map{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("parse voice map: %w", err)
	}
	for i, e := range m.Voices {
		if e.Key == "" || e.ID == "" {
			return nil, fmt.Errorf("parse voice map: voices[%d]: key and id are required", i)
		}
	}
	m.index()
	return m, nil
}

// Save writes m as YAML.
func (m *Map) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode voice map: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write voice map: %w", err)
	}
	return nil
}

// Lookup returns the entry for key.
func (m *Map) Lookup(key string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	e, ok := m.byKey[key]
	return e, ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Voices)
}

// AudioPath returns the wav file for id under dir.
func AudioPath(dir, id string) string {
	return filepath.ToSlash(filepath.Join(dir, id+".wav"))
}

// Line is a spoken line seen while mounting a scene.
type Line struct {
	Text      string
	SpeakerID int
	Params    Params
	File      string
	LineNo    int
}

// BuildMap assigns sequential ids (voice_001, voice_002, ...) to lines in
// order, dropping repeats of an already seen key.
func BuildMap(lines []Line) *Map {
	seen := make(map[string]bool, len(lines))
	entries := make([]Entry, 0, len(lines))
	for _, l := range lines {
		key := Key(l.Text, l.SpeakerID, l.Params)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, Entry{
			Key:       key,
			ID:        fmt.Sprintf("voice_%03d", len(entries)+1),
			Text:      l.Text,
			SpeakerID: l.SpeakerID,
			Params:    l.Params,
			File:      l.File,
			Line:      l.LineNo,
		})
	}
	return NewMap(entries)
}
