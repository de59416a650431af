package voice

import (
	"strconv"

	"github.com/roach88/framescript/internal/canon"
)

// DefaultSpeaker is used when a line does not name a speaker.
const DefaultSpeaker = 3

// Params are optional synthesis parameters. A nil field means the engine
// default.
type Params struct {
	Speed              *float64 `json:"speed,omitempty" yaml:"speed,omitempty"`
	Pitch              *float64 `json:"pitch,omitempty" yaml:"pitch,omitempty"`
	Intonation         *float64 `json:"intonation,omitempty" yaml:"intonation,omitempty"`
	Volume             *float64 `json:"volume,omitempty" yaml:"volume,omitempty"`
	PrePhonemeLength   *float64 `json:"pre_phoneme_length,omitempty" yaml:"pre_phoneme_length,omitempty"`
	PostPhonemeLength  *float64 `json:"post_phoneme_length,omitempty" yaml:"post_phoneme_length,omitempty"`
	PauseLength        *float64 `json:"pause_length,omitempty" yaml:"pause_length,omitempty"`
	PauseLengthScale   *float64 `json:"pause_length_scale,omitempty" yaml:"pause_length_scale,omitempty"`
	OutputSamplingRate *int     `json:"output_sampling_rate,omitempty" yaml:"output_sampling_rate,omitempty"`
	OutputStereo       *bool    `json:"output_stereo,omitempty" yaml:"output_stereo,omitempty"`
}

// canonical returns the set fields only. Floats are carried as shortest
// decimal strings since canonical JSON has no float type.
func (p Params) canonical() canon.Object {
	obj := canon.Object{}
	floats := []struct {
		name string
		v    *float64
	}{
		{"speed", p.Speed},
		{"pitch", p.Pitch},
		{"intonation", p.Intonation},
		{"volume", p.Volume},
		{"pre_phoneme_length", p.PrePhonemeLength},
		{"post_phoneme_length", p.PostPhonemeLength},
		{"pause_length", p.PauseLength},
		{"pause_length_scale", p.PauseLengthScale},
	}
	for _, f := range floats {
		if f.v != nil {
			obj[f.name] = canon.String(strconv.FormatFloat(*f.v, 'g', -1, 64))
		}
	}
	if p.OutputSamplingRate != nil {
		obj["output_sampling_rate"] = canon.Int(*p.OutputSamplingRate)
	}
	if p.OutputStereo != nil {
		obj["output_stereo"] = canon.Bool(*p.OutputStereo)
	}
	return obj
}

// Key identifies a line by its content. Equal text, speaker and set
// parameters always give the same key regardless of field order or
// Unicode normalization form of the text.
func Key(text string, speakerID int, params Params) string {
	return canon.MustHash(canon.DomainVoice, canon.Object{
		"text":       canon.String(text),
		"speaker_id": canon.Int(speakerID),
		"params":     params.canonical(),
	})
}
