package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_Seconds(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 60, s.Seconds(1))
	assert.Equal(t, 90, s.Seconds(1.5))
	assert.Equal(t, 0, s.Seconds(0))

	s.FPS = 30
	assert.Equal(t, 15, s.Seconds(0.5))
}

func TestSettings_FramesFromMillis(t *testing.T) {
	s := Settings{FPS: 30}

	assert.Equal(t, 30, s.FramesFromMillis(1000))
	assert.Equal(t, 45, s.FramesFromMillis(1500))
	assert.Equal(t, 1, s.FramesFromMillis(20), "0.6 frames rounds up")
}

func TestSettings_Validate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())

	tests := []struct {
		name string
		s    Settings
	}{
		{"zero fps", Settings{Width: 1, Height: 1, FPS: 0}},
		{"zero width", Settings{Width: 0, Height: 1, FPS: 1}},
		{"negative height", Settings{Width: 1, Height: -1, FPS: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.s.Validate())
		})
	}
}

func TestRoundAndFloor(t *testing.T) {
	assert.Equal(t, 3, Round(2.5))
	assert.Equal(t, 0, Round(math.NaN()))
	assert.Equal(t, 0, Round(math.Inf(1)))

	assert.Equal(t, 2, Floor(2.9))
	assert.Equal(t, 0, Floor(-4))
	assert.Equal(t, 0, Floor(math.Inf(-1)))
}
