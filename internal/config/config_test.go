package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framescript/internal/media"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ffprobe", cfg.FFProbe)
	assert.Equal(t, "ffmpeg", cfg.FFMpeg)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, "project/voices", cfg.VoiceDir)
	assert.False(t, cfg.Dev)
	assert.IsType(t, media.FFProbe{}, cfg.Prober())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FRAMESCRIPT_META_URL", "http://localhost:9000")
	t.Setenv("FRAMESCRIPT_DEBOUNCE", "1s")
	t.Setenv("FRAMESCRIPT_DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Debounce)
	assert.True(t, cfg.Dev)
	assert.Equal(t, media.HTTPProber{BaseURL: "http://localhost:9000"}, cfg.Prober())
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("FRAMESCRIPT_DEBOUNCE", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "parse env:")

	t.Setenv("FRAMESCRIPT_DEBOUNCE", "-1s")
	_, err = Load()
	assert.ErrorContains(t, err, "must not be negative")
}
