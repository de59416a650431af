package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/frame"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func metaServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/audio/meta", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Query().Get("path") {
		case "voice.wav":
			fmt.Fprint(w, `{"duration_ms": 1500}`)
		case "huge.wav":
			fmt.Fprint(w, `{"duration_ms": 1e12}`)
		case "zero.wav":
			fmt.Fprint(w, `{"duration_ms": 0}`)
		case "garbage.wav":
			fmt.Fprint(w, `not json`)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/video/meta", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"duration_ms": 2000, "fps": 30}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func sound(path string) audioplan.Source {
	return audioplan.Source{Kind: audioplan.SourceSound, Path: path}
}

func TestCache_HTTPFrames(t *testing.T) {
	var hits atomic.Int32
	srv := metaServer(t, &hits)
	c := NewCache(HTTPProber{BaseURL: srv.URL}, frame.Settings{FPS: 30}, WithCacheLogger(quietLogger()))
	ctx := context.Background()

	assert.Equal(t, 45, c.Frames(ctx, sound("voice.wav")))
	assert.Equal(t, 60, c.Frames(ctx, audioplan.Source{Kind: audioplan.SourceVideo, Path: "clip.mp4"}))
}

func TestCache_DegradesToZero(t *testing.T) {
	var hits atomic.Int32
	srv := metaServer(t, &hits)
	c := NewCache(HTTPProber{BaseURL: srv.URL}, frame.Settings{FPS: 30}, WithCacheLogger(quietLogger()))
	ctx := context.Background()

	for _, path := range []string{"huge.wav", "zero.wav", "garbage.wav", "missing.wav"} {
		assert.Equal(t, 0, c.Frames(ctx, sound(path)), path)
	}
}

func TestCache_ProbesOncePerPath(t *testing.T) {
	var hits atomic.Int32
	srv := metaServer(t, &hits)
	c := NewCache(HTTPProber{BaseURL: srv.URL}, frame.Settings{FPS: 30}, WithCacheLogger(quietLogger()))
	ctx := context.Background()

	c.Frames(ctx, sound("voice.wav"))
	c.Frames(ctx, sound("voice.wav"))
	c.Frames(ctx, sound("missing.wav"))
	c.Frames(ctx, sound("missing.wav"))

	assert.Equal(t, int32(2), hits.Load(), "failures are cached too")
	assert.Equal(t, 2, c.Len())
}

func TestCache_PrefetchCollapsesConcurrentLookups(t *testing.T) {
	var hits atomic.Int32
	srv := metaServer(t, &hits)
	c := NewCache(HTTPProber{BaseURL: srv.URL}, frame.Settings{FPS: 30}, WithCacheLogger(quietLogger()))

	sources := make([]audioplan.Source, 0, 20)
	for i := 0; i < 20; i++ {
		sources = append(sources, sound("voice.wav"))
	}
	require.NoError(t, c.Prefetch(context.Background(), sources, 8))

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 45, c.Frames(context.Background(), sound("voice.wav")))
}

func TestCache_PrefetchCancelled(t *testing.T) {
	c := NewCache(nil, frame.Settings{FPS: 30}, WithCacheLogger(quietLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Prefetch(ctx, []audioplan.Source{sound("a.wav")}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

type ctxProber struct {
	calls atomic.Int32
}

func (p *ctxProber) Probe(ctx context.Context, _ audioplan.Source) (Metadata, error) {
	p.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	return Metadata{DurationMs: 1000}, nil
}

func TestCache_CancelledLookupNotCached(t *testing.T) {
	p := &ctxProber{}
	c := NewCache(p, frame.Settings{FPS: 30}, WithCacheLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, 0, c.Frames(ctx, sound("a.wav")))
	assert.Equal(t, 0, c.Len())

	assert.Equal(t, 30, c.Frames(context.Background(), sound("a.wav")))
	assert.Equal(t, int32(2), p.calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCache_NoProber(t *testing.T) {
	c := NewCache(nil, frame.Settings{FPS: 30}, WithCacheLogger(quietLogger()))
	assert.Equal(t, 0, c.Frames(context.Background(), sound("a.wav")))
}

func TestFFProbe(t *testing.T) {
	var gotArgs []string
	p := FFProbe{Run: func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte("2.500000\n"), nil
	}}

	meta, err := p.Probe(context.Background(), sound("a.wav"))
	require.NoError(t, err)
	assert.InDelta(t, 2500, meta.DurationMs, 1e-6)
	assert.Equal(t, "ffprobe", gotArgs[0])
	assert.Equal(t, "a.wav", gotArgs[len(gotArgs)-1])

	p.Run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("N/A"), nil
	}
	_, err = p.Probe(context.Background(), sound("a.wav"))
	assert.Error(t, err)

	p.Run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("not found")
	}
	_, err = p.Probe(context.Background(), sound("a.wav"))
	assert.Error(t, err)
}
