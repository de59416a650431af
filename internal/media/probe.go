package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/framescript/internal/audioplan"
)

// MaxReasonableDuration bounds sound lengths; anything longer is treated as
// a malformed response.
const MaxReasonableDuration = 7 * 24 * time.Hour

// Metadata is what a Prober reports for one source.
type Metadata struct {
	DurationMs float64 `json:"duration_ms"`
	FPS        float64 `json:"fps,omitempty"`
}

// Prober looks up a source's metadata.
type Prober interface {
	Probe(ctx context.Context, src audioplan.Source) (Metadata, error)
}

// HTTPProber queries the rendering backend's metadata endpoints:
// GET <BaseURL>/audio/meta?path=... for sounds and /video/meta for videos.
type HTTPProber struct {
	BaseURL string
	Client  *http.Client
}

// Probe implements Prober.
func (p HTTPProber) Probe(ctx context.Context, src audioplan.Source) (Metadata, error) {
	endpoint := "/audio/meta"
	if src.Kind == audioplan.SourceVideo {
		endpoint = "/video/meta"
	}
	u, err := url.Parse(strings.TrimRight(p.BaseURL, "/") + endpoint)
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata url: %w", err)
	}
	q := u.Query()
	q.Set("path", src.Path)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata request: %w", err)
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Metadata{}, fmt.Errorf("metadata %s: status %d", src.Path, resp.StatusCode)
	}
	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return Metadata{}, fmt.Errorf("metadata %s: decode: %w", src.Path, err)
	}
	return meta, nil
}

// FFProbe reads durations with a local ffprobe binary.
type FFProbe struct {
	Binary string // defaults to "ffprobe"
	Run    audioplan.Runner
}

// Probe implements Prober.
func (p FFProbe) Probe(ctx context.Context, src audioplan.Source) (Metadata, error) {
	bin := p.Binary
	if bin == "" {
		bin = "ffprobe"
	}
	run := p.Run
	if run == nil {
		run = audioplan.ExecRunner
	}
	out, err := run(ctx, bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		src.Path)
	if err != nil {
		return Metadata{}, fmt.Errorf("ffprobe %s: %w", src.Path, err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return Metadata{}, fmt.Errorf("ffprobe %s: parse duration: %w", src.Path, err)
	}
	return Metadata{DurationMs: seconds * 1000}, nil
}

var errUnreasonable = errors.New("duration out of range")

// validate rejects durations a caller must not trust. Sounds must be
// positive and below MaxReasonableDuration; videos only need to be finite.
func validate(kind audioplan.SourceKind, meta Metadata) error {
	ms := meta.DurationMs
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return errUnreasonable
	}
	if kind == audioplan.SourceSound {
		if ms <= 0 || ms > float64(MaxReasonableDuration/time.Millisecond) {
			return errUnreasonable
		}
	}
	return nil
}
