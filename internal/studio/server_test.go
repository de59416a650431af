package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framescript/internal/anim"
	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/compose"
	"github.com/roach88/framescript/internal/frame"
	"github.com/roach88/framescript/internal/testutil"
	"github.com/roach88/framescript/internal/timeline"
)

type fixture struct {
	reg    *timeline.Registry
	agg    *audioplan.Aggregator
	engine *compose.Engine
	srv    *httptest.Server
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		reg: timeline.New(timeline.WithLogger(logger)),
		agg: audioplan.NewAggregator(),
	}
	f.engine = compose.New(frame.Settings{FPS: 30, Width: 640, Height: 360},
		compose.WithRegistry(f.reg),
		compose.WithAggregator(f.agg),
		compose.WithLengths(testutil.NewLengths(map[string]int{"a.wav": 30})),
		compose.WithIDGenerator(compose.NewSequentialGenerator("clip")),
		compose.WithArena(anim.NewArena()),
		compose.WithLogger(logger),
	)
	t.Cleanup(f.engine.Unmount)
	require.NoError(t, f.engine.Mount(context.Background(), compose.Composition{Nodes: []compose.Node{
		&compose.Clip{Label: "intro", Children: []compose.Node{&compose.Sound{Path: "a.wav"}}},
	}}))

	opts = append([]Option{WithRenderer(f.engine), WithLogger(logger)}, opts...)
	f.srv = httptest.NewServer(New(f.reg, f.agg, 30, opts...))
	t.Cleanup(f.srv.Close)
	return f
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestGetTimeline(t *testing.T) {
	f := newFixture(t)

	var snap timeline.Snapshot
	status := getJSON(t, f.srv.URL+"/timeline", &snap)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, snap.Clips, 1)
	assert.Equal(t, timeline.ClipNode{ID: "clip-1", AbsoluteStart: 0, AbsoluteEnd: 29, Label: "intro"}, snap.Clips[0])
}

func TestPostVisibility(t *testing.T) {
	f := newFixture(t)

	body := `{"id": "clip-1", "visible": false}`
	resp, err := http.Post(f.srv.URL+"/timeline/visibility", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap timeline.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.True(t, snap.Hidden["clip-1"])
	assert.False(t, f.reg.Visible("clip-1"))
	assert.Empty(t, f.engine.Render(0).Labels())
}

func TestPostVisibility_BadRequests(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "not json", body: "hide it", wantErr: "invalid body"},
		{name: "unknown field", body: `{"id": "clip-1", "hidden": true}`, wantErr: "invalid body"},
		{name: "missing id", body: `{"visible": false}`, wantErr: "id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(f.srv.URL+"/timeline/visibility", "application/json", bytes.NewBufferString(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var out map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Contains(t, out["error"], tt.wantErr)
		})
	}
}

func TestGetAudioPlan(t *testing.T) {
	f := newFixture(t)

	var plan audioplan.Plan
	status := getJSON(t, f.srv.URL+"/audio/plan", &plan)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, plan.Ready)
	assert.Equal(t, 30, plan.FPS)
	require.Len(t, plan.Segments, 1)
	assert.Equal(t, 30, plan.Segments[0].DurationFrames)

	want, err := audioplan.PlanID(30, f.agg.Segments())
	require.NoError(t, err)
	assert.Equal(t, want, plan.ID)
}

func TestGetFrame(t *testing.T) {
	f := newFixture(t)

	var out struct {
		Frame int `json:"frame"`
		Clips []struct {
			Label string `json:"label"`
			Local int    `json:"local"`
		} `json:"clips"`
	}
	status := getJSON(t, f.srv.URL+"/frame/12", &out)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 12, out.Frame)
	require.Len(t, out.Clips, 1)
	assert.Equal(t, "intro", out.Clips[0].Label)
	assert.Equal(t, 12, out.Clips[0].Local)

	var errBody map[string]string
	status = getJSON(t, f.srv.URL+"/frame/abc", &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetFrame_NoRenderer(t *testing.T) {
	reg := timeline.New()
	srv := httptest.NewServer(New(reg, audioplan.NewAggregator(), 30))
	defer srv.Close()

	var errBody map[string]string
	status := getJSON(t, srv.URL+"/frame/0", &errBody)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "rendering is not enabled", errBody["error"])
}

func TestTimelineWebsocket(t *testing.T) {
	f := newFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/timeline/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first timeline.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	require.Len(t, first.Clips, 1)
	assert.Empty(t, first.Hidden)

	f.reg.SetVisible("clip-1", false)

	var next timeline.Snapshot
	require.NoError(t, conn.ReadJSON(&next))
	assert.Greater(t, next.Version, first.Version)
	assert.True(t, next.Hidden["clip-1"])
}

func TestTimelineWebsocket_RejectsCrossOrigin(t *testing.T) {
	f := newFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/timeline/ws"
	header := http.Header{"Origin": []string{"http://elsewhere.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := New(timeline.New(), audioplan.NewAggregator(), 30, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.ListenAndServe(ctx, "127.0.0.1:0")
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
