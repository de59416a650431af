package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/bus"
	"github.com/roach88/framescript/internal/compose"
	"github.com/roach88/framescript/internal/timeline"
)

// Timeline is a registry that publishes its changes. Implemented by
// *timeline.Registry and *timeline.Scope.
type Timeline interface {
	timeline.Registrar
	Changes() *bus.Topic[timeline.Snapshot]
}

// Renderer renders single frames. Implemented by *compose.Engine.
type Renderer interface {
	Render(frame int) compose.Frame
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Server is the studio HTTP server.
type Server struct {
	timeline Timeline
	agg      *audioplan.Aggregator
	renderer Renderer
	fps      int
	logger   *slog.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithRenderer enables GET /frame/{frame}.
func WithRenderer(r Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCheckOrigin overrides the websocket origin check. The default accepts
// same-origin requests only.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// New creates a server over tl and agg for a project at fps.
func New(tl Timeline, agg *audioplan.Aggregator, fps int, opts ...Option) *Server {
	s := &Server{
		timeline: tl,
		agg:      agg,
		fps:      fps,
		logger:   slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		mux: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("GET /timeline", s.handleTimeline)
	s.mux.HandleFunc("POST /timeline/visibility", s.handleVisibility)
	s.mux.HandleFunc("GET /timeline/ws", s.handleTimelineWS)
	s.mux.HandleFunc("GET /audio/plan", s.handlePlan)
	s.mux.HandleFunc("GET /frame/{frame}", s.handleFrame)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("studio listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleTimeline(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.timeline.Snapshot())
}

// VisibilityRequest is the body of POST /timeline/visibility.
type VisibilityRequest struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req VisibilityRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	if req.ID == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	s.timeline.SetVisible(req.ID, req.Visible)
	s.logger.Debug("visibility changed", "id", req.ID, "visible", req.Visible)
	s.writeJSON(w, http.StatusOK, s.timeline.Snapshot())
}

func (s *Server) handlePlan(w http.ResponseWriter, _ *http.Request) {
	snap := s.agg.Snapshot()
	plan, err := audioplan.NewPlan(int64(snap.Version), s.fps, snap.Segments)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	if s.renderer == nil {
		s.writeError(w, http.StatusNotFound, "rendering is not enabled")
		return
	}
	f, err := strconv.Atoi(r.PathValue("frame"))
	if err != nil || f < 0 {
		s.writeError(w, http.StatusBadRequest, "frame must be a non-negative integer")
		return
	}
	s.writeJSON(w, http.StatusOK, s.renderer.Render(f))
}

func (s *Server) handleTimelineWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	l := s.timeline.Changes().Listen()
	defer s.timeline.Changes().Unlisten(l)

	// The reader only handles control frames; it ends when the client goes.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.send(conn, s.timeline.Snapshot()); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case snap := <-l.C:
			if err := s.send(conn, snap); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, snap timeline.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(snap); err != nil {
		s.logger.Debug("websocket write failed", "error", err)
		return err
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
