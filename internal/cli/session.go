package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/framescript/internal/anim"
	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/compose"
	"github.com/roach88/framescript/internal/config"
	"github.com/roach88/framescript/internal/frame"
	"github.com/roach88/framescript/internal/media"
	"github.com/roach88/framescript/internal/scene"
	"github.com/roach88/framescript/internal/timeline"
	"github.com/roach88/framescript/internal/voice"
)

// session is one scene mounted into its own registry and aggregator.
type session struct {
	path     string
	scene    *scene.Scene
	settings frame.Settings
	cfg      config.Config
	reg      *timeline.Registry
	agg      *audioplan.Aggregator
	engine   *compose.Engine
	logger   *slog.Logger
}

// loadScene reads and compiles a scene without mounting it. Loading
// validates the tree.
// Failures are reported through f.
func loadScene(f *OutputFormatter, path string) (*scene.Scene, frame.Settings, compose.Composition, error) {
	sc, err := scene.Load(path)
	if isInvalidScene(err) {
		return nil, frame.Settings{}, compose.Composition{}, f.Fail(ExitFailure, ErrCodeInvalid, "scene is invalid", err)
	}
	if err != nil {
		return nil, frame.Settings{}, compose.Composition{}, f.Fail(ExitCommandError, ErrCodeLoad, "failed to load scene", err)
	}
	settings, err := sc.ResolveSettings()
	if err != nil {
		return nil, frame.Settings{}, compose.Composition{}, f.Fail(ExitCommandError, ErrCodeConfig, "failed to resolve project settings", err)
	}
	comp, err := sc.Compile(settings)
	if err != nil {
		return nil, frame.Settings{}, compose.Composition{}, f.Fail(ExitFailure, ErrCodeInvalid, "failed to compile scene", err)
	}
	return sc, settings, comp, nil
}

// openSession loads the scene at path and mounts it. Media lengths come
// from the metadata source the environment selects, voices from the
// configured voice map. Callers must close the session.
func openSession(ctx context.Context, f *OutputFormatter, path string, logger *slog.Logger) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, "invalid environment", err)
	}
	sc, settings, comp, err := loadScene(f, path)
	if err != nil {
		return nil, err
	}
	voices, err := voice.LoadMap(cfg.VoiceMap)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, "failed to load voice map", err)
	}

	cache := media.NewCache(cfg.Prober(), settings, media.WithCacheLogger(logger))
	sources := sc.Sources()
	f.VerboseLog("Probing %d source(s)", len(sources))
	if err := cache.Prefetch(ctx, sources, 0); err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, "failed to probe media", err)
	}

	s := &session{
		path:     path,
		scene:    sc,
		settings: settings,
		cfg:      cfg,
		reg:      timeline.New(timeline.WithLogger(logger)),
		agg:      audioplan.NewAggregator(),
		logger:   logger,
	}
	s.engine = compose.New(settings,
		compose.WithRegistry(s.reg),
		compose.WithAggregator(s.agg),
		compose.WithLengths(cache),
		compose.WithVoices(voices, cfg.VoiceDir),
		compose.WithArena(anim.NewArena()),
		compose.WithDevMode(cfg.Dev),
		compose.WithLogger(logger),
	)
	if err := s.engine.Mount(ctx, comp); err != nil {
		s.engine.Unmount()
		return nil, f.Fail(ExitFailure, ErrCodeMount, "failed to mount scene", err)
	}
	f.VerboseLog("Mounted %s: %d frames at %d fps", sc.Name, s.engine.Duration(), settings.FPS)
	return s, nil
}

func (s *session) Close() {
	s.engine.Unmount()
}

// isInvalidScene reports whether err carries scene validation errors, as
// opposed to an unreadable or malformed file.
func isInvalidScene(err error) bool {
	var verr *scene.ValidationError
	return errors.As(err, &verr)
}

// validationMessages splits a joined validation error into one line per
// problem.
func validationMessages(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		errs := joined.Unwrap()
		out := make([]string, 0, len(errs))
		for _, e := range errs {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
