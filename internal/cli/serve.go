package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/store"
	"github.com/roach88/framescript/internal/studio"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string // listen address; defaults to FRAMESCRIPT_ADDR
	DB   string // sqlite outbox receiving debounced plans
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <scene>",
		Short: "Serve the studio API for a mounted scene",
		Long: `Mount a scene and serve its timeline, audio plan and rendered frames
over HTTP until interrupted. Timeline changes stream over a websocket, and
visibility toggles from the studio apply to the running registry.

With --db, every settled audio plan is delivered into a sqlite outbox
after FRAMESCRIPT_DEBOUNCE of quiet.

Endpoints:
  GET  /timeline
  POST /timeline/visibility
  GET  /timeline/ws
  GET  /audio/plan
  GET  /frame/{frame}`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default $FRAMESCRIPT_ADDR)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "deliver settled plans into this sqlite outbox")

	return cmd
}

func runServe(opts *ServeOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, f, path, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := opts.Addr
	if addr == "" {
		addr = s.cfg.Addr
	}
	srv := studio.New(s.reg, s.agg, s.settings.FPS,
		studio.WithRenderer(s.engine),
		studio.WithLogger(logger),
	)

	var handoff *audioplan.Handoff
	if opts.DB != "" {
		st, err := store.Open(opts.DB)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to open plan store", err)
		}
		defer st.Close()
		last, err := st.LastSeq(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to read plan store", err)
		}
		handoff = audioplan.NewHandoff(s.agg, s.settings.FPS, st,
			audioplan.WithSequencer(audioplan.NewCounterAt(last)),
			audioplan.WithDebounce(s.cfg.Debounce),
			audioplan.WithHandoffLogger(logger),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, addr)
	})
	if handoff != nil {
		g.Go(func() error {
			return handoff.Run(gctx)
		})
	}

	f.VerboseLog("Serving %s on %s", s.scene.Name, addr)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitCommandError, "studio server failed", err)
	}
	return nil
}
