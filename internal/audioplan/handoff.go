package audioplan

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultDebounce is how long the segment set must stay unchanged before a
// plan is handed off.
const DefaultDebounce = 250 * time.Millisecond

// Handoff delivers the aggregator's segments to a Sink once they settle.
type Handoff struct {
	agg      *Aggregator
	fps      int
	sink     Sink
	debounce time.Duration
	seq      Sequencer
	logger   *slog.Logger

	lastID string
}

// HandoffOption configures a Handoff.
type HandoffOption func(*Handoff)

// WithDebounce sets the quiet period. Non-positive values deliver on the
// next change without waiting.
func WithDebounce(d time.Duration) HandoffOption {
	return func(h *Handoff) {
		h.debounce = d
	}
}

// WithSequencer sets the plan sequence source.
func WithSequencer(s Sequencer) HandoffOption {
	return func(h *Handoff) {
		h.seq = s
	}
}

// WithHandoffLogger sets the logger.
func WithHandoffLogger(logger *slog.Logger) HandoffOption {
	return func(h *Handoff) {
		h.logger = logger
	}
}

// NewHandoff creates a handoff from agg to sink for a project at fps.
func NewHandoff(agg *Aggregator, fps int, sink Sink, opts ...HandoffOption) *Handoff {
	h := &Handoff{
		agg:      agg,
		fps:      fps,
		sink:     sink,
		debounce: DefaultDebounce,
		seq:      &Counter{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Flush builds a plan from the current segments and delivers it, whether or
// not it changed since the last delivery.
func (h *Handoff) Flush(ctx context.Context) (Plan, error) {
	plan, err := NewPlan(h.seq.Next(), h.fps, h.agg.Segments())
	if err != nil {
		return Plan{}, fmt.Errorf("build plan: %w", err)
	}
	if err := h.sink.Deliver(ctx, plan); err != nil {
		return plan, fmt.Errorf("deliver plan %d: %w", plan.Seq, err)
	}
	h.lastID = plan.ID
	h.logger.Info("audio plan handed off",
		"seq", plan.Seq,
		"id", plan.ID,
		"segments", len(plan.Segments),
		"fps", plan.FPS)
	return plan, nil
}

// Run delivers a plan after every quiet period until ctx is done.
//
// The first plan is delivered one debounce window after Run starts, even
// when no segment was ever registered. Later changes that leave the plan id
// unchanged (a segment removed and re-added identically) are not delivered
// again. Delivery errors are logged and do not stop the loop.
func (h *Handoff) Run(ctx context.Context) error {
	l := h.agg.Changes().Listen()
	defer h.agg.Changes().Unlisten(l)

	timer := time.NewTimer(h.debounce)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-l.C:
			timer.Reset(h.debounce)

		case <-timer.C:
			id, err := PlanID(h.fps, h.agg.Segments())
			if err != nil {
				h.logger.Error("plan id", "error", err)
				continue
			}
			if h.lastID != "" && id == h.lastID {
				h.logger.Debug("audio plan unchanged, skipping handoff", "id", id)
				continue
			}
			if _, err := h.Flush(ctx); err != nil {
				h.logger.Error("audio plan handoff failed", "error", err)
			}
		}
	}
}
