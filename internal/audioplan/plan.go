package audioplan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/roach88/framescript/internal/canon"
)

// Plan is what the external mixer receives.
type Plan struct {
	Seq      int64     `json:"seq"`
	ID       string    `json:"id"`
	FPS      int       `json:"fps"`
	Ready    bool      `json:"ready"`
	Segments []Segment `json:"segments"`
}

// NewPlan builds a ready plan from segments. The ID is a content hash of
// fps and segments, so equal segment sets always share an id.
func NewPlan(seq int64, fps int, segments []Segment) (Plan, error) {
	id, err := PlanID(fps, segments)
	if err != nil {
		return Plan{}, err
	}
	if segments == nil {
		segments = []Segment{}
	}
	return Plan{
		Seq:      seq,
		ID:       id,
		FPS:      fps,
		Ready:    true,
		Segments: segments,
	}, nil
}

// PlanID hashes fps and segments in order.
func PlanID(fps int, segments []Segment) (string, error) {
	arr := make(canon.Array, len(segments))
	for i, s := range segments {
		arr[i] = canon.Object{
			"id":                  canon.String(s.ID),
			"kind":                canon.String(string(s.Source.Kind)),
			"path":                canon.String(s.Source.Path),
			"project_start_frame": canon.Int(s.ProjectStartFrame),
			"source_start_frame":  canon.Int(s.SourceStartFrame),
			"duration_frames":     canon.Int(s.DurationFrames),
		}
	}
	return canon.Hash(canon.DomainPlan, canon.Object{
		"fps":      canon.Int(fps),
		"segments": arr,
	})
}

// Sink receives plans from a Handoff.
type Sink interface {
	Deliver(ctx context.Context, plan Plan) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, plan Plan) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, plan Plan) error {
	return f(ctx, plan)
}

// WriterSink writes each plan as indented JSON.
type WriterSink struct {
	W io.Writer
}

// Deliver implements Sink.
func (s WriterSink) Deliver(_ context.Context, plan Plan) error {
	enc := json.NewEncoder(s.W)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

// Sequencer stamps plans with increasing sequence numbers.
type Sequencer interface {
	Next() int64
}

// Counter is a Sequencer backed by an atomic counter starting at 0.
type Counter struct {
	seq atomic.Int64
}

// NewCounterAt creates a counter whose next value is start + 1. Used to
// resume after the last plan stored in an outbox.
func NewCounterAt(start int64) *Counter {
	c := &Counter{}
	c.seq.Store(start)
	return c
}

// Next implements Sequencer.
func (c *Counter) Next() int64 {
	return c.seq.Add(1)
}
