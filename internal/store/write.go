package store

import (
	"context"
	"fmt"

	"github.com/roach88/framescript/internal/audioplan"
)

// Deliver writes plan and its segments to the outbox. It implements
// audioplan.Sink.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: a plan whose id is
// already stored is silently ignored, keeping the seq it was first
// delivered with.
func (s *Store) Deliver(ctx context.Context, plan audioplan.Plan) error {
	if plan.ID == "" {
		return fmt.Errorf("deliver plan %d: id is required", plan.Seq)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deliver plan %d: begin: %w", plan.Seq, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO plans (id, seq, fps, segment_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, plan.ID, plan.Seq, plan.FPS, len(plan.Segments))
	if err != nil {
		return fmt.Errorf("deliver plan %d: %w", plan.Seq, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deliver plan %d: rows affected: %w", plan.Seq, err)
	}
	if inserted == 0 {
		return nil
	}

	for i, seg := range plan.Segments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plan_segments
			(plan_id, ordinal, segment_id, kind, path, project_start_frame, source_start_frame, duration_frames)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			plan.ID,
			i,
			seg.ID,
			string(seg.Source.Kind),
			seg.Source.Path,
			seg.ProjectStartFrame,
			seg.SourceStartFrame,
			seg.DurationFrames,
		)
		if err != nil {
			return fmt.Errorf("deliver plan %d: segment %d: %w", plan.Seq, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("deliver plan %d: commit: %w", plan.Seq, err)
	}
	return nil
}

// MarkDelivered records that the mixer has consumed plan id. Unknown ids
// are an error.
func (s *Store) MarkDelivered(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE plans SET delivered = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark delivered: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark delivered: %w: %s", ErrNotFound, id)
	}
	return nil
}
