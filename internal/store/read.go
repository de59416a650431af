package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/framescript/internal/audioplan"
)

// ErrNotFound is returned when a plan id is not stored.
var ErrNotFound = errors.New("plan not found")

// Plan returns the stored plan with id, segments in plan order.
func (s *Store) Plan(ctx context.Context, id string) (audioplan.Plan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, fps FROM plans WHERE id = ?
	`, id)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return audioplan.Plan{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return audioplan.Plan{}, fmt.Errorf("read plan: %w", err)
	}
	if plan.Segments, err = s.readSegments(ctx, id); err != nil {
		return audioplan.Plan{}, err
	}
	return plan, nil
}

// Latest returns the plan with the highest seq. ok is false when the
// outbox is empty.
func (s *Store) Latest(ctx context.Context) (plan audioplan.Plan, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, fps FROM plans
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`)
	plan, err = scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return audioplan.Plan{}, false, nil
	}
	if err != nil {
		return audioplan.Plan{}, false, fmt.Errorf("read latest plan: %w", err)
	}
	if plan.Segments, err = s.readSegments(ctx, plan.ID); err != nil {
		return audioplan.Plan{}, false, err
	}
	return plan, true, nil
}

// Pending returns the plans not yet marked delivered, oldest first.
//
// Returns an empty slice (not nil) when nothing is pending.
func (s *Store) Pending(ctx context.Context) ([]audioplan.Plan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, fps FROM plans
		WHERE delivered = 0
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query pending plans: %w", err)
	}

	plans := []audioplan.Plan{}
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate pending plans: %w", err)
	}
	rows.Close()

	// Segments are read after the cursor is closed: the pool has a single
	// connection.
	for i := range plans {
		if plans[i].Segments, err = s.readSegments(ctx, plans[i].ID); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

// LastSeq returns the highest stored seq, 0 when empty. Pass it to
// audioplan.NewCounterAt to continue numbering after a restart.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM plans`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read last seq: %w", err)
	}
	return seq.Int64, nil
}

func (s *Store) readSegments(ctx context.Context, planID string) ([]audioplan.Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT segment_id, kind, path, project_start_frame, source_start_frame, duration_frames
		FROM plan_segments
		WHERE plan_id = ?
		ORDER BY ordinal ASC
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	segments := []audioplan.Segment{}
	for rows.Next() {
		var (
			seg  audioplan.Segment
			kind string
		)
		if err := rows.Scan(
			&seg.ID,
			&kind,
			&seg.Source.Path,
			&seg.ProjectStartFrame,
			&seg.SourceStartFrame,
			&seg.DurationFrames,
		); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		seg.Source.Kind = audioplan.SourceKind(kind)
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return segments, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (audioplan.Plan, error) {
	var plan audioplan.Plan
	if err := row.Scan(&plan.ID, &plan.Seq, &plan.FPS); err != nil {
		return audioplan.Plan{}, err
	}
	plan.Ready = true
	return plan, nil
}
