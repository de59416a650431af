package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framescript/internal/audioplan"
)

var _ audioplan.Sink = (*Store)(nil)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testPlan(t *testing.T, seq int64, segments ...audioplan.Segment) audioplan.Plan {
	t.Helper()
	plan, err := audioplan.NewPlan(seq, 30, segments)
	require.NoError(t, err)
	return plan
}

func sound(id, path string, start, duration int) audioplan.Segment {
	return audioplan.Segment{
		ID:                id,
		Source:            audioplan.Source{Kind: audioplan.SourceSound, Path: path},
		ProjectStartFrame: start,
		DurationFrames:    duration,
	}
}

func TestOpen_CreatesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	var count int
	require.NoError(t, s2.DB().QueryRow("SELECT COUNT(*) FROM plans").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestOpen_Pragmas(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestDeliver_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	video := audioplan.Segment{
		ID:                "seg-2",
		Source:            audioplan.Source{Kind: audioplan.SourceVideo, Path: "intro.mp4"},
		ProjectStartFrame: 30,
		SourceStartFrame:  5,
		DurationFrames:    10,
	}
	plan := testPlan(t, 1, sound("seg-1", "a.wav", 0, 30), video)
	require.NoError(t, s.Deliver(ctx, plan))

	got, err := s.Plan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan, got)
}

func TestDeliver_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first := testPlan(t, 1, sound("seg-1", "a.wav", 0, 30))
	again := first
	again.Seq = 2

	require.NoError(t, s.Deliver(ctx, first))
	require.NoError(t, s.Deliver(ctx, again))

	got, err := s.Plan(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Seq, "first delivery wins")
	assert.Len(t, got.Segments, 1)

	var rows int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM plan_segments").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestDeliver_EmptyPlan(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	plan := testPlan(t, 1)
	require.NoError(t, s.Deliver(ctx, plan))

	got, err := s.Plan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, []audioplan.Segment{}, got.Segments)
}

func TestDeliver_RequiresID(t *testing.T) {
	s := openTestStore(t)
	err := s.Deliver(context.Background(), audioplan.Plan{Seq: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
}

func TestPlan_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Plan(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPendingAndMarkDelivered(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []audioplan.Plan{}, pending)

	p1 := testPlan(t, 1, sound("seg-1", "a.wav", 0, 30))
	p2 := testPlan(t, 2, sound("seg-1", "a.wav", 0, 45))
	require.NoError(t, s.Deliver(ctx, p2))
	require.NoError(t, s.Deliver(ctx, p1))

	pending, err = s.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, p1, pending[0])
	assert.Equal(t, p2, pending[1])

	require.NoError(t, s.MarkDelivered(ctx, p1.ID))
	pending, err = s.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, p2.ID, pending[0].ID)

	assert.ErrorIs(t, s.MarkDelivered(ctx, "missing"), ErrNotFound)
}

func TestLatestAndLastSeq(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, ok, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.Deliver(ctx, testPlan(t, 4, sound("seg-1", "a.wav", 0, 30))))
	latest := testPlan(t, 7, sound("seg-1", "b.wav", 0, 30))
	require.NoError(t, s.Deliver(ctx, latest))

	got, ok, err := s.Latest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, latest, got)

	seq, err = s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
	assert.Equal(t, int64(8), audioplan.NewCounterAt(seq).Next())
}

func TestHandoffIntoStore(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	agg := audioplan.NewAggregator()
	agg.Register(sound("seg-1", "a.wav", 0, 30))
	h := audioplan.NewHandoff(agg, 30, s)

	plan, err := h.Flush(ctx)
	require.NoError(t, err)

	got, ok, err := s.Latest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, plan, got)
}
