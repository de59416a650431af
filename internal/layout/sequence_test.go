package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/framescript/internal/clip"
)

func TestSequence_DynamicDurations(t *testing.T) {
	s := NewSequence(0, Item{Key: "a"}, Item{Key: "b"}, Item{Key: "c"})

	s.Report("a", 2)
	s.Report("b", 0)
	s.Report("c", 4)

	assert.Equal(t, []Placement{
		{Key: "a", Start: 0, Duration: 2},
		{Key: "b", Start: 2, Duration: 0},
		{Key: "c", Start: 2, Duration: 4},
	}, s.Layout())
	assert.Equal(t, 6, s.Total())
}

func TestSequence_UnreportedUsesFallback(t *testing.T) {
	s := NewSequence(10, Item{Key: "a", Duration: 5}, Item{Key: "b"}, Item{Key: "c", Duration: 3})

	assert.Equal(t, []Placement{
		{Key: "a", Start: 10, Duration: 5},
		{Key: "b", Start: 15, Duration: 0},
		{Key: "c", Start: 15, Duration: 3},
	}, s.Layout())
	assert.Equal(t, 8, s.Total())

	s.Report("a", 1)
	assert.Equal(t, 4, s.Total(), "reports override the fallback")
}

func TestSequence_ReportIsIdempotent(t *testing.T) {
	s := NewSequence(0, Item{Key: "a"})

	changes := 0
	s.OnChange(func(int) { changes++ })

	assert.True(t, s.Report("a", 7))
	assert.False(t, s.Report("a", 7))
	assert.False(t, s.Report("a", 7))
	assert.Equal(t, 1, changes)

	assert.True(t, s.Report("a", 8))
	assert.Equal(t, 2, changes)
}

func TestSequence_NegativeReportIsZero(t *testing.T) {
	s := NewSequence(0, Item{Key: "a"})
	s.Report("a", -3)
	assert.Equal(t, 0, s.Duration("a"))
	assert.False(t, s.Report("a", 0))
}

func TestSequence_Nesting(t *testing.T) {
	inner := NewSequence(0, Item{Key: "x"}, Item{Key: "y"})
	outer := NewSequence(0, Item{Key: "first"}, Item{Key: "inner"}, Item{Key: "last"})
	inner.OnChange(func(total int) { outer.Report("inner", total) })

	outer.Report("first", 10)
	inner.Report("x", 3)
	inner.Report("y", 4)
	outer.Report("last", 1)

	assert.Equal(t, []Placement{
		{Key: "first", Start: 0, Duration: 10},
		{Key: "inner", Start: 10, Duration: 7},
		{Key: "last", Start: 17, Duration: 1},
	}, outer.Layout())
	assert.Equal(t, 18, outer.Total())
}

func TestSerial(t *testing.T) {
	got := Serial([]clip.Decl{
		clip.Span(5, 9),
		clip.Span(0, 2),
		clip.Span(100, 100),
		clip.Span(7, 3),
	})

	assert.Equal(t, []clip.Decl{
		clip.Span(5, 9),
		clip.Span(10, 12),
		clip.Span(13, 13),
		clip.Span(14, 14),
	}, got)
}

func TestSerial_Empty(t *testing.T) {
	assert.Nil(t, Serial(nil))
}
