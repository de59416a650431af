package clip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Clamping(t *testing.T) {
	parent := Parent{Window: Window{Start: 1, End: 5}, Depth: 0, ID: "p"}

	r := Resolve(Span(2, 10), parent)

	assert.Equal(t, 3, r.AbsStart)
	assert.Equal(t, 11, r.AbsEnd)
	assert.Equal(t, Window{Start: 3, End: 5}, r.Window)
	assert.Equal(t, 1, r.Depth)
	assert.True(t, r.HasSpan())
}

func TestResolve_RootParent(t *testing.T) {
	r := Resolve(For(10, 30), RootParent())

	assert.Equal(t, Window{Start: 10, End: 39}, r.Window)
	assert.Equal(t, 0, r.Depth)
	assert.Equal(t, 30, r.Window.Len())
}

func TestResolve_ClampsNegativeStart(t *testing.T) {
	parent := Parent{Window: Window{Start: 100, End: 200}}

	r := Resolve(Span(-20, 10), parent)

	assert.Equal(t, 80, r.AbsStart)
	assert.Equal(t, Window{Start: 100, End: 110}, r.Window)
}

func TestResolve_Degenerate(t *testing.T) {
	parent := Parent{Window: Window{Start: 0, End: 9}}

	tests := []struct {
		name string
		decl Decl
	}{
		{"zero duration", For(3, 0)},
		{"negative duration", For(3, -5)},
		{"starts after parent end", Span(20, 30)},
		{"inverted", Span(5, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve(tt.decl, parent)
			assert.False(t, r.HasSpan())
			assert.False(t, r.Active(r.Window.Start, true))
			assert.Equal(t, 0, r.Window.Len())
		})
	}
}

func TestResolve_SubsetOfParent(t *testing.T) {
	parent := Parent{Window: Window{Start: 10, End: 50}}
	for start := -20; start < 60; start += 7 {
		for end := start - 3; end < 80; end += 11 {
			r := Resolve(Span(start, end), parent)
			if !r.HasSpan() {
				continue
			}
			assert.GreaterOrEqual(t, r.Window.Start, parent.Window.Start)
			assert.LessOrEqual(t, r.Window.End, parent.Window.End)
		}
	}
}

func TestResolve_DegenerateChildrenStayEmpty(t *testing.T) {
	r := Resolve(For(0, 0), RootParent())
	child := Resolve(Span(0, 100), r.Child("empty", ""))

	assert.False(t, child.HasSpan())
	assert.Equal(t, 1, child.Depth)
}

func TestResolved_Active(t *testing.T) {
	r := Resolve(Span(10, 20), RootParent())

	assert.False(t, r.Active(9, true))
	assert.True(t, r.Active(10, true))
	assert.True(t, r.Active(20, true))
	assert.False(t, r.Active(21, true))
	assert.False(t, r.Active(15, false), "hidden")
}

func TestResolved_Local(t *testing.T) {
	r := Resolve(Span(10, 20), RootParent())
	assert.Equal(t, 0, r.Local(10))
	assert.Equal(t, 5, r.Local(15))
}

func TestDecl_For(t *testing.T) {
	d := For(4, 3)
	assert.Equal(t, Decl{Start: 4, End: 6}, d)
	assert.Equal(t, 3, d.Duration())
}
