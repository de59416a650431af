package clip

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framescript/internal/timeline"
)

func newRegistry() *timeline.Registry {
	return timeline.New(timeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestMount_RegistersResolvedNode(t *testing.T) {
	reg := newRegistry()
	m := NewMount(reg, "intro", "Intro", "lane-1")

	r, err := m.Update(For(0, 30), RootParent())
	require.NoError(t, err)

	node, ok := reg.Snapshot().Clip("intro")
	require.True(t, ok)
	assert.Equal(t, timeline.ClipNode{
		ID:            "intro",
		AbsoluteStart: 0,
		AbsoluteEnd:   29,
		Depth:         0,
		LaneID:        "lane-1",
		Label:         "Intro",
	}, node)
	assert.Equal(t, r.Window, Window{Start: 0, End: 29})
}

func TestMount_WindowChangeSupersedes(t *testing.T) {
	reg := newRegistry()
	notified := 0
	reg.Changes().Subscribe(func(timeline.Snapshot) { notified++ })

	m := NewMount(reg, "a", "", "")
	_, err := m.Update(For(0, 10), RootParent())
	require.NoError(t, err)
	_, err = m.Update(For(0, 10), RootParent())
	require.NoError(t, err)
	assert.Equal(t, 1, notified, "unchanged window does not re-register")

	_, err = m.Update(For(5, 10), RootParent())
	require.NoError(t, err)
	assert.Equal(t, 2, notified)

	node, _ := reg.Snapshot().Clip("a")
	assert.Equal(t, 5, node.AbsoluteStart)
}

func TestMount_DegenerateIsUnregistered(t *testing.T) {
	reg := newRegistry()
	m := NewMount(reg, "a", "", "")

	_, err := m.Update(For(0, 10), RootParent())
	require.NoError(t, err)
	require.Len(t, reg.Snapshot().Clips, 1)

	_, err = m.Update(For(0, 0), RootParent())
	require.NoError(t, err)
	assert.Empty(t, reg.Snapshot().Clips)
	assert.False(t, m.Active(0))
}

func TestMount_InheritsLane(t *testing.T) {
	reg := newRegistry()
	parent := Parent{Window: Window{Start: 0, End: 99}, Depth: 0, ID: "seq", LaneID: "lane-seq"}

	m := NewMount(reg, "child", "", "")
	_, err := m.Update(Span(0, 9), parent)
	require.NoError(t, err)

	node, _ := reg.Snapshot().Clip("child")
	assert.Equal(t, "lane-seq", node.LaneID)
	assert.Equal(t, "seq", node.ParentID)
	assert.Equal(t, 1, node.Depth)
}

func TestMount_ActiveFollowsVisibility(t *testing.T) {
	reg := newRegistry()

	parent := NewMount(reg, "parent", "", "")
	pr, err := parent.Update(For(0, 100), RootParent())
	require.NoError(t, err)

	child := NewMount(reg, "child", "", "")
	_, err = child.Update(For(10, 10), pr.Child("parent", ""))
	require.NoError(t, err)

	assert.True(t, child.Active(15))

	reg.SetVisible("parent", false)
	assert.False(t, parent.Active(15))
	assert.False(t, child.Active(15))
}

func TestMount_Unmount(t *testing.T) {
	reg := newRegistry()
	m := NewMount(reg, "a", "", "")
	_, err := m.Update(For(0, 5), RootParent())
	require.NoError(t, err)

	m.Unmount()
	m.Unmount()

	assert.Empty(t, reg.Snapshot().Clips)
}
