package timeline

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietRegistry() *Registry {
	return New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestRegistry_RegisterLastWriterWins(t *testing.T) {
	r := quietRegistry()

	require.NoError(t, r.Register(ClipNode{ID: "a", AbsoluteStart: 0, AbsoluteEnd: 9}))
	require.NoError(t, r.Register(ClipNode{ID: "b", AbsoluteStart: 10, AbsoluteEnd: 19}))
	require.NoError(t, r.Register(ClipNode{ID: "a", AbsoluteStart: 5, AbsoluteEnd: 9}))

	snap := r.Snapshot()
	require.Len(t, snap.Clips, 2)
	assert.Equal(t, "b", snap.Clips[0].ID)
	assert.Equal(t, "a", snap.Clips[1].ID, "re-registered id moves to the end")

	a, ok := snap.Clip("a")
	require.True(t, ok)
	assert.Equal(t, 5, a.AbsoluteStart)
}

func TestRegistry_IdenticalRegisterDoesNotNotify(t *testing.T) {
	r := quietRegistry()

	notified := 0
	r.Changes().Subscribe(func(Snapshot) { notified++ })

	node := ClipNode{ID: "a", AbsoluteStart: 0, AbsoluteEnd: 9}
	require.NoError(t, r.Register(node))
	require.NoError(t, r.Register(node))

	assert.Equal(t, 1, notified)
}

func TestRegistry_UnregisterClearsHidden(t *testing.T) {
	r := quietRegistry()

	require.NoError(t, r.Register(ClipNode{ID: "a", AbsoluteEnd: 9}))
	r.SetVisible("a", false)
	require.True(t, r.Snapshot().Hidden["a"])

	r.Unregister("a")

	snap := r.Snapshot()
	assert.Empty(t, snap.Clips)
	assert.False(t, snap.Hidden["a"])
}

func TestRegistry_UnregisterUnknownDoesNotNotify(t *testing.T) {
	r := quietRegistry()

	notified := 0
	r.Changes().Subscribe(func(Snapshot) { notified++ })
	r.Unregister("missing")

	assert.Equal(t, 0, notified)
}

func TestRegistry_VisibilityCascade(t *testing.T) {
	r := quietRegistry()

	require.NoError(t, r.Register(ClipNode{ID: "root", AbsoluteEnd: 99, Depth: 0}))
	require.NoError(t, r.Register(ClipNode{ID: "child", AbsoluteEnd: 50, Depth: 1, ParentID: "root"}))
	require.NoError(t, r.Register(ClipNode{ID: "leaf", AbsoluteEnd: 20, Depth: 2, ParentID: "child"}))

	assert.True(t, r.Visible("leaf"))

	r.SetVisible("root", false)
	assert.False(t, r.Visible("root"))
	assert.False(t, r.Visible("child"), "descendant's own flag is clear")
	assert.False(t, r.Visible("leaf"), "descendant's own flag is clear")

	r.SetVisible("root", true)
	assert.True(t, r.Visible("leaf"))

	r.SetVisible("child", false)
	assert.True(t, r.Visible("root"))
	assert.False(t, r.Visible("leaf"))
}

func TestRegistry_SetVisibleIdempotent(t *testing.T) {
	r := quietRegistry()

	notified := 0
	r.Changes().Subscribe(func(Snapshot) { notified++ })

	r.SetVisible("a", true)
	r.SetVisible("a", false)
	r.SetVisible("a", false)

	assert.Equal(t, 1, notified)
}

func TestRegistry_RejectsCycle(t *testing.T) {
	r := quietRegistry()

	require.NoError(t, r.Register(ClipNode{ID: "a", Depth: 0, ParentID: "b"}))
	require.NoError(t, r.Register(ClipNode{ID: "c", Depth: 1, ParentID: "a"}))

	err := r.Register(ClipNode{ID: "b", Depth: 2, ParentID: "c"})
	assert.ErrorIs(t, err, ErrParentCycle)

	err = r.Register(ClipNode{ID: "self", ParentID: "self"})
	assert.ErrorIs(t, err, ErrParentCycle)
}

func TestRegistry_RejectsDepthMismatch(t *testing.T) {
	r := quietRegistry()

	require.NoError(t, r.Register(ClipNode{ID: "p", Depth: 0}))
	err := r.Register(ClipNode{ID: "c", Depth: 3, ParentID: "p"})
	assert.ErrorIs(t, err, ErrDepthMismatch)
	_, ok := r.Snapshot().Clip("c")
	assert.False(t, ok)
}

func TestRegistry_SnapshotsAreImmutable(t *testing.T) {
	r := quietRegistry()

	require.NoError(t, r.Register(ClipNode{ID: "a", AbsoluteEnd: 1}))
	before := r.Snapshot()

	require.NoError(t, r.Register(ClipNode{ID: "b", AbsoluteEnd: 1}))
	r.SetVisible("a", false)

	assert.Len(t, before.Clips, 1)
	assert.False(t, before.Hidden["a"])
	assert.Greater(t, r.Snapshot().Version, before.Version)
}

func TestRegistry_SubscriberSeesCompleteSnapshot(t *testing.T) {
	r := quietRegistry()

	var seen []int
	r.Changes().Subscribe(func(s Snapshot) {
		seen = append(seen, len(r.Snapshot().Clips))
		assert.Equal(t, len(s.Clips), len(r.Snapshot().Clips))
	})

	require.NoError(t, r.Register(ClipNode{ID: "a"}))
	require.NoError(t, r.Register(ClipNode{ID: "b"}))

	assert.Equal(t, []int{1, 2}, seen)
}

func TestRegistry_SubscriberMayWriteBack(t *testing.T) {
	r := quietRegistry()

	var versions []uint64
	r.Changes().Subscribe(func(s Snapshot) {
		versions = append(versions, s.Version)
		if _, ok := s.Clip("a"); ok && !s.Hidden["a"] && len(versions) == 1 {
			r.SetVisible("a", false)
		}
	})

	done := make(chan error, 1)
	go func() { done <- r.Register(ClipNode{ID: "a", AbsoluteEnd: 9}) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Register did not return when a subscriber wrote back")
	}

	assert.True(t, r.Snapshot().Hidden["a"])
	require.Len(t, versions, 2)
	assert.Less(t, versions[0], versions[1])
}

func TestRegistry_ListenerEndsOnLatestVersion(t *testing.T) {
	r := quietRegistry()
	l := r.Changes().Listen()
	defer r.Changes().Unlisten(l)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i))
			for n := range 25 {
				r.SetVisible(id, n%2 == 1)
			}
		}()
	}
	wg.Wait()

	require.Len(t, l.C, 1)
	assert.Equal(t, r.Snapshot().Version, (<-l.C).Version)
}

func TestSnapshot_VisibleStopsOnLoop(t *testing.T) {
	s := emptySnapshot().
		withClip(ClipNode{ID: "a", ParentID: "b"}).
		withClip(ClipNode{ID: "b", ParentID: "a"})

	assert.True(t, s.Visible("a"))
}
