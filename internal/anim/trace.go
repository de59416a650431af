package anim

// Trace is the virtual-time cursor a Script runs against.
type Trace struct {
	anim     *Animation
	owner    OwnerID
	now      int
	maxFrame int
	errs     []error
}

// Now returns the trace's current frame.
func (tr *Trace) Now() int {
	return tr.now
}

// Handle is a pending advance of the trace cursor to EndFrame.
type Handle struct {
	tr       *Trace
	end      int
	resolved bool
}

// EndFrame returns the frame the cursor moves to when the handle resolves.
func (h *Handle) EndFrame() int {
	return h.end
}

// Resolved reports whether the handle has already advanced the cursor.
func (h *Handle) Resolved() bool {
	return h.resolved
}

// Await advances the trace cursor to EndFrame. Only the first call has an
// effect; the cursor never moves backwards.
func (h *Handle) Await() {
	if h.resolved {
		return
	}
	h.resolved = true
	tr := h.tr
	if tr.now < h.end {
		tr.now = h.end
	}
	tr.maxFrame = max(tr.maxFrame, tr.now)
}

// Then resolves the handle and calls fn, which may be nil.
func (h *Handle) Then(fn func()) {
	h.Await()
	if fn != nil {
		fn()
	}
}

func (tr *Trace) handle(end int) *Handle {
	return &Handle{tr: tr, end: end}
}

// Sleep returns a handle ending frames after now. Negative frames count as
// zero.
func (tr *Trace) Sleep(frames int) *Handle {
	return tr.handle(tr.now + max(0, frames))
}

// Parallel returns a handle ending at the latest end frame among handles,
// or at now if that is later. Nil handles are ignored.
func (tr *Trace) Parallel(handles ...*Handle) *Handle {
	end := tr.now
	for _, h := range handles {
		if h != nil {
			end = max(end, h.end)
		}
	}
	return tr.handle(end)
}

// Wait is Parallel(handles...).Await().
func (tr *Trace) Wait(handles ...*Handle) {
	tr.Parallel(handles...).Await()
}

// Move starts a tween on v. The variable is claimed for this trace's owner.
func (tr *Trace) Move(v *Variable) *Move {
	return &Move{tr: tr, v: v}
}

// Move is the builder returned by Trace.Move.
type Move struct {
	tr *Trace
	v  *Variable
}

// To appends a segment from the variable's value at now to value, lasting
// frames frames (at least 1). The returned handle ends one frame after the
// segment; To itself does not advance the cursor.
//
// When the write is rejected (shared variable, shape mismatch, overlap) no
// segment is added and the handle ends at now.
func (m *Move) To(value Value, frames int, easing Easing) *Handle {
	tr := m.tr
	if err := tr.claim(m.v); err != nil {
		tr.fail(err)
		return tr.handle(tr.now)
	}
	if value == nil || value.Kind() != m.v.kind {
		got := Kind("unknown")
		if value != nil {
			got = value.Kind()
		}
		tr.fail(NewShapeMismatchError(m.v.id, tr.owner, m.v.kind, got))
		return tr.handle(tr.now)
	}
	start := tr.now
	if prev := m.v.lastEnd(); start <= prev {
		tr.fail(NewSegmentOverlapError(m.v.id, tr.owner, start, prev))
		return tr.handle(tr.now)
	}

	duration := max(1, frames)
	end := start + duration - 1
	m.v.segments = append(m.v.segments, Segment{
		Start:  start,
		End:    end,
		From:   m.v.Get(start),
		To:     value,
		Easing: easing,
	})
	tr.maxFrame = max(tr.maxFrame, end+1)
	return tr.handle(end + 1)
}

func (tr *Trace) claim(v *Variable) error {
	if v.owner != 0 && v.owner != tr.owner {
		return NewSharedVariableError(v.id, tr.owner, v.owner)
	}
	if v.owner == 0 {
		v.owner = tr.owner
		tr.anim.vars = append(tr.anim.vars, v)
	}
	return nil
}

func (tr *Trace) fail(err error) {
	tr.errs = append(tr.errs, err)
	tr.anim.logger.Warn("animation misuse", "owner", tr.owner, "error", err)
}
