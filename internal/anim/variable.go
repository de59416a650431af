package anim

// Segment is one interpolation interval over inclusive frames [Start, End].
type Segment struct {
	Start  int
	End    int
	From   Value
	To     Value
	Easing Easing
}

// Sample evaluates the segment at frame, clamping outside its range.
// A single-frame segment always yields To.
func (s Segment) Sample(frame int) Value {
	span := s.End - s.Start
	if span <= 0 {
		return s.To
	}
	t := float64(frame-s.Start) / float64(span)
	t = min(1, max(0, t))
	if s.Easing != nil {
		t = s.Easing(t)
	}
	return s.From.lerp(s.To, t)
}

// Variable is an animated value of a fixed Kind.
//
// Variables are not safe for concurrent mutation; the composition runtime
// drives them from one goroutine.
type Variable struct {
	id       string
	kind     Kind
	initial  Value
	segments []Segment
	owner    OwnerID
}

// NewVariable creates a variable holding initial. Its kind is fixed from
// then on.
func NewVariable(id string, initial Value) *Variable {
	return &Variable{
		id:      id,
		kind:    initial.Kind(),
		initial: initial,
	}
}

// ID returns the variable's name.
func (v *Variable) ID() string { return v.id }

// Kind returns the variable's shape.
func (v *Variable) Kind() Kind { return v.kind }

// Initial returns the value before the first segment.
func (v *Variable) Initial() Value { return v.initial }

// Owner returns the id of the animation currently holding the variable.
func (v *Variable) Owner() OwnerID { return v.owner }

// SetInitial replaces the initial value. A value of another kind is
// rejected and the variable is left unchanged.
func (v *Variable) SetInitial(val Value) error {
	if val.Kind() != v.kind {
		return NewShapeMismatchError(v.id, v.owner, v.kind, val.Kind())
	}
	v.initial = val
	return nil
}

// Segments returns a copy of the segment list.
func (v *Variable) Segments() []Segment {
	return append([]Segment(nil), v.segments...)
}

// Get samples the variable at frame.
//
// Before the first segment it holds Initial; inside a segment it
// interpolates; between and after segments it holds the last finished
// segment's To.
func (v *Variable) Get(frame int) Value {
	value := v.initial
	for _, seg := range v.segments {
		if frame < seg.Start {
			return value
		}
		if frame <= seg.End {
			return seg.Sample(frame)
		}
		value = seg.To
	}
	return value
}

// Sample is Get with the result asserted to T. The zero T is returned when
// the variable holds another kind.
func Sample[T Value](v *Variable, frame int) T {
	val, _ := v.Get(frame).(T)
	return val
}

// lastEnd returns the end frame of the last segment, or -1.
func (v *Variable) lastEnd() int {
	if len(v.segments) == 0 {
		return -1
	}
	return v.segments[len(v.segments)-1].End
}

func (v *Variable) release(owner OwnerID) {
	if v.owner != owner {
		return
	}
	v.owner = 0
	v.segments = nil
}
