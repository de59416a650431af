package anim

import "fmt"

// Kind is the shape of a variable's value.
type Kind string

const (
	KindNumber Kind = "number"
	KindVec2   Kind = "vec2"
	KindVec3   Kind = "vec3"
)

// Value is a number, Vec2 or Vec3. The set is closed.
type Value interface {
	Kind() Kind
	lerp(to Value, t float64) Value
}

// Number is a scalar value.
type Number float64

// Vec2 is a two-component value.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vec3 is a three-component value.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (Number) Kind() Kind { return KindNumber }
func (Vec2) Kind() Kind   { return KindVec2 }
func (Vec3) Kind() Kind   { return KindVec3 }

func (n Number) lerp(to Value, t float64) Value {
	b := to.(Number)
	return n + (b-n)*Number(t)
}

func (v Vec2) lerp(to Value, t float64) Value {
	b := to.(Vec2)
	return Vec2{
		X: v.X + (b.X-v.X)*t,
		Y: v.Y + (b.Y-v.Y)*t,
	}
}

func (v Vec3) lerp(to Value, t float64) Value {
	b := to.(Vec3)
	return Vec3{
		X: v.X + (b.X-v.X)*t,
		Y: v.Y + (b.Y-v.Y)*t,
		Z: v.Z + (b.Z-v.Z)*t,
	}
}

// Lerp interpolates component-wise between from and to. Both must share a
// kind.
func Lerp(from, to Value, t float64) (Value, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("lerp: nil value")
	}
	if from.Kind() != to.Kind() {
		return nil, fmt.Errorf("lerp: kind mismatch (%s vs %s)", from.Kind(), to.Kind())
	}
	return from.lerp(to, t), nil
}

// ValueOf converts a decoded scene value into a Value.
//
// Accepted shapes: a number, a []float64 of length 2 or 3, or a map with
// x, y and optionally z.
func ValueOf(raw any) (Value, error) {
	switch v := raw.(type) {
	case Value:
		return v, nil
	case float64:
		return Number(v), nil
	case int:
		return Number(v), nil
	case []float64:
		return vecOf(v)
	case []any:
		comps := make([]float64, len(v))
		for i, c := range v {
			f, ok := toFloat(c)
			if !ok {
				return nil, fmt.Errorf("component %d: not a number", i)
			}
			comps[i] = f
		}
		return vecOf(comps)
	case map[string]any:
		x, okX := toFloat(v["x"])
		y, okY := toFloat(v["y"])
		if !okX || !okY {
			return nil, fmt.Errorf("vector needs numeric x and y")
		}
		if zRaw, ok := v["z"]; ok {
			z, okZ := toFloat(zRaw)
			if !okZ {
				return nil, fmt.Errorf("vector z is not a number")
			}
			return Vec3{X: x, Y: y, Z: z}, nil
		}
		return Vec2{X: x, Y: y}, nil
	default:
		return nil, fmt.Errorf("unsupported value shape %T", raw)
	}
}

func vecOf(c []float64) (Value, error) {
	switch len(c) {
	case 2:
		return Vec2{X: c[0], Y: c[1]}, nil
	case 3:
		return Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
	default:
		return nil, fmt.Errorf("vector must have 2 or 3 components, got %d", len(c))
	}
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Format renders v with three decimals, for traces and golden files.
func Format(v Value) string {
	switch val := v.(type) {
	case Number:
		return fmt.Sprintf("%.3f", float64(val))
	case Vec2:
		return fmt.Sprintf("(%.3f, %.3f)", val.X, val.Y)
	case Vec3:
		return fmt.Sprintf("(%.3f, %.3f, %.3f)", val.X, val.Y, val.Z)
	default:
		return "<nil>"
	}
}
