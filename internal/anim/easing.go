package anim

import (
	"math"
	"sort"
)

// Easing maps linear progress t in [0,1] to eased progress.
// A nil Easing is linear.
type Easing func(t float64) float64

func Linear(t float64) float64 { return t }

func EaseInQuad(t float64) float64 { return t * t }

func EaseOutQuad(t float64) float64 { return t * (2 - t) }

func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func EaseInCubic(t float64) float64 { return t * t * t }

func EaseOutCubic(t float64) float64 {
	u := t - 1
	return u*u*u + 1
}

// EaseInOutCubic accelerates until the midpoint, then decelerates.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Smoothstep is the Hermite curve 3t^2 - 2t^3.
func Smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

var easings = map[string]Easing{
	"linear":         Linear,
	"easeInQuad":     EaseInQuad,
	"easeOutQuad":    EaseOutQuad,
	"easeInOutQuad":  EaseInOutQuad,
	"easeInCubic":    EaseInCubic,
	"easeOutCubic":   EaseOutCubic,
	"easeInOutCubic": EaseInOutCubic,
	"smoothstep":     Smoothstep,
}

// EasingByName looks up a named easing. The empty name is linear.
func EasingByName(name string) (Easing, bool) {
	if name == "" {
		return Linear, true
	}
	e, ok := easings[name]
	return e, ok
}

// EasingNames lists the accepted names in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
