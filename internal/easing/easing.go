// Package easing provides the normalized-progress remapping functions used
// by the keyframe interpolator. Every function maps t in [0,1] to [0,1]
// with ease(0) == 0 and ease(1) == 1 exactly.
package easing

import (
	"math"
	"sync"

	"github.com/aklerup/keyline/internal/logging"
)

// Func remaps normalized progress.
type Func func(t float64) float64

// Canonical easing names.
const (
	Linear         = "linear"
	EaseIn         = "ease-in"
	EaseOut        = "ease-out"
	EaseInOut      = "ease-in-out"
	Bounce         = "bounce"
	Elastic        = "elastic"
	EaseInOutCubic = "ease-in-out-cubic"
)

// Names lists the known easing names in display order.
var Names = []string{Linear, EaseIn, EaseOut, EaseInOut, Bounce, Elastic, EaseInOutCubic}

var functions = map[string]Func{
	Linear:         LinearFunc,
	EaseIn:         EaseInFunc,
	EaseOut:        EaseOutFunc,
	EaseInOut:      EaseInOutFunc,
	Bounce:         BounceFunc,
	Elastic:        ElasticFunc,
	EaseInOutCubic: EaseInOutCubicFunc,
}

var (
	warnOnce sync.Mutex
	warned   = map[string]struct{}{}
)

// ByName resolves an easing function. Unknown names degrade to linear;
// the mismatch only affects aesthetics, so it is logged once per name
// rather than surfaced as an error.
func ByName(name string) Func {
	if fn, ok := functions[name]; ok {
		return fn
	}

	warnOnce.Lock()
	if _, seen := warned[name]; !seen {
		warned[name] = struct{}{}
		logger := logging.Component("easing")
		logger.Warn().
			Str("easing", name).
			Msg("unknown easing name, falling back to linear")
	}
	warnOnce.Unlock()

	return LinearFunc
}

// Apply resolves name and evaluates it at t.
func Apply(name string, t float64) float64 {
	return ByName(name)(t)
}

// LinearFunc is the identity curve.
func LinearFunc(t float64) float64 {
	return t
}

// EaseInFunc accelerates from rest: t².
func EaseInFunc(t float64) float64 {
	return t * t
}

// EaseOutFunc decelerates to rest: 1-(1-t)².
func EaseOutFunc(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// EaseInOutFunc accelerates then decelerates, continuous at t=0.5.
func EaseInOutFunc(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - 2*(1-t)*(1-t)
}

// BounceFunc is a piecewise quadratic with four bands, rebounding toward 1
// three times with decreasing amplitude before settling there. Band
// boundaries sit at 1/2.75, 2/2.75 and 2.5/2.75; each band evaluates
// 7.5625·u² + c for u shifted into the band.
func BounceFunc(t float64) float64 {
	switch {
	case t < 1/2.75:
		return 7.5625 * t * t
	case t < 2/2.75:
		t -= 1.5 / 2.75
		return 7.5625*t*t + 0.75
	case t < 2.5/2.75:
		t -= 2.25 / 2.75
		return 7.5625*t*t + 0.9375
	default:
		t -= 2.625 / 2.75
		return 7.5625*t*t + 0.984375
	}
}

// ElasticFunc overshoots with an exponentially damped sine wave. Exact at
// the endpoints by construction.
func ElasticFunc(t float64) float64 {
	if t == 0 || t == 1 {
		return t
	}
	const p = 0.3
	const s = p / 4
	return 2*math.Pow(2, -10*t)*math.Sin((t-s)*(2*math.Pi)/p) + 1
}

// EaseInOutCubicFunc is the cubic smooth in-out curve.
func EaseInOutCubicFunc(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
