// Package interp computes an element's property state at an arbitrary
// playback time from its animation descriptor. The computation is total:
// out-of-range times clamp to the nearest defined endpoint, so a render
// loop never stalls on a bad time value.
package interp

import (
	"math"

	"github.com/aklerup/keyline/internal/easing"
	"github.com/aklerup/keyline/internal/models"
)

// Interpolator evaluates animated elements. The zero value is ready to use.
type Interpolator struct {
	// WrapRotation interpolates rotation-like properties the short way
	// around the circle (a 350°→10° move travels 20°, not -340°).
	WrapRotation bool
}

// rotationProperties are treated as angles in degrees when WrapRotation
// is enabled.
var rotationProperties = map[string]struct{}{
	"rotation": {},
	"angle":    {},
}

// StateAt returns the element's property state at time t. Properties
// missing from the animation's end state pass through from the initial
// state; discrete properties step-change once eased progress passes 0.5.
func (ip *Interpolator) StateAt(element *models.AnimatedElement, t float64) models.PropertyMap {
	if element == nil {
		return nil
	}

	anim := element.Animation
	if anim == nil || t < anim.StartTime {
		return element.InitialState.Clone()
	}

	if t >= anim.StartTime+anim.Duration {
		return ip.endState(element)
	}

	progress := (t - anim.StartTime) / anim.Duration
	eased := easing.Apply(anim.Easing, progress)

	state := make(models.PropertyMap, len(element.InitialState))
	for name, initial := range element.InitialState {
		end, animated := anim.EndState[name]
		if !animated {
			state[name] = initial
			continue
		}
		state[name] = ip.blend(name, initial, end, eased)
	}
	return state
}

// endState merges the animation's end state over the initial state, so
// omitted properties keep their initial values.
func (ip *Interpolator) endState(element *models.AnimatedElement) models.PropertyMap {
	state := make(models.PropertyMap, len(element.InitialState))
	for name, initial := range element.InitialState {
		if end, ok := element.Animation.EndState[name]; ok {
			state[name] = end
		} else {
			state[name] = initial
		}
	}
	return state
}

func (ip *Interpolator) blend(name string, initial, end models.PropertyValue, eased float64) models.PropertyValue {
	if !initial.IsNumber || !end.IsNumber {
		// Discrete values switch rather than interpolate.
		if eased > 0.5 {
			return end
		}
		return initial
	}

	from, to := initial.Number, end.Number
	if ip.WrapRotation {
		if _, ok := rotationProperties[name]; ok {
			to = from + shortestAngle(from, to)
		}
	}
	return models.Num(from + (to-from)*eased)
}

// shortestAngle returns the signed degree delta from a to b taking the
// short way around the circle.
func shortestAngle(a, b float64) float64 {
	delta := math.Mod(b-a, 360)
	if delta > 180 {
		delta -= 360
	} else if delta < -180 {
		delta += 360
	}
	return delta
}
