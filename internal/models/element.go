package models

import (
	"fmt"
)

// PropertyValue holds a single animatable property value. Numeric values
// interpolate; discrete values step-change halfway through the eased
// progress.
type PropertyValue struct {
	Number   float64 `json:"number,omitempty"`
	Discrete string  `json:"discrete,omitempty"`
	IsNumber bool    `json:"is_number"`
}

// Num wraps a numeric property value.
func Num(v float64) PropertyValue {
	return PropertyValue{Number: v, IsNumber: true}
}

// Str wraps a discrete (non-interpolating) property value.
func Str(v string) PropertyValue {
	return PropertyValue{Discrete: v}
}

// Equal reports exact equality of two property values.
func (v PropertyValue) Equal(other PropertyValue) bool {
	if v.IsNumber != other.IsNumber {
		return false
	}
	if v.IsNumber {
		return v.Number == other.Number
	}
	return v.Discrete == other.Discrete
}

func (v PropertyValue) String() string {
	if v.IsNumber {
		return fmt.Sprintf("%g", v.Number)
	}
	return v.Discrete
}

// PropertyMap maps property names (x, y, width, height, opacity, rotation,
// scale, ...) to values.
type PropertyMap map[string]PropertyValue

// Clone returns a copy of the map.
func (m PropertyMap) Clone() PropertyMap {
	if m == nil {
		return nil
	}
	out := make(PropertyMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Animation describes how an element's properties change over time:
// starting at StartTime, over Duration seconds, eased by Easing, toward
// EndState.
type Animation struct {
	StartTime float64     `json:"start_time"`
	Duration  float64     `json:"duration"`
	Easing    string      `json:"easing"`
	EndState  PropertyMap `json:"end_state"`
}

// AnimatedElement is the input contract for the keyframe interpolator.
// InitialState holds the resting property values; Animation, when present,
// describes the single transition applied to them.
type AnimatedElement struct {
	ID           string      `json:"id"`
	Name         string      `json:"name,omitempty"`
	InitialState PropertyMap `json:"initial_state"`
	Animation    *Animation  `json:"animation,omitempty"`
}

// Validate checks the element contract: a positive animation duration and
// every end-state property present in the initial state.
func (e *AnimatedElement) Validate() error {
	validation := &ValidationErrors{}

	if e.ID == "" {
		validation.AddMessage("id", "element id is required")
	}
	if len(e.InitialState) == 0 {
		validation.AddMessage("initial_state", "initial state is required")
	}
	if e.Animation != nil {
		if e.Animation.Duration <= 0 {
			validation.AddMessage("animation.duration", "duration must be positive")
		}
		if e.Animation.StartTime < 0 {
			validation.AddMessage("animation.start_time", "start time must be non-negative")
		}
		for name := range e.Animation.EndState {
			if _, ok := e.InitialState[name]; !ok {
				validation.AddMessage("animation.end_state",
					fmt.Sprintf("property %q missing from initial state", name))
			}
		}
	}

	return validation.Err()
}
