package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aklerup/keyline/internal/models"
)

func box() *models.AnimatedElement {
	return &models.AnimatedElement{
		ID: "box",
		InitialState: models.PropertyMap{
			"x":       models.Num(100),
			"y":       models.Num(50),
			"opacity": models.Num(0),
			"fill":    models.Str("red"),
		},
		Animation: &models.Animation{
			StartTime: 1,
			Duration:  2,
			Easing:    "linear",
			EndState: models.PropertyMap{
				"x":       models.Num(300),
				"opacity": models.Num(1),
				"fill":    models.Str("blue"),
			},
		},
	}
}

func TestStateAtBeforeStartReturnsInitial(t *testing.T) {
	ip := &Interpolator{}
	state := ip.StateAt(box(), 0.5)
	require.Equal(t, models.Num(100), state["x"])
	require.Equal(t, models.Num(0), state["opacity"])
	require.Equal(t, models.Str("red"), state["fill"])
}

func TestStateAtBoundaries(t *testing.T) {
	ip := &Interpolator{}
	element := box()

	atStart := ip.StateAt(element, 1)
	require.Equal(t, models.Num(100), atStart["x"])
	require.Equal(t, models.Num(50), atStart["y"])

	atEnd := ip.StateAt(element, 3)
	require.Equal(t, models.Num(300), atEnd["x"])
	require.Equal(t, models.Num(1), atEnd["opacity"])
	require.Equal(t, models.Str("blue"), atEnd["fill"])
	// Omitted from the end state: passes through.
	require.Equal(t, models.Num(50), atEnd["y"])

	past := ip.StateAt(element, 99)
	require.Equal(t, atEnd, past)
}

func TestStateAtMidpointLinear(t *testing.T) {
	ip := &Interpolator{}
	state := ip.StateAt(box(), 2)
	require.InDelta(t, 200, state["x"].Number, 1e-12)
	require.InDelta(t, 0.5, state["opacity"].Number, 1e-12)
	require.Equal(t, models.Num(50), state["y"])
}

func TestStateAtDiscreteStepChange(t *testing.T) {
	ip := &Interpolator{}
	element := box()

	// Linear easing: eased progress == raw progress.
	require.Equal(t, models.Str("red"), ip.StateAt(element, 1.9)["fill"])
	require.Equal(t, models.Str("red"), ip.StateAt(element, 2.0)["fill"], "switch requires eased > 0.5")
	require.Equal(t, models.Str("blue"), ip.StateAt(element, 2.1)["fill"])
}

func TestStateAtIdempotent(t *testing.T) {
	ip := &Interpolator{}
	element := box()
	for _, at := range []float64{0, 1, 1.7, 2.4, 3, 10} {
		first := ip.StateAt(element, at)
		second := ip.StateAt(element, at)
		require.Equal(t, first, second, "t=%v", at)
	}
}

func TestStateAtNoAnimation(t *testing.T) {
	ip := &Interpolator{}
	element := &models.AnimatedElement{
		ID:           "static",
		InitialState: models.PropertyMap{"x": models.Num(10)},
	}
	state := ip.StateAt(element, 42)
	require.Equal(t, models.Num(10), state["x"])

	// The returned map is a copy; mutating it cannot leak back.
	state["x"] = models.Num(99)
	require.Equal(t, models.Num(10), element.InitialState["x"])
}

func TestStateAtEasedProgress(t *testing.T) {
	ip := &Interpolator{}
	element := box()
	element.Animation.Easing = "ease-in"

	// progress 0.5, eased 0.25.
	state := ip.StateAt(element, 2)
	require.InDelta(t, 150, state["x"].Number, 1e-12)
}

func TestRotationWrap(t *testing.T) {
	element := &models.AnimatedElement{
		ID:           "dial",
		InitialState: models.PropertyMap{"rotation": models.Num(350)},
		Animation: &models.Animation{
			StartTime: 0,
			Duration:  1,
			Easing:    "linear",
			EndState:  models.PropertyMap{"rotation": models.Num(10)},
		},
	}

	wrapping := &Interpolator{WrapRotation: true}
	state := wrapping.StateAt(element, 0.5)
	require.InDelta(t, 360, state["rotation"].Number, 1e-12, "halfway through the short 20 degree arc")

	plain := &Interpolator{}
	state = plain.StateAt(element, 0.5)
	require.InDelta(t, 180, state["rotation"].Number, 1e-12, "no wrap goes the long way")
}

func TestStateAtNilElement(t *testing.T) {
	ip := &Interpolator{}
	require.Nil(t, ip.StateAt(nil, 0))
}
