package easing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEndpointsExact(t *testing.T) {
	for _, name := range Names {
		fn := ByName(name)
		require.Equal(t, 0.0, fn(0), "%s at 0", name)
		require.Equal(t, 1.0, fn(1), "%s at 1", name)
	}
}

func TestEaseShapes(t *testing.T) {
	// Quadratic in/out at the quarter points.
	require.InDelta(t, 0.0625, EaseInFunc(0.25), 1e-12)
	require.InDelta(t, 0.4375, EaseOutFunc(0.25), 1e-12)

	// In-out is continuous at the join, value 0.5.
	require.InDelta(t, 0.5, EaseInOutFunc(0.5), 1e-12)
	require.InDelta(t, 0.125, EaseInOutFunc(0.25), 1e-12)
	require.InDelta(t, 0.875, EaseInOutFunc(0.75), 1e-12)

	// Cubic variant.
	require.InDelta(t, 0.5, EaseInOutCubicFunc(0.5), 1e-12)
}

func TestBounceBands(t *testing.T) {
	// Analytically, bounce(0.5) = 0.75 + 7.5625/484 = 0.765625.
	require.InDelta(t, 0.765625, BounceFunc(0.5), 1e-9)

	// The curve touches 1 at every band boundary, so straddling a
	// boundary stays continuous.
	const eps = 1e-9
	for _, boundary := range []float64{1 / 2.75, 2 / 2.75, 2.5 / 2.75} {
		require.InDelta(t, 1.0, BounceFunc(boundary-eps), 1e-6)
		require.InDelta(t, 1.0, BounceFunc(boundary+eps), 1e-6)
	}

	// Each rebound bottoms out at its band vertex with the accumulated
	// offset: 0.75, 0.9375, 0.984375.
	require.InDelta(t, 0.75, BounceFunc(1.5/2.75), 1e-12)
	require.InDelta(t, 0.9375, BounceFunc(2.25/2.75), 1e-12)
	require.InDelta(t, 0.984375, BounceFunc(2.625/2.75), 1e-12)

	require.Equal(t, 1.0, BounceFunc(1.0))
	require.Equal(t, 0.0, BounceFunc(0.0))
}

func TestElasticSettles(t *testing.T) {
	require.Equal(t, 0.0, ElasticFunc(0))
	require.Equal(t, 1.0, ElasticFunc(1))

	// Near the end the oscillation has almost fully damped out.
	require.InDelta(t, 1.0, ElasticFunc(0.95), 0.05)
}

func TestUnknownNameFallsBackToLinear(t *testing.T) {
	fn := ByName("wobble")
	for _, v := range []float64{0, 0.25, 0.5, 0.75, 1} {
		require.Equal(t, v, fn(v))
	}
	require.Equal(t, 0.25, Apply("not-an-easing", 0.25))
}

func TestByNameResolvesAllNames(t *testing.T) {
	for _, name := range Names {
		require.NotNil(t, ByName(name), name)
	}
}
