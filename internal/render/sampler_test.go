package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aklerup/keyline/internal/easing"
	"github.com/aklerup/keyline/internal/interp"
	"github.com/aklerup/keyline/internal/models"
)

func slidingBox() *models.AnimatedElement {
	return &models.AnimatedElement{
		ID:   "box",
		Name: "box",
		InitialState: models.PropertyMap{
			"x": models.Num(0),
		},
		Animation: &models.Animation{
			StartTime: 0,
			Duration:  1,
			Easing:    easing.Linear,
			EndState: models.PropertyMap{
				"x": models.Num(100),
			},
		},
	}
}

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 0, FrameCount(0, 30))
	assert.Equal(t, 0, FrameCount(10, 0))
	assert.Equal(t, 31, FrameCount(1, 30))
	assert.Equal(t, 11, FrameCount(1, 10))
}

func TestSampleProducesOrderedFrames(t *testing.T) {
	s := NewSampler(&interp.Interpolator{})
	elements := []*models.AnimatedElement{slidingBox()}

	frames, err := s.Sample(context.Background(), elements, 1, 10)
	require.NoError(t, err)
	require.Len(t, frames, 11)

	for i, frame := range frames {
		assert.Equal(t, i, frame.Index)
		assert.InDelta(t, float64(i)/10, frame.Time, 1e-9)

		state := frame.States["box"]
		require.NotNil(t, state)
		assert.InDelta(t, frame.Time*100, state["x"].Number, 1e-9)
	}
}

func TestSampleFinalFrameClampsToDuration(t *testing.T) {
	s := NewSampler(&interp.Interpolator{})
	frames, err := s.Sample(context.Background(), []*models.AnimatedElement{slidingBox()}, 0.95, 10)
	require.NoError(t, err)

	last := frames[len(frames)-1]
	assert.InDelta(t, 0.95, last.Time, 1e-9)
	assert.InDelta(t, 95.0, last.States["box"]["x"].Number, 1e-9)
}

func TestSampleRejectsBadArguments(t *testing.T) {
	s := NewSampler(&interp.Interpolator{})

	_, err := s.Sample(context.Background(), nil, 0, 30)
	require.Error(t, err)

	_, err = s.Sample(context.Background(), nil, 10, -1)
	require.Error(t, err)
}

func TestSampleHonorsCancellation(t *testing.T) {
	s := NewSampler(&interp.Interpolator{})
	s.Workers = 1

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Sample(ctx, []*models.AnimatedElement{slidingBox()}, 60, 60)
	require.Error(t, err)
}

func TestSampleAtSingleFrame(t *testing.T) {
	s := NewSampler(&interp.Interpolator{})

	frame := s.SampleAt([]*models.AnimatedElement{slidingBox(), nil}, 0.5)
	assert.InDelta(t, 50.0, frame.States["box"]["x"].Number, 1e-9)
	assert.Len(t, frame.States, 1)
}
