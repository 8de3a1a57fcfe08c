// Package render samples interpolated element states at a fixed frame
// rate. It produces state vectors for a downstream renderer and never
// draws pixels itself.
package render

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/aklerup/keyline/internal/interp"
	"github.com/aklerup/keyline/internal/logging"
	"github.com/aklerup/keyline/internal/models"
)

// Frame is the sampled state of every element at one instant.
type Frame struct {
	// Index is the frame number, starting at zero.
	Index int

	// Time is the frame's timeline position in seconds.
	Time float64

	// States maps element ID to its interpolated property state.
	States map[string]models.PropertyMap
}

// Sampler computes frame sequences from animated elements.
type Sampler struct {
	interpolator *interp.Interpolator

	// Workers bounds the number of concurrent frame computations.
	// Zero means one worker per CPU.
	Workers int
}

// NewSampler builds a sampler over the given interpolator.
func NewSampler(interpolator *interp.Interpolator) *Sampler {
	return &Sampler{interpolator: interpolator}
}

// FrameCount returns the number of frames covering duration at fps,
// including the frame at t=0.
func FrameCount(duration, fps float64) int {
	if duration <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Ceil(duration*fps)) + 1
}

// Sample computes every frame in [0, duration] at fps. Frames are
// computed concurrently; the returned slice is in frame order.
func (s *Sampler) Sample(ctx context.Context, elements []*models.AnimatedElement, duration, fps float64) ([]Frame, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %.3f", duration)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %.3f", fps)
	}

	count := FrameCount(duration, fps)
	frames := make([]Frame, count)

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := math.Min(float64(i)/fps, duration)
			frames[i] = Frame{
				Index:  i,
				Time:   t,
				States: s.sampleAt(elements, t),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger := logging.Component("render")
	logger.Debug().
		Int("frames", count).
		Float64("fps", fps).
		Float64("duration", duration).
		Msg("sampled frame sequence")
	return frames, nil
}

// SampleAt computes a single frame at an arbitrary time.
func (s *Sampler) SampleAt(elements []*models.AnimatedElement, t float64) Frame {
	return Frame{
		Time:   t,
		States: s.sampleAt(elements, t),
	}
}

func (s *Sampler) sampleAt(elements []*models.AnimatedElement, t float64) map[string]models.PropertyMap {
	states := make(map[string]models.PropertyMap, len(elements))
	for _, element := range elements {
		if element == nil {
			continue
		}
		states[element.ID] = s.interpolator.StateAt(element, t)
	}
	return states
}
