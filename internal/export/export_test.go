package export

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aklerup/keyline/internal/models"
	"github.com/aklerup/keyline/internal/timeline"
)

func buildModel(t *testing.T) *timeline.Model {
	t.Helper()
	m := timeline.New(timeline.WithDuration(12))
	id, err := m.AddSegment(&models.Segment{
		TrackIndex:  0,
		StartTime:   1,
		EndTime:     4,
		Name:        "intro",
		Kind:        models.SegmentKindAnimation,
		Description: "fade the logo in",
	})
	require.NoError(t, err)
	require.NoError(t, m.SetSegmentLocked(id, true))

	id, err = m.AddSegment(&models.Segment{
		TrackIndex: 1,
		StartTime:  4,
		EndTime:    6,
		Name:       "beat",
		Kind:       models.SegmentKindMarker,
	})
	require.NoError(t, err)
	require.NoError(t, m.SetSegmentVisible(id, false))
	return m
}

func TestRoundTrip(t *testing.T) {
	m := buildModel(t)

	data, err := Snapshot(m, "audio/track.wav").Marshal()
	require.NoError(t, err)

	parsed, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "audio/track.wav", parsed.AudioFileRef)
	assert.Equal(t, 12.0, parsed.Duration)

	restored := timeline.New()
	require.NoError(t, parsed.Restore(restored))

	segments := restored.Segments()
	require.Len(t, segments, 2)
	assert.Equal(t, "intro", segments[0].Name)
	assert.Equal(t, models.SegmentKindAnimation, segments[0].Kind)
	assert.Equal(t, "#2196F3", segments[0].Color)
	assert.True(t, segments[0].Locked)
	assert.False(t, segments[0].Hidden)
	assert.Equal(t, "fade the logo in", segments[0].Description)

	assert.Equal(t, "beat", segments[1].Name)
	assert.True(t, segments[1].Hidden)
	assert.Equal(t, 1, segments[1].TrackIndex)
	assert.Equal(t, 12.0, restored.TotalDuration())
}

func TestWireFieldNames(t *testing.T) {
	m := buildModel(t)
	data, err := Snapshot(m, "").Marshal()
	require.NoError(t, err)

	assert.Contains(t, string(data), `"startTime"`)
	assert.Contains(t, string(data), `"trackIndex"`)
	assert.NotContains(t, string(data), `"audioFileRef"`)
}

func TestValidateRejectsBadSegments(t *testing.T) {
	e := &TimelineExport{
		Duration: 10,
		Segments: []SegmentExport{
			{Kind: "animation", StartTime: 2, EndTime: 5, Color: "#112233"},
			{Kind: "animation", StartTime: 8, EndTime: 11, Color: "#112233"},
		},
	}

	err := e.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidRange))
	assert.Contains(t, err.Error(), "segments[1]")
}

func TestValidateRejectsNonPositiveDuration(t *testing.T) {
	e := &TimelineExport{Duration: 0}
	require.Error(t, e.Validate())
}

func TestRestoreLeavesModelUntouchedOnFailure(t *testing.T) {
	m := buildModel(t)
	bad := &TimelineExport{
		Duration: 5,
		Segments: []SegmentExport{
			{Kind: "bogus", StartTime: 0, EndTime: 1},
		},
	}

	require.Error(t, bad.Restore(m))
	assert.Len(t, m.Segments(), 2)
	assert.Equal(t, 12.0, m.TotalDuration())
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte(`{"duration": "ten"}`))
	require.Error(t, err)
}
