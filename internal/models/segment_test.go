package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentKindDefaultColor(t *testing.T) {
	cases := []struct {
		kind  SegmentKind
		color string
	}{
		{SegmentKindAnimation, "#2196F3"},
		{SegmentKindPause, "#FF9800"},
		{SegmentKindTransition, "#4CAF50"},
		{SegmentKindMarker, "#F44336"},
		{SegmentKindAudio, "#9C27B0"},
		{SegmentKindVideo, "#00BCD4"},
		{SegmentKind("unknown"), "#757575"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.color, tc.kind.DefaultColor(), "kind %s", tc.kind)
	}
}

func TestSegmentKindDefaultSpan(t *testing.T) {
	require.Equal(t, 2.0, SegmentKindAnimation.DefaultSpan())
	require.Equal(t, 0.1, SegmentKindMarker.DefaultSpan())
}

func TestSegmentValidate(t *testing.T) {
	cases := []struct {
		name    string
		segment Segment
		total   float64
		wantErr error
	}{
		{
			name:    "valid",
			segment: Segment{TrackIndex: 0, StartTime: 2, EndTime: 5, Kind: SegmentKindAnimation},
			total:   10,
		},
		{
			name:    "negative start",
			segment: Segment{StartTime: -1, EndTime: 5, Kind: SegmentKindAnimation},
			total:   10,
			wantErr: ErrInvalidRange,
		},
		{
			name:    "inverted range",
			segment: Segment{StartTime: 5, EndTime: 5, Kind: SegmentKindAnimation},
			total:   10,
			wantErr: ErrInvalidRange,
		},
		{
			name:    "end past duration",
			segment: Segment{StartTime: 8, EndTime: 11, Kind: SegmentKindAnimation},
			total:   10,
			wantErr: ErrInvalidRange,
		},
		{
			name:    "bad kind",
			segment: Segment{StartTime: 0, EndTime: 1, Kind: SegmentKind("sparkles")},
			total:   10,
			wantErr: ErrInvalidKind,
		},
		{
			name:    "bad color",
			segment: Segment{StartTime: 0, EndTime: 1, Kind: SegmentKindPause, Color: "blue"},
			total:   10,
			wantErr: ErrInvalidColor,
		},
		{
			name:    "negative track",
			segment: Segment{TrackIndex: -1, StartTime: 0, EndTime: 1, Kind: SegmentKindPause},
			total:   10,
			wantErr: ErrNegativeTrack,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.segment.Validate(tc.total)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.wantErr), "expected %v in %v", tc.wantErr, err)
		})
	}
}

func TestSegmentOverlap(t *testing.T) {
	a := &Segment{StartTime: 2, EndTime: 5}
	b := &Segment{StartTime: 4, EndTime: 7}
	c := &Segment{StartTime: 5, EndTime: 6}

	require.True(t, a.OverlapsSegment(b))
	require.False(t, a.OverlapsSegment(c), "touching edges do not overlap")

	require.True(t, a.OverlapsRange(0, 3))
	require.False(t, a.OverlapsRange(5, 9), "half-open range excludes the end edge")
	require.True(t, a.ContainsTime(5), "containment is inclusive")
}

func TestSegmentApplyDefaults(t *testing.T) {
	s := &Segment{StartTime: 0, EndTime: 1, Kind: SegmentKindAudio}
	s.ApplyDefaults()
	require.Equal(t, "#9C27B0", s.Color)
	require.Equal(t, "New audio", s.Name)

	keep := &Segment{StartTime: 0, EndTime: 1, Kind: SegmentKindAudio, Color: "#111111", Name: "intro"}
	keep.ApplyDefaults()
	require.Equal(t, "#111111", keep.Color)
	require.Equal(t, "intro", keep.Name)
}
