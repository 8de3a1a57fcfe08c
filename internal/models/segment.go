package models

import (
	"errors"
	"fmt"
	"regexp"
)

// SegmentKind is the closed set of segment types a track can hold.
type SegmentKind string

const (
	SegmentKindAnimation  SegmentKind = "animation"
	SegmentKindPause      SegmentKind = "pause"
	SegmentKindTransition SegmentKind = "transition"
	SegmentKindMarker     SegmentKind = "marker"
	SegmentKindAudio      SegmentKind = "audio"
	SegmentKindVideo      SegmentKind = "video"
)

// SegmentKinds lists every valid kind, in display order.
var SegmentKinds = []SegmentKind{
	SegmentKindAnimation,
	SegmentKindPause,
	SegmentKindTransition,
	SegmentKindMarker,
	SegmentKindAudio,
	SegmentKindVideo,
}

// IsValid reports whether the kind is a member of the closed set.
func (k SegmentKind) IsValid() bool {
	switch k {
	case SegmentKindAnimation, SegmentKindPause, SegmentKindTransition,
		SegmentKindMarker, SegmentKindAudio, SegmentKindVideo:
		return true
	}
	return false
}

// DefaultColor returns the display color associated with a kind.
func (k SegmentKind) DefaultColor() string {
	switch k {
	case SegmentKindAnimation:
		return "#2196F3"
	case SegmentKindPause:
		return "#FF9800"
	case SegmentKindTransition:
		return "#4CAF50"
	case SegmentKindMarker:
		return "#F44336"
	case SegmentKindAudio:
		return "#9C27B0"
	case SegmentKindVideo:
		return "#00BCD4"
	default:
		return "#757575"
	}
}

// DefaultSpan returns the span in seconds used when a segment of this kind
// is created from an empty-space gesture.
func (k SegmentKind) DefaultSpan() float64 {
	if k == SegmentKindMarker {
		return 0.1
	}
	return 2.0
}

// Segment model errors.
var (
	ErrInvalidRange  = errors.New("segment range is invalid")
	ErrInvalidKind   = errors.New("segment kind is invalid")
	ErrInvalidColor  = errors.New("segment color must be #RRGGBB")
	ErrNegativeTrack = errors.New("track index must be non-negative")
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Segment is a named, time-bounded region on a timeline track.
type Segment struct {
	// ID uniquely identifies the segment. Assigned at creation, immutable.
	ID string `json:"id"`

	// TrackIndex is the lane the segment occupies (0-based).
	TrackIndex int `json:"track_index"`

	// StartTime and EndTime bound the segment in project seconds.
	// Invariant: 0 <= StartTime < EndTime <= the model's total duration.
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`

	// Name is a free-form label.
	Name string `json:"name"`

	// Kind categorizes the segment.
	Kind SegmentKind `json:"kind"`

	// Color is the display color, "#RRGGBB". Defaults from Kind when empty.
	Color string `json:"color"`

	// Description is free-form annotation text.
	Description string `json:"description,omitempty"`

	// Locked segments ignore interactive drag/resize but stay
	// programmatically editable.
	Locked bool `json:"locked"`

	// Hidden segments are retained in the model but excluded from
	// hit-testing and rendering. The zero value is visible.
	Hidden bool `json:"hidden,omitempty"`
}

// Duration returns the segment span in seconds.
func (s *Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// ContainsTime reports whether t falls inside the segment, inclusive on
// both edges.
func (s *Segment) ContainsTime(t float64) bool {
	return s.StartTime <= t && t <= s.EndTime
}

// OverlapsRange reports whether the segment overlaps the half-open
// interval [start, end).
func (s *Segment) OverlapsRange(start, end float64) bool {
	return s.StartTime < end && s.EndTime > start
}

// OverlapsSegment reports whether two segments overlap in time,
// regardless of track.
func (s *Segment) OverlapsSegment(other *Segment) bool {
	return !(s.EndTime <= other.StartTime || s.StartTime >= other.EndTime)
}

// Validate checks segment fields against a total duration. A totalDuration
// of 0 skips the upper-bound check (used when the owning model is unknown).
func (s *Segment) Validate(totalDuration float64) error {
	validation := &ValidationErrors{}

	if s.TrackIndex < 0 {
		validation.Add("track_index", ErrNegativeTrack)
	}
	if s.StartTime < 0 {
		validation.Add("start_time", fmt.Errorf("%w: start %.3f is negative", ErrInvalidRange, s.StartTime))
	}
	if s.StartTime >= s.EndTime {
		validation.Add("end_time", fmt.Errorf("%w: start %.3f must precede end %.3f", ErrInvalidRange, s.StartTime, s.EndTime))
	}
	if totalDuration > 0 && s.EndTime > totalDuration {
		validation.Add("end_time", fmt.Errorf("%w: end %.3f exceeds duration %.3f", ErrInvalidRange, s.EndTime, totalDuration))
	}
	if !s.Kind.IsValid() {
		validation.Add("kind", fmt.Errorf("%w: %q", ErrInvalidKind, s.Kind))
	}
	if s.Color != "" && !hexColorPattern.MatchString(s.Color) {
		validation.Add("color", fmt.Errorf("%w: %q", ErrInvalidColor, s.Color))
	}

	return validation.Err()
}

// ApplyDefaults fills the color and name from the kind when unset.
func (s *Segment) ApplyDefaults() {
	if s.Color == "" {
		s.Color = s.Kind.DefaultColor()
	}
	if s.Name == "" {
		s.Name = fmt.Sprintf("New %s", s.Kind)
	}
}

// Clone returns a copy of the segment.
func (s *Segment) Clone() *Segment {
	out := *s
	return &out
}
