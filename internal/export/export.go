// Package export defines the round-trippable project object model. It is
// deliberately file-format free; callers get JSON bytes and decide where
// they live. The audio reference is carried as an opaque string and never
// resolved here.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/aklerup/keyline/internal/models"
	"github.com/aklerup/keyline/internal/timeline"
)

// SegmentExport is the wire form of one segment.
type SegmentExport struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	StartTime   float64 `json:"startTime"`
	EndTime     float64 `json:"endTime"`
	Color       string  `json:"color"`
	Description string  `json:"description,omitempty"`
	Locked      bool    `json:"locked"`
	Visible     bool    `json:"visible"`
	TrackIndex  int     `json:"trackIndex"`
}

// TimelineExport is the wire form of a whole timeline.
type TimelineExport struct {
	Duration float64 `json:"duration"`

	Segments []SegmentExport `json:"segments"`

	// AudioFileRef is an opaque path or identifier for the bound audio
	// source, if any.
	AudioFileRef string `json:"audioFileRef,omitempty"`
}

// Snapshot captures the model into an export object.
func Snapshot(m *timeline.Model, audioFileRef string) *TimelineExport {
	segments := m.Segments()
	out := &TimelineExport{
		Duration:     m.TotalDuration(),
		Segments:     make([]SegmentExport, 0, len(segments)),
		AudioFileRef: audioFileRef,
	}
	for _, s := range segments {
		out.Segments = append(out.Segments, SegmentExport{
			ID:          s.ID,
			Name:        s.Name,
			Kind:        string(s.Kind),
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			Color:       s.Color,
			Description: s.Description,
			Locked:      s.Locked,
			Visible:     !s.Hidden,
			TrackIndex:  s.TrackIndex,
		})
	}
	return out
}

// Marshal renders the export object as indented JSON.
func (e *TimelineExport) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling timeline export: %w", err)
	}
	return data, nil
}

// Unmarshal parses an export object from JSON.
func Unmarshal(data []byte) (*TimelineExport, error) {
	var e TimelineExport
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parsing timeline export: %w", err)
	}
	return &e, nil
}

// Validate checks the export object's invariants before a restore. Every
// segment failure is reported, keyed by its position and field.
func (e *TimelineExport) Validate() error {
	errs := &models.ValidationErrors{}
	if e.Duration <= 0 {
		errs.AddMessage("duration", "must be positive")
	}
	for i, s := range e.Segments {
		probe := toSegment(s)
		if vErr := probe.Validate(e.Duration); vErr != nil {
			errs.Add(fmt.Sprintf("segments[%d]", i), vErr)
		}
	}
	return errs.Err()
}

// Restore replaces the model's contents with the export object's. The
// model is untouched when validation fails.
func (e *TimelineExport) Restore(m *timeline.Model) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := m.SetTotalDuration(e.Duration); err != nil {
		return err
	}
	m.Clear()
	for i, s := range e.Segments {
		if _, err := m.AddSegment(toSegment(s)); err != nil {
			return fmt.Errorf("restoring segment %d: %w", i, err)
		}
	}
	return nil
}

func toSegment(s SegmentExport) *models.Segment {
	return &models.Segment{
		ID:          s.ID,
		Name:        s.Name,
		Kind:        models.SegmentKind(s.Kind),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Color:       s.Color,
		Description: s.Description,
		Locked:      s.Locked,
		Hidden:      !s.Visible,
		TrackIndex:  s.TrackIndex,
	}
}
