package models

import (
	"fmt"
	"time"
)

// Project is a persisted timeline: duration, segments and an opaque
// audio reference, plus bookkeeping timestamps.
type Project struct {
	// ID is the unique project identifier.
	ID string `json:"id"`

	// Name is the human-readable project name, unique per database.
	Name string `json:"name"`

	// Duration is the timeline length in seconds.
	Duration float64 `json:"duration"`

	// AudioFileRef is an opaque path or identifier for bound audio.
	// Never resolved by the engine.
	AudioFileRef string `json:"audio_file_ref,omitempty"`

	// Segments holds the timeline contents in insertion order.
	Segments []*Segment `json:"segments"`

	// CreatedAt is when the project was first saved.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the project was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the project and all its segments.
func (p *Project) Validate() error {
	errs := &ValidationErrors{}
	if p.Name == "" {
		errs.AddMessage("name", "name is required")
	}
	if p.Duration <= 0 {
		errs.AddMessage("duration", "duration must be positive")
	}
	for i, s := range p.Segments {
		if err := s.Validate(p.Duration); err != nil {
			errs.Add(fmt.Sprintf("segments[%d]", i), err)
		}
	}
	return errs.Err()
}
