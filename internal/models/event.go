package models

import (
	"encoding/json"
	"time"
)

// EventType categorizes events in the engine.
type EventType string

const (
	// Segment events
	EventTypeSegmentAdded    EventType = "segment.added"
	EventTypeSegmentRemoved  EventType = "segment.removed"
	EventTypeSegmentMoved    EventType = "segment.moved"
	EventTypeSegmentResized  EventType = "segment.resized"
	EventTypeSegmentUpdated  EventType = "segment.updated"
	EventTypeSegmentSelected EventType = "segment.selected"

	// Timeline events
	EventTypeDurationChanged EventType = "timeline.duration_changed"
	EventTypeTimelineCleared EventType = "timeline.cleared"
	EventTypePlayheadSeeked  EventType = "playhead.seeked"

	// Playback events
	EventTypePlaybackStarted EventType = "playback.started"
	EventTypePlaybackPaused  EventType = "playback.paused"
	EventTypePlaybackStopped EventType = "playback.stopped"
	EventTypePlaybackLooped  EventType = "playback.looped"

	// System events
	EventTypeWarning EventType = "warning"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeSegment  EntityType = "segment"
	EntityTypeTimeline EntityType = "timeline"
	EntityTypePlayback EntityType = "playback"
)

// Event represents a notification emitted by the timeline engine.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SegmentTimesPayload is the payload for segment.moved and segment.resized
// events.
type SegmentTimesPayload struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// SeekPayload is the payload for playhead.seeked events.
type SeekPayload struct {
	Time float64 `json:"time"`
}

// DurationPayload is the payload for timeline.duration_changed events.
type DurationPayload struct {
	Duration float64 `json:"duration"`
}

// WarningPayload is the payload for warning events.
type WarningPayload struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// PlaybackPayload is the payload for playback state events.
type PlaybackPayload struct {
	Time  float64 `json:"time"`
	Speed float64 `json:"speed"`
}

// NewEvent builds an event with a marshalled payload. A nil payload is
// allowed; marshal failures degrade to an empty payload rather than
// blocking emission.
func NewEvent(eventType EventType, entityType EntityType, entityID string, payload any) *Event {
	event := &Event{
		Timestamp:  time.Now().UTC(),
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			event.Payload = raw
		}
	}
	return event
}
