// Package timeline owns the set of segments across tracks, the total
// duration and the playhead. All mutation goes through Model, which
// enforces the range invariant (0 <= start < end <= total duration) and
// announces changes through an event publisher.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aklerup/keyline/internal/events"
	"github.com/aklerup/keyline/internal/logging"
	"github.com/aklerup/keyline/internal/models"
)

// Model errors.
var (
	ErrSegmentNotFound = errors.New("segment not found")
	ErrInvalidDuration = errors.New("total duration must be positive")
)

// DefaultDuration is the total duration of a fresh timeline, in seconds.
const DefaultDuration = 30.0

// Model is the single owner of timeline state. Safe for concurrent use;
// a background sampler may read while the UI goroutine edits.
type Model struct {
	mu sync.RWMutex

	segments      []*models.Segment
	totalDuration float64
	currentTime   float64
	selectedID    string

	publisher events.Publisher
	logger    zerolog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithPublisher wires an event publisher for change notifications.
func WithPublisher(p events.Publisher) Option {
	return func(m *Model) {
		m.publisher = p
	}
}

// WithDuration sets the initial total duration.
func WithDuration(d float64) Option {
	return func(m *Model) {
		if d > 0 {
			m.totalDuration = d
		}
	}
}

// New creates an empty timeline model.
func New(opts ...Option) *Model {
	m := &Model{
		totalDuration: DefaultDuration,
		logger:        logging.Component("timeline"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Publisher returns the event publisher mutations announce through, or
// nil when the model was built without one.
func (m *Model) Publisher() events.Publisher {
	return m.publisher
}

func (m *Model) publish(event *models.Event) {
	if m.publisher != nil {
		m.publisher.Publish(context.Background(), event)
	}
}

// AddSegment validates and inserts a segment, assigning a fresh ID.
// Returns the assigned ID, or a validation failure wrapping
// models.ErrInvalidRange.
func (m *Model) AddSegment(segment *models.Segment) (string, error) {
	if segment == nil {
		return "", fmt.Errorf("%w: nil segment", models.ErrInvalidRange)
	}

	m.mu.Lock()
	stored := segment.Clone()
	stored.ApplyDefaults()
	if err := stored.Validate(m.totalDuration); err != nil {
		m.mu.Unlock()
		return "", err
	}
	stored.ID = uuid.New().String()
	m.segments = append(m.segments, stored)
	m.mu.Unlock()

	m.logger.Debug().
		Str("segment_id", stored.ID).
		Str("kind", string(stored.Kind)).
		Float64("start", stored.StartTime).
		Float64("end", stored.EndTime).
		Int("track", stored.TrackIndex).
		Msg("segment added")
	m.publish(models.NewEvent(models.EventTypeSegmentAdded, models.EntityTypeSegment, stored.ID,
		models.SegmentTimesPayload{StartTime: stored.StartTime, EndTime: stored.EndTime}))

	return stored.ID, nil
}

// RemoveSegment deletes a segment by ID, clearing selection if it was
// selected. Returns ErrSegmentNotFound if absent.
func (m *Model) RemoveSegment(id string) error {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}
	m.segments = append(m.segments[:idx], m.segments[idx+1:]...)
	if m.selectedID == id {
		m.selectedID = ""
	}
	m.mu.Unlock()

	m.logger.Debug().Str("segment_id", id).Msg("segment removed")
	m.publish(models.NewEvent(models.EventTypeSegmentRemoved, models.EntityTypeSegment, id, nil))
	return nil
}

// UpdateSegmentTime moves a segment's bounds. The new end is clamped to
// the total duration and the new start to zero; the update is rejected
// with models.ErrInvalidRange if the clamped range would invert.
func (m *Model) UpdateSegmentTime(id string, newStart, newEnd float64) error {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}

	clampedStart := math.Max(0, newStart)
	clampedEnd := math.Min(m.totalDuration, newEnd)
	if clampedStart >= clampedEnd {
		m.mu.Unlock()
		return fmt.Errorf("%w: start %.3f must precede end %.3f after clamping",
			models.ErrInvalidRange, clampedStart, clampedEnd)
	}

	segment := m.segments[idx]
	segment.StartTime = clampedStart
	segment.EndTime = clampedEnd
	m.mu.Unlock()

	m.publish(models.NewEvent(models.EventTypeSegmentMoved, models.EntityTypeSegment, id,
		models.SegmentTimesPayload{StartTime: clampedStart, EndTime: clampedEnd}))
	return nil
}

// UpdateSegmentMeta edits the presentational fields of a segment. Zero
// values leave the corresponding field untouched, except Description
// which is always applied.
func (m *Model) UpdateSegmentMeta(id string, name string, kind models.SegmentKind, color, description string) error {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}
	segment := m.segments[idx]
	if kind != "" {
		if !kind.IsValid() {
			m.mu.Unlock()
			return fmt.Errorf("%w: %q", models.ErrInvalidKind, kind)
		}
		segment.Kind = kind
	}
	if name != "" {
		segment.Name = name
	}
	if color != "" {
		probe := segment.Clone()
		probe.Color = color
		if err := probe.Validate(m.totalDuration); err != nil {
			m.mu.Unlock()
			return err
		}
		segment.Color = color
	}
	segment.Description = description
	m.mu.Unlock()

	m.publish(models.NewEvent(models.EventTypeSegmentUpdated, models.EntityTypeSegment, id, nil))
	return nil
}

// SetSegmentLocked toggles interactive immutability.
func (m *Model) SetSegmentLocked(id string, locked bool) error {
	return m.setFlag(id, func(s *models.Segment) { s.Locked = locked })
}

// SetSegmentVisible toggles hit-testing/rendering participation.
func (m *Model) SetSegmentVisible(id string, visible bool) error {
	return m.setFlag(id, func(s *models.Segment) { s.Hidden = !visible })
}

func (m *Model) setFlag(id string, apply func(*models.Segment)) error {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}
	apply(m.segments[idx])
	m.mu.Unlock()

	m.publish(models.NewEvent(models.EventTypeSegmentUpdated, models.EntityTypeSegment, id, nil))
	return nil
}

// DuplicateSegment copies a segment immediately after itself on the same
// track, clipped to the total duration. Fails with models.ErrInvalidRange
// when no room remains.
func (m *Model) DuplicateSegment(id string) (string, error) {
	m.mu.RLock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.RUnlock()
		return "", fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}
	source := m.segments[idx].Clone()
	total := m.totalDuration
	m.mu.RUnlock()

	newStart := source.EndTime
	newEnd := math.Min(newStart+source.Duration(), total)
	if newEnd <= newStart {
		return "", fmt.Errorf("%w: no room after %.3f", models.ErrInvalidRange, newStart)
	}

	copySegment := source.Clone()
	copySegment.StartTime = newStart
	copySegment.EndTime = newEnd
	copySegment.Name = source.Name + " copy"
	copySegment.Locked = false
	return m.AddSegment(copySegment)
}

// Segment returns a copy of the segment with the given ID.
func (m *Model) Segment(id string) (*models.Segment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.indexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}
	return m.segments[idx].Clone(), nil
}

// Segments returns copies of all segments in insertion order.
func (m *Model) Segments() []*models.Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Segment, len(m.segments))
	for i, s := range m.segments {
		out[i] = s.Clone()
	}
	return out
}

// SortedSegments returns clones ordered by start time, then track. List
// presentation only; hit testing stays in insertion order.
func (m *Model) SortedSegments() []*models.Segment {
	out := m.Segments()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].TrackIndex < out[j].TrackIndex
	})
	return out
}

// SegmentsOnTrack returns clones of the track's segments in insertion
// order, hidden segments included.
func (m *Model) SegmentsOnTrack(trackIndex int) []*models.Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Segment
	for _, s := range m.segments {
		if s.TrackIndex == trackIndex {
			out = append(out, s.Clone())
		}
	}
	return out
}

// SegmentAt returns the first visible segment containing the given time on
// the given track, in insertion order. The first match wins; no better-fit
// search is attempted.
func (m *Model) SegmentAt(t float64, trackIndex int) (*models.Segment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.segments {
		if !s.Hidden && s.TrackIndex == trackIndex && s.ContainsTime(t) {
			return s.Clone(), true
		}
	}
	return nil, false
}

// SegmentsInRange returns all segments on any track overlapping the
// half-open interval [start, end), hidden segments included. Use it for
// viewport culling and for detecting same-track overlap, which the model
// itself permits.
func (m *Model) SegmentsInRange(start, end float64) []*models.Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Segment
	for _, s := range m.segments {
		if s.OverlapsRange(start, end) {
			out = append(out, s.Clone())
		}
	}
	return out
}

// SetTotalDuration changes the timeline length. Fails with
// ErrInvalidDuration when d <= 0. Segments ending past the new duration
// are left untouched; callers reconcile with SegmentsInRange.
func (m *Model) SetTotalDuration(d float64) error {
	if d <= 0 {
		return fmt.Errorf("%w: %.3f", ErrInvalidDuration, d)
	}

	m.mu.Lock()
	m.totalDuration = d
	if m.currentTime > d {
		m.currentTime = d
	}
	outOfRange := 0
	for _, s := range m.segments {
		if s.EndTime > d {
			outOfRange++
		}
	}
	m.mu.Unlock()

	if outOfRange > 0 {
		m.logger.Warn().
			Int("segments", outOfRange).
			Float64("duration", d).
			Msg("segments end past the new total duration")
		m.publish(models.NewEvent(models.EventTypeWarning, models.EntityTypeTimeline, "timeline",
			models.WarningPayload{
				Message: fmt.Sprintf("%d segment(s) end past the new duration", outOfRange),
				Count:   outOfRange,
			}))
	}
	m.publish(models.NewEvent(models.EventTypeDurationChanged, models.EntityTypeTimeline, "timeline",
		models.DurationPayload{Duration: d}))
	return nil
}

// TotalDuration returns the timeline length in seconds.
func (m *Model) TotalDuration() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDuration
}

// Seek moves the playhead, clamped to [0, total duration].
func (m *Model) Seek(t float64) float64 {
	m.mu.Lock()
	clamped := math.Max(0, math.Min(t, m.totalDuration))
	m.currentTime = clamped
	m.mu.Unlock()

	m.publish(models.NewEvent(models.EventTypePlayheadSeeked, models.EntityTypeTimeline, "timeline",
		models.SeekPayload{Time: clamped}))
	return clamped
}

// CurrentTime returns the playhead position.
func (m *Model) CurrentTime() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTime
}

// Select marks a segment as selected; an empty ID clears the selection.
func (m *Model) Select(id string) error {
	m.mu.Lock()
	if id != "" && m.indexLocked(id) < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}
	m.selectedID = id
	m.mu.Unlock()

	if id != "" {
		m.publish(models.NewEvent(models.EventTypeSegmentSelected, models.EntityTypeSegment, id, nil))
	}
	return nil
}

// Selected returns the selected segment ID, or "".
func (m *Model) Selected() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selectedID
}

// Clear removes every segment and resets the playhead and selection. The
// total duration is kept.
func (m *Model) Clear() {
	m.mu.Lock()
	m.segments = nil
	m.selectedID = ""
	m.currentTime = 0
	m.mu.Unlock()

	m.publish(models.NewEvent(models.EventTypeTimelineCleared, models.EntityTypeTimeline, "timeline", nil))
}

// TrackCount returns one past the highest occupied track index.
func (m *Model) TrackCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.segments {
		if s.TrackIndex+1 > count {
			count = s.TrackIndex + 1
		}
	}
	return count
}

// indexLocked returns the slice index for id, or -1. Callers hold m.mu.
func (m *Model) indexLocked(id string) int {
	for i, s := range m.segments {
		if s.ID == id {
			return i
		}
	}
	return -1
}
