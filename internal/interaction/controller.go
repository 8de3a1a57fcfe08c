// Package interaction translates pointer gestures into timeline edits. The
// controller is a plain state machine over pixel coordinates; it knows
// nothing about any particular UI toolkit, so a terminal host and a canvas
// host drive it the same way.
package interaction

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aklerup/keyline/internal/logging"
	"github.com/aklerup/keyline/internal/models"
	"github.com/aklerup/keyline/internal/timeline"
)

// State is the controller's current gesture.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateResizingStart
	StateResizingEnd
	StateCreating
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateResizingStart:
		return "resizing-start"
	case StateResizingEnd:
		return "resizing-end"
	case StateCreating:
		return "creating"
	default:
		return "idle"
	}
}

// Cursor is a hint for the host's pointer shape.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorMove
	CursorResize
)

const (
	// EdgeTolerance is the pixel band at a segment edge where a press
	// starts a resize instead of a drag.
	EdgeTolerance = 8.0

	// MinSegmentGap is the smallest span a resize may leave, in seconds.
	MinSegmentGap = 0.1

	// MinPixelsPerSecond and MaxPixelsPerSecond bound the zoom level.
	MinPixelsPerSecond = 10.0
	MaxPixelsPerSecond = 200.0

	// DefaultPixelsPerSecond is the initial zoom level.
	DefaultPixelsPerSecond = 50.0
)

// Geometry maps between pixels and timeline coordinates.
type Geometry struct {
	// RulerHeight is the vertical space above track 0, in pixels.
	RulerHeight float64

	// TrackHeight is the height of one track lane.
	TrackHeight float64

	// TrackSpacing is the gap between adjacent lanes.
	TrackSpacing float64

	// PixelsPerSecond is the horizontal zoom level.
	PixelsPerSecond float64

	// ScrollX is the horizontal pan offset in pixels.
	ScrollX float64
}

// DefaultGeometry matches the editor's initial layout.
func DefaultGeometry() Geometry {
	return Geometry{
		RulerHeight:     30,
		TrackHeight:     40,
		TrackSpacing:    5,
		PixelsPerSecond: DefaultPixelsPerSecond,
	}
}

// TimeAtX converts a pixel column to a timeline time.
func (g Geometry) TimeAtX(x float64) float64 {
	return (x + g.ScrollX) / g.PixelsPerSecond
}

// XAtTime converts a timeline time to a pixel column.
func (g Geometry) XAtTime(t float64) float64 {
	return t*g.PixelsPerSecond - g.ScrollX
}

// TrackAtY converts a pixel row to a track index, or -1 when the row is
// on the ruler or inside the spacing between lanes.
func (g Geometry) TrackAtY(y float64) int {
	if y < g.RulerHeight {
		return -1
	}
	lane := g.TrackHeight + g.TrackSpacing
	offset := y - g.RulerHeight
	track := int(offset / lane)
	if math.Mod(offset, lane) > g.TrackHeight {
		return -1
	}
	return track
}

// Controller turns pointer input into model edits. Previews during a
// gesture live only in the controller; the model is untouched until
// PointerUp commits.
type Controller struct {
	model    *timeline.Model
	geometry Geometry
	logger   zerolog.Logger

	// SnapInterval rounds drag and resize times to a grid, in seconds.
	// Zero disables snapping.
	SnapInterval float64

	// CreateKind is the kind assigned to segments created by double-click.
	CreateKind models.SegmentKind

	state    State
	activeID string

	anchorTime  float64
	anchorTrack int
	origStart   float64
	origEnd     float64

	previewStart float64
	previewEnd   float64

	mods Modifier
}

// Modifier is a bitmask of modifier keys held during a gesture.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModAlt
	ModCtrl

	ModNone Modifier = 0
)

// NewController builds a controller over the given model.
func NewController(model *timeline.Model, geometry Geometry) *Controller {
	return &Controller{
		model:      model,
		geometry:   geometry,
		logger:     logging.Component("interaction"),
		CreateKind: models.SegmentKindAnimation,
	}
}

// State returns the current gesture state.
func (c *Controller) State() State {
	return c.state
}

// ActiveSegment returns the segment ID of the gesture in progress, or "".
func (c *Controller) ActiveSegment() string {
	if c.state == StateIdle {
		return ""
	}
	return c.activeID
}

// Preview returns the in-flight bounds of the active segment. Hosts draw
// these instead of the model's bounds while a gesture is live.
func (c *Controller) Preview() (start, end float64, ok bool) {
	switch c.state {
	case StateDragging, StateResizingStart, StateResizingEnd, StateCreating:
		return c.previewStart, c.previewEnd, true
	default:
		return 0, 0, false
	}
}

// PreviewTrack reports the lane a drag-create gesture targets.
func (c *Controller) PreviewTrack() (int, bool) {
	if c.state != StateCreating {
		return 0, false
	}
	return c.anchorTrack, true
}

// Geometry returns the current pixel mapping.
func (c *Controller) Geometry() Geometry {
	return c.geometry
}

// SetZoom sets pixels-per-second, clamped to the allowed range, keeping
// the time under the given pixel column stationary.
func (c *Controller) SetZoom(pixelsPerSecond, aroundX float64) {
	clamped := math.Max(MinPixelsPerSecond, math.Min(pixelsPerSecond, MaxPixelsPerSecond))
	anchor := c.geometry.TimeAtX(aroundX)
	c.geometry.PixelsPerSecond = clamped
	c.geometry.ScrollX = anchor*clamped - aroundX
	if c.geometry.ScrollX < 0 {
		c.geometry.ScrollX = 0
	}
}

// ScrollBy pans the viewport horizontally by a pixel delta.
func (c *Controller) ScrollBy(dx float64) {
	c.geometry.ScrollX = math.Max(0, c.geometry.ScrollX+dx)
}

// PointerDown begins a gesture. A press on a segment body starts a drag,
// a press within EdgeTolerance of an edge starts a resize, and a press on
// empty timeline area clears the selection. Locked segments can be
// selected but not moved.
func (c *Controller) PointerDown(x, y float64) {
	c.PointerDownWith(x, y, ModNone)
}

// PointerDownWith is PointerDown with modifier keys. Shift suspends grid
// snapping for the whole gesture.
func (c *Controller) PointerDownWith(x, y float64, mods Modifier) {
	if c.state != StateIdle {
		return
	}
	c.mods = mods

	track := c.geometry.TrackAtY(y)
	if track < 0 {
		return
	}

	t := c.geometry.TimeAtX(x)
	segment, ok := c.hitTest(t, track)
	if !ok {
		c.model.Select("")
		return
	}

	c.model.Select(segment.ID)
	if segment.Locked {
		return
	}

	c.activeID = segment.ID
	c.anchorTime = t
	c.origStart = segment.StartTime
	c.origEnd = segment.EndTime
	c.previewStart = segment.StartTime
	c.previewEnd = segment.EndTime

	startX := c.geometry.XAtTime(segment.StartTime)
	endX := c.geometry.XAtTime(segment.EndTime)
	switch {
	case math.Abs(x-startX) <= EdgeTolerance:
		c.state = StateResizingStart
	case math.Abs(x-endX) <= EdgeTolerance:
		c.state = StateResizingEnd
	default:
		c.state = StateDragging
	}
	c.logger.Debug().
		Str("segment_id", segment.ID).
		Stringer("state", c.state).
		Msg("gesture started")
}

// PointerMove updates the preview for the active gesture. Drags apply the
// pointer's delta from the press anchor so the duration never changes;
// resizes move one edge, leaving at least MinSegmentGap.
func (c *Controller) PointerMove(x, _ float64) {
	if c.state == StateIdle {
		return
	}

	t := c.geometry.TimeAtX(x)
	delta := t - c.anchorTime
	total := c.model.TotalDuration()

	switch c.state {
	case StateDragging:
		duration := c.origEnd - c.origStart
		start := c.snap(c.origStart + delta)
		start = math.Max(0, math.Min(start, total-duration))
		c.previewStart = start
		c.previewEnd = start + duration

	case StateResizingStart:
		start := c.snap(c.origStart + delta)
		start = math.Max(0, math.Min(start, c.origEnd-MinSegmentGap))
		c.previewStart = start
		c.previewEnd = c.origEnd

	case StateResizingEnd:
		end := c.snap(c.origEnd + delta)
		end = math.Min(total, math.Max(end, c.origStart+MinSegmentGap))
		c.previewStart = c.origStart
		c.previewEnd = end

	case StateCreating:
		// Drag-create grows from the anchor in either direction.
		a, b := c.anchorTime, c.snap(t)
		if b < a {
			a, b = b, a
		}
		c.previewStart = math.Max(0, a)
		c.previewEnd = math.Min(total, math.Max(b, a+MinSegmentGap))
	}
}

// PointerUp commits the active gesture to the model and returns to idle.
func (c *Controller) PointerUp(x, y float64) {
	if c.state == StateIdle {
		return
	}
	c.PointerMove(x, y)

	state, id := c.state, c.activeID
	start, end := c.previewStart, c.previewEnd
	c.state = StateIdle
	c.activeID = ""
	c.mods = ModNone

	switch state {
	case StateDragging, StateResizingStart, StateResizingEnd:
		if start == c.origStart && end == c.origEnd {
			return
		}
		if err := c.model.UpdateSegmentTime(id, start, end); err != nil {
			c.logger.Warn().Err(err).Str("segment_id", id).Msg("gesture commit rejected")
		}
	case StateCreating:
		// A press without a real drag creates the kind's default span
		// at the clicked time, clipped to the total duration.
		if end-start <= MinSegmentGap {
			span := c.CreateKind.DefaultSpan()
			total := c.model.TotalDuration()
			start = c.anchorTime
			end = math.Min(start+span, total)
			if end-start < MinSegmentGap {
				start = math.Max(0, end-span)
			}
		}
		segment := &models.Segment{
			TrackIndex: c.anchorTrack,
			StartTime:  start,
			EndTime:    end,
			Kind:       c.CreateKind,
		}
		if newID, err := c.model.AddSegment(segment); err != nil {
			c.logger.Warn().Err(err).Msg("drag-create rejected")
		} else {
			c.model.Select(newID)
		}
	}
}

// Cancel abandons the active gesture without touching the model.
func (c *Controller) Cancel() {
	c.state = StateIdle
	c.activeID = ""
	c.mods = ModNone
}

// DoubleClick creates a segment of the default span for CreateKind at the
// clicked time, clipped to the total duration. A double-click on an
// existing segment returns its ID instead so the host can open an editor.
func (c *Controller) DoubleClick(x, y float64) (segmentID string, created bool) {
	track := c.geometry.TrackAtY(y)
	if track < 0 {
		return "", false
	}

	t := c.geometry.TimeAtX(x)
	if existing, ok := c.hitTest(t, track); ok {
		c.model.Select(existing.ID)
		return existing.ID, false
	}

	span := c.CreateKind.DefaultSpan()
	start := c.snap(t)
	total := c.model.TotalDuration()
	end := math.Min(start+span, total)
	if end-start < MinSegmentGap {
		start = math.Max(0, end-span)
	}

	segment := &models.Segment{
		TrackIndex: track,
		StartTime:  start,
		EndTime:    end,
		Kind:       c.CreateKind,
	}
	id, err := c.model.AddSegment(segment)
	if err != nil {
		c.logger.Warn().Err(err).Msg("double-click create rejected")
		return "", false
	}
	c.model.Select(id)
	return id, true
}

// BeginCreate starts a drag-create gesture at the given position. Hosts
// call this for press-and-drag on empty area when a creation tool is
// armed.
func (c *Controller) BeginCreate(x, y float64) {
	if c.state != StateIdle {
		return
	}
	track := c.geometry.TrackAtY(y)
	if track < 0 {
		return
	}
	t := c.geometry.TimeAtX(x)
	if _, ok := c.hitTest(t, track); ok {
		return
	}
	c.state = StateCreating
	c.activeID = ""
	c.anchorTrack = track
	c.anchorTime = c.snap(t)
	c.previewStart = c.anchorTime
	c.previewEnd = c.anchorTime
}

// CursorHint reports the pointer shape for a hover position.
func (c *Controller) CursorHint(x, y float64) Cursor {
	switch c.state {
	case StateDragging:
		return CursorMove
	case StateResizingStart, StateResizingEnd:
		return CursorResize
	}

	track := c.geometry.TrackAtY(y)
	if track < 0 {
		return CursorDefault
	}
	segment, ok := c.hitTest(c.geometry.TimeAtX(x), track)
	if !ok || segment.Locked {
		return CursorDefault
	}
	startX := c.geometry.XAtTime(segment.StartTime)
	endX := c.geometry.XAtTime(segment.EndTime)
	if math.Abs(x-startX) <= EdgeTolerance || math.Abs(x-endX) <= EdgeTolerance {
		return CursorResize
	}
	return CursorMove
}

func (c *Controller) hitTest(t float64, track int) (*models.Segment, bool) {
	return c.model.SegmentAt(t, track)
}

func (c *Controller) snap(t float64) float64 {
	if c.SnapInterval <= 0 || c.mods&ModShift != 0 {
		return t
	}
	return math.Round(t/c.SnapInterval) * c.SnapInterval
}
