// Package tui implements the terminal timeline editor. It hosts the
// interaction controller over bubbletea mouse events and the playback
// clock over the transport keys; all timeline state lives in the shared
// model, never in the view.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aklerup/keyline/internal/events"
	"github.com/aklerup/keyline/internal/interaction"
	"github.com/aklerup/keyline/internal/models"
	"github.com/aklerup/keyline/internal/playback"
	"github.com/aklerup/keyline/internal/timeline"
	"github.com/aklerup/keyline/internal/tui/styles"
)

const (
	// cellPx is the virtual pixel size of one terminal cell. The
	// interaction controller works in pixels; the TUI maps cells onto
	// a 10 px grid so its edge tolerance spans one column.
	cellPx = 10.0

	headerRows = 1
	rulerRows  = 2
	trackRows  = 2
	gapRows    = 1

	doubleClickWindow = 400 * time.Millisecond
	seekStep          = 1.0
	zoomStep          = 10.0
)

// Config holds editor settings carried in from the app config.
type Config struct {
	Theme           string
	RefreshInterval time.Duration
	PixelsPerSecond float64
	SnapInterval    float64
	CreateKind      models.SegmentKind
	Loop            bool
	FollowAudio     bool
	ProjectName     string
}

type tickMsg time.Time

// Model is the bubbletea model for the editor.
type Model struct {
	timeline   *timeline.Model
	controller *interaction.Controller
	clock      *playback.Clock

	theme    styles.Theme
	styleSet styles.Styles
	cfg      Config

	width  int
	height int

	showHelp bool
	status   string

	warnMu  sync.Mutex
	warning string

	lastClickTime time.Time
	lastClickX    int
	lastClickY    int

	clockCtx    context.Context
	clockCancel context.CancelFunc
}

// NewModel builds the editor over an existing timeline model.
func NewModel(tl *timeline.Model, cfg Config) *Model {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 500 * time.Millisecond
	}
	if cfg.PixelsPerSecond <= 0 {
		cfg.PixelsPerSecond = interaction.DefaultPixelsPerSecond
	}
	if cfg.CreateKind == "" {
		cfg.CreateKind = models.SegmentKindAnimation
	}

	geometry := interaction.Geometry{
		RulerHeight:     rulerRows * cellPx,
		TrackHeight:     trackRows * cellPx,
		TrackSpacing:    gapRows * cellPx,
		PixelsPerSecond: cfg.PixelsPerSecond,
	}
	controller := interaction.NewController(tl, geometry)
	controller.SnapInterval = cfg.SnapInterval
	controller.CreateKind = cfg.CreateKind

	source := playback.SourceInternal
	if cfg.FollowAudio {
		source = playback.SourceExternal
	}
	clock := playback.NewClock(tl, playback.WithSource(source))
	clock.SetLoop(cfg.Loop)

	ctx, cancel := context.WithCancel(context.Background())
	theme := styles.ByName(cfg.Theme)
	m := &Model{
		timeline:    tl,
		controller:  controller,
		clock:       clock,
		theme:       theme,
		styleSet:    styles.For(theme),
		cfg:         cfg,
		clockCtx:    ctx,
		clockCancel: cancel,
	}

	// Surface model warnings in the status bar. The clock's ticker can
	// trigger publishes off the update goroutine, hence the mutex.
	if pub := tl.Publisher(); pub != nil {
		_ = pub.Subscribe(editorSubscriberID, events.Filter{
			EventTypes: []models.EventType{models.EventTypeWarning},
		}, func(event *models.Event) {
			var payload models.WarningPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				return
			}
			m.warnMu.Lock()
			m.warning = payload.Message
			m.warnMu.Unlock()
		})
	}
	return m
}

const editorSubscriberID = "editor-status"

// Run launches the editor program.
func Run(tl *timeline.Model, cfg Config) error {
	model := NewModel(tl, cfg)
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := program.Run()
	return err
}

// Close stops the playback clock.
func (m *Model) Close() {
	m.clock.Stop()
	m.clockCancel()
	if pub := m.timeline.Publisher(); pub != nil {
		_ = pub.Unsubscribe(editorSubscriberID)
	}
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil

	case tickMsg:
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(typed)

	case tea.MouseMsg:
		m.handleMouse(typed)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	m.warnMu.Lock()
	m.warning = ""
	m.warnMu.Unlock()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp

	case " ":
		if m.clock.State() == playback.StatePlaying {
			m.clock.Pause()
		} else {
			m.clock.Play(m.clockCtx)
		}

	case "s":
		m.clock.Stop()

	case "L":
		m.clock.SetLoop(!m.clock.Loop())

	case "left":
		m.timeline.Seek(m.timeline.CurrentTime() - seekStep)
	case "right":
		m.timeline.Seek(m.timeline.CurrentTime() + seekStep)
	case "home":
		m.timeline.Seek(0)
	case "end":
		m.timeline.Seek(m.timeline.TotalDuration())

	case "[":
		m.adjustSpeed(-0.25)
	case "]":
		m.adjustSpeed(0.25)

	case "+", "=":
		m.zoomBy(zoomStep)
	case "-":
		m.zoomBy(-zoomStep)

	case "h":
		m.controller.ScrollBy(-4 * cellPx)
	case "l":
		m.controller.ScrollBy(4 * cellPx)

	case "n":
		m.createAtPlayhead()

	case "d":
		m.duplicateSelected()

	case "x", "delete":
		m.deleteSelected()

	case "tab":
		m.selectNext()

	case "g":
		if m.controller.SnapInterval > 0 {
			m.controller.SnapInterval = 0
			m.status = "snap off"
		} else {
			m.controller.SnapInterval = 0.5
			m.status = "snap 0.5s"
		}

	case "esc":
		m.controller.Cancel()
		_ = m.timeline.Select("")
	}

	return m, nil
}

func (m *Model) adjustSpeed(delta float64) {
	next := m.clock.Speed() + delta
	if err := m.clock.SetSpeed(next); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("speed %.2fx", m.clock.Speed())
}

func (m *Model) zoomBy(delta float64) {
	g := m.controller.Geometry()
	playheadX := g.XAtTime(m.timeline.CurrentTime())
	m.controller.SetZoom(g.PixelsPerSecond+delta, playheadX)
}

func (m *Model) createAtPlayhead() {
	g := m.controller.Geometry()
	x := g.XAtTime(m.timeline.CurrentTime())
	y := g.RulerHeight + g.TrackHeight/2
	if id, created := m.controller.DoubleClick(x, y); created {
		m.status = "created " + shortID(id)
	} else {
		m.status = "no room at playhead"
	}
}

func (m *Model) duplicateSelected() {
	selected := m.timeline.Selected()
	if selected == "" {
		m.status = "nothing selected"
		return
	}
	id, err := m.timeline.DuplicateSegment(selected)
	if err != nil {
		m.status = err.Error()
		return
	}
	_ = m.timeline.Select(id)
	m.status = "duplicated"
}

func (m *Model) deleteSelected() {
	selected := m.timeline.Selected()
	if selected == "" {
		m.status = "nothing selected"
		return
	}
	if err := m.timeline.RemoveSegment(selected); err != nil {
		m.status = err.Error()
	} else {
		m.status = "deleted"
	}
}

func (m *Model) selectNext() {
	segments := m.timeline.Segments()
	if len(segments) == 0 {
		return
	}
	selected := m.timeline.Selected()
	next := 0
	for i, s := range segments {
		if s.ID == selected {
			next = (i + 1) % len(segments)
			break
		}
	}
	_ = m.timeline.Select(segments[next].ID)
}

// pixelPos converts a terminal cell to controller pixel coordinates,
// aimed at the cell center.
func (m *Model) pixelPos(x, y int) (float64, float64) {
	px := float64(x)*cellPx + cellPx/2
	py := float64(y-headerRows)*cellPx + cellPx/2
	return px, py
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	px, py := m.pixelPos(msg.X, msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.controller.SetZoom(m.controller.Geometry().PixelsPerSecond+zoomStep, px)
		return
	case tea.MouseButtonWheelDown:
		m.controller.SetZoom(m.controller.Geometry().PixelsPerSecond-zoomStep, px)
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if m.isDoubleClick(msg.X, msg.Y) {
			m.controller.Cancel()
			if id, created := m.controller.DoubleClick(px, py); created {
				m.status = "created " + shortID(id)
			}
			return
		}
		// A press on the ruler scrubs the playhead.
		if msg.Y >= headerRows && msg.Y < headerRows+rulerRows {
			m.timeline.Seek(m.controller.Geometry().TimeAtX(px))
			return
		}
		m.controller.PointerDownWith(px, py, mouseModifiers(msg))
		if m.controller.State() == interaction.StateIdle {
			m.controller.BeginCreate(px, py)
		}

	case tea.MouseActionMotion:
		m.controller.PointerMove(px, py)

	case tea.MouseActionRelease:
		m.controller.PointerUp(px, py)
	}
}

func (m *Model) isDoubleClick(x, y int) bool {
	now := time.Now()
	double := now.Sub(m.lastClickTime) <= doubleClickWindow &&
		x == m.lastClickX && y == m.lastClickY
	m.lastClickTime = now
	m.lastClickX = x
	m.lastClickY = y
	return double
}

func mouseModifiers(msg tea.MouseMsg) interaction.Modifier {
	var mods interaction.Modifier
	if msg.Shift {
		mods |= interaction.ModShift
	}
	if msg.Alt {
		mods |= interaction.ModAlt
	}
	if msg.Ctrl {
		mods |= interaction.ModCtrl
	}
	return mods
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
