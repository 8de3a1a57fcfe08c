package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aklerup/keyline/internal/models"
	"github.com/aklerup/keyline/internal/tui/styles"
)

// minTracks keeps empty timelines editable by always showing lanes.
const minTracks = 3

func (m *Model) View() string {
	if m.width <= 0 {
		return ""
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderRuler())
	b.WriteByte('\n')
	b.WriteString(m.renderTracks())
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m *Model) renderHeader() string {
	name := m.cfg.ProjectName
	if name == "" {
		name = "untitled"
	}
	title := m.styleSet.Header.Render("keyline · " + name)
	transport := m.styleSet.Accent.Render(m.transportLabel())
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(transport)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + transport
}

func (m *Model) transportLabel() string {
	label := m.clock.State().String()
	if m.clock.Loop() {
		label += " ∞"
	}
	if m.clock.Speed() != 1.0 {
		label += fmt.Sprintf(" %.2fx", m.clock.Speed())
	}
	return label
}

// renderRuler draws second labels and tick marks, with the playhead caret
// on the tick row.
func (m *Model) renderRuler() string {
	labels := make([]rune, m.width)
	ticks := make([]rune, m.width)
	for i := range labels {
		labels[i] = ' '
		ticks[i] = '·'
	}

	total := m.timeline.TotalDuration()
	for second := 0.0; second <= total; second++ {
		col := m.columnAt(second)
		if col < 0 || col >= m.width {
			continue
		}
		ticks[col] = '|'
		label := formatTime(second)
		for j, r := range label {
			if col+j < m.width {
				labels[col+j] = r
			}
		}
	}

	playheadCol := m.columnAt(m.timeline.CurrentTime())
	tickRow := m.styleSet.Ruler.Render(string(ticks))
	if playheadCol >= 0 && playheadCol < m.width {
		tickRow = m.styleSet.Ruler.Render(string(ticks[:playheadCol])) +
			m.styleSet.Playhead.Render("▼") +
			m.styleSet.Ruler.Render(string(ticks[playheadCol+1:]))
	}

	return m.styleSet.Muted.Render(string(labels)) + "\n" + tickRow
}

func (m *Model) columnAt(t float64) int {
	return int(math.Floor(m.controller.Geometry().XAtTime(t) / cellPx))
}

// trackCell is one column of a rendered lane.
type trackCell struct {
	char     rune
	segment  *models.Segment
	preview  bool
	playhead bool
}

func (m *Model) renderTracks() string {
	segments := m.timeline.Segments()
	trackCount := m.timeline.TrackCount()
	if trackCount < minTracks {
		trackCount = minTracks
	}

	activeID := m.controller.ActiveSegment()
	previewStart, previewEnd, hasPreview := m.controller.Preview()

	playheadCol := m.columnAt(m.timeline.CurrentTime())
	selected := m.timeline.Selected()

	var b strings.Builder
	for track := 0; track < trackCount; track++ {
		cells := make([]trackCell, m.width)
		for i := range cells {
			cells[i] = trackCell{char: ' '}
		}

		for _, s := range segments {
			if s.TrackIndex != track {
				continue
			}
			start, end := s.StartTime, s.EndTime
			preview := false
			if hasPreview && s.ID == activeID {
				start, end = previewStart, previewEnd
				preview = true
			}
			m.paintSegment(cells, s, start, end, preview)
		}

		// Drag-create has no backing segment yet.
		if createTrack, creating := m.controller.PreviewTrack(); creating && createTrack == track {
			m.paintSegment(cells, nil, previewStart, previewEnd, true)
		}

		if playheadCol >= 0 && playheadCol < m.width {
			cells[playheadCol].playhead = true
		}

		row := m.renderTrackRow(cells, selected)
		b.WriteString(row)
		b.WriteByte('\n')
		b.WriteString(row)
		b.WriteByte('\n')
		if gapRows > 0 {
			b.WriteString(m.renderGapRow(playheadCol))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m *Model) paintSegment(cells []trackCell, s *models.Segment, start, end float64, preview bool) {
	startCol := m.columnAt(start)
	endCol := m.columnAt(end)
	if endCol <= startCol {
		endCol = startCol + 1
	}
	label := segmentLabel(s, endCol-startCol)

	for col := startCol; col < endCol; col++ {
		if col < 0 || col >= len(cells) {
			continue
		}
		char := ' '
		if idx := col - startCol; idx < len(label) {
			char = label[idx]
		}
		cells[col] = trackCell{char: char, segment: s, preview: preview}
	}
}

func segmentLabel(s *models.Segment, width int) []rune {
	if s == nil {
		return nil
	}
	label := " " + s.Name
	if s.Locked {
		label = " *" + label
	}
	if s.Hidden {
		label = " ~" + label
	}
	runes := []rune(label)
	if len(runes) > width {
		runes = runes[:width]
	}
	return runes
}

func (m *Model) renderTrackRow(cells []trackCell, selected string) string {
	var b strings.Builder
	i := 0
	for i < len(cells) {
		cell := cells[i]

		// Group consecutive cells sharing a style run.
		j := i
		var run strings.Builder
		for j < len(cells) && sameRun(cells[j], cell) {
			char := cells[j].char
			if cells[j].playhead && cells[j].segment == nil && !cells[j].preview {
				char = '│'
			}
			run.WriteRune(char)
			j++
		}

		b.WriteString(m.styleForCell(cell, selected).Render(run.String()))
		i = j
	}
	return b.String()
}

func sameRun(a, b trackCell) bool {
	return a.segment == b.segment && a.preview == b.preview && a.playhead == b.playhead
}

func (m *Model) styleForCell(cell trackCell, selected string) lipgloss.Style {
	switch {
	case cell.preview:
		return lipgloss.NewStyle().
			Background(lipgloss.Color(m.theme.Segment.Preview)).
			Foreground(lipgloss.Color("16"))
	case cell.segment != nil:
		color := cell.segment.Color
		if cell.segment.Hidden {
			color = m.theme.Segment.HiddenOverlay
		}
		return styles.SegmentStyle(color, cell.segment.ID == selected, m.theme)
	case cell.playhead:
		return m.styleSet.Playhead
	default:
		return lipgloss.NewStyle().Background(lipgloss.Color(m.theme.Track.Lane))
	}
}

func (m *Model) renderGapRow(playheadCol int) string {
	row := strings.Repeat(" ", m.width)
	if playheadCol >= 0 && playheadCol < m.width {
		return row[:playheadCol] + m.styleSet.Playhead.Render("│") + row[playheadCol+1:]
	}
	return row
}

func (m *Model) renderStatusBar() string {
	current := m.timeline.CurrentTime()
	total := m.timeline.TotalDuration()
	g := m.controller.Geometry()

	left := fmt.Sprintf("%s / %s  zoom %.0fpx/s", formatTime(current), formatTime(total), g.PixelsPerSecond)
	if m.controller.SnapInterval > 0 {
		left += fmt.Sprintf("  snap %.2gs", m.controller.SnapInterval)
	}

	if selected := m.timeline.Selected(); selected != "" {
		if s, err := m.timeline.Segment(selected); err == nil {
			left += fmt.Sprintf("  [%s %s %s–%s]", s.Kind, s.Name, formatTime(s.StartTime), formatTime(s.EndTime))
		}
	}

	if m.status != "" {
		left += "  " + m.styleSet.Error.Render(m.status)
	}
	m.warnMu.Lock()
	if m.warning != "" {
		left += "  " + m.styleSet.Error.Render("! "+m.warning)
	}
	m.warnMu.Unlock()

	hint := "? help"
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(hint)
	if gap < 1 {
		gap = 1
	}
	return m.styleSet.StatusBar.Render(left) + strings.Repeat(" ", gap) + m.styleSet.Footer.Render(hint)
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.styleSet.Header.Render("keyline editor keys"),
		"",
		"  space        play / pause",
		"  s            stop (rewind)",
		"  L            toggle loop",
		"  [ / ]        playback speed down / up",
		"  ← / →        seek 1s",
		"  home / end   jump to start / end",
		"  + / -        zoom in / out",
		"  h / l        scroll left / right",
		"  n            new segment at playhead",
		"  d            duplicate selected",
		"  x            delete selected",
		"  tab          select next segment",
		"  g            toggle grid snap",
		"  esc          cancel gesture / deselect",
		"",
		"  click        select · drag to move",
		"  edge drag    resize",
		"  double-click create segment",
		"  drag empty   draw new segment",
		"  wheel        zoom at cursor",
		"  ruler click  scrub playhead",
		"",
		m.styleSet.Footer.Render("  press ? to close"),
	}
	return strings.Join(lines, "\n")
}

func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := int(seconds) / 60
	rest := seconds - float64(minutes*60)
	return fmt.Sprintf("%d:%04.1f", minutes, rest)
}
