package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aklerup/keyline/internal/models"
	"github.com/aklerup/keyline/internal/playback"
	"github.com/aklerup/keyline/internal/timeline"
)

func newTestEditor(t *testing.T) (*Model, *timeline.Model, string) {
	t.Helper()

	tl := timeline.New(timeline.WithDuration(10))
	id, err := tl.AddSegment(&models.Segment{
		Name:      "intro",
		Kind:      models.SegmentKindAnimation,
		StartTime: 2,
		EndTime:   5,
	})
	require.NoError(t, err)

	// External clock source keeps transport state changes synchronous.
	m := NewModel(tl, Config{
		PixelsPerSecond: 100,
		FollowAudio:     true,
		ProjectName:     "demo",
	})
	t.Cleanup(m.Close)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 24})
	return m, tl, id
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestSpaceTogglesPlayback(t *testing.T) {
	m, _, _ := newTestEditor(t)

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, playback.StatePlaying, m.clock.State())

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, playback.StatePaused, m.clock.State())

	m.Update(keyRune('s'))
	assert.Equal(t, playback.StateStopped, m.clock.State())
}

func TestViewShowsSegmentAndTransport(t *testing.T) {
	m, _, _ := newTestEditor(t)

	view := m.View()
	assert.Contains(t, view, "intro")
	assert.Contains(t, view, "demo")
	assert.Contains(t, view, "stopped")
}

func TestHelpOverlayToggle(t *testing.T) {
	m, _, _ := newTestEditor(t)

	m.Update(keyRune('?'))
	assert.Contains(t, m.View(), "editor keys")

	m.Update(keyRune('?'))
	assert.NotContains(t, m.View(), "editor keys")
}

func TestMouseDragMovesSegment(t *testing.T) {
	m, tl, id := newTestEditor(t)

	// Cell (30,3) sits mid-segment on track zero at 100 px/s.
	press := tea.MouseMsg{X: 30, Y: 3, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
	move := tea.MouseMsg{X: 40, Y: 3, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion}
	release := tea.MouseMsg{X: 40, Y: 3, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease}

	m.Update(press)
	m.Update(move)
	m.Update(release)

	s, err := tl.Segment(id)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, s.StartTime, 1e-9)
	assert.InDelta(t, 6.0, s.EndTime, 1e-9)
	assert.Equal(t, id, tl.Selected())
}

func TestRulerClickScrubsPlayhead(t *testing.T) {
	m, tl, _ := newTestEditor(t)

	// Row 1 is the ruler; cell 40 maps to 4.05 s at 100 px/s.
	m.Update(tea.MouseMsg{X: 40, Y: 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.InDelta(t, 4.05, tl.CurrentTime(), 1e-9)
}

func TestCreateAndDeleteKeys(t *testing.T) {
	m, tl, _ := newTestEditor(t)

	tl.Seek(7)
	m.Update(keyRune('n'))
	require.Len(t, tl.Segments(), 2)
	created := tl.Selected()
	require.NotEmpty(t, created)

	m.Update(keyRune('x'))
	assert.Len(t, tl.Segments(), 1)
	assert.Empty(t, tl.Selected())
}

func TestTabCyclesSelection(t *testing.T) {
	m, tl, id := newTestEditor(t)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, id, tl.Selected())

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, id, tl.Selected())
}
