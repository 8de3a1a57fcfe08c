// Package styles defines the editor TUI style and theme tokens.
package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// TrackColors defines colors for the timeline lanes.
type TrackColors struct {
	Ruler    string
	Lane     string
	LaneAlt  string
	Playhead string
	Snap     string
}

// SegmentColors defines colors for segment states. The fill color itself
// comes from each segment; these cover selection and lock chrome.
type SegmentColors struct {
	SelectedBorder string
	LockedOverlay  string
	HiddenOverlay  string
	Preview        string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header    string
	Footer    string
	StatusBar string
	Error     string
}

// Theme defines the editor TUI theme tokens.
type Theme struct {
	Name string

	Base    BaseColors
	Track   TrackColors
	Segment SegmentColors
	Chrome  ChromeColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// ByName resolves a theme, falling back to the default palette.
func ByName(name string) Theme {
	if theme, ok := Themes[name]; ok {
		return theme
	}
	return DefaultTheme
}

// DefaultTheme is the standard dark palette.
var DefaultTheme = Theme{
	Name: "default",
	Base: BaseColors{
		Background: "235",
		Foreground: "252",
		Muted:      "243",
		Accent:     "39",
		Border:     "238",
	},
	Track: TrackColors{
		Ruler:    "245",
		Lane:     "236",
		LaneAlt:  "237",
		Playhead: "203",
		Snap:     "240",
	},
	Segment: SegmentColors{
		SelectedBorder: "226",
		LockedOverlay:  "246",
		HiddenOverlay:  "240",
		Preview:        "111",
	},
	Chrome: ChromeColors{
		Header:    "254",
		Footer:    "246",
		StatusBar: "250",
		Error:     "196",
	},
}

// HighContrastTheme raises foreground/background separation.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	Base: BaseColors{
		Background: "16",
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "231",
	},
	Track: TrackColors{
		Ruler:    "231",
		Lane:     "232",
		LaneAlt:  "234",
		Playhead: "196",
		Snap:     "244",
	},
	Segment: SegmentColors{
		SelectedBorder: "226",
		LockedOverlay:  "255",
		HiddenOverlay:  "244",
		Preview:        "87",
	},
	Chrome: ChromeColors{
		Header:    "231",
		Footer:    "253",
		StatusBar: "255",
		Error:     "196",
	},
}

// Styles bundles resolved lipgloss styles for one theme.
type Styles struct {
	Header    lipgloss.Style
	Footer    lipgloss.Style
	StatusBar lipgloss.Style
	Error     lipgloss.Style

	Ruler    lipgloss.Style
	Playhead lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
}

// For resolves the style set for a theme.
func For(theme Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Chrome.Header)).
			Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Chrome.Footer)),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Chrome.StatusBar)),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Chrome.Error)).
			Bold(true),
		Ruler: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Track.Ruler)),
		Playhead: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Track.Playhead)).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Base.Muted)),
		Accent: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Base.Accent)),
	}
}

// SegmentStyle builds the fill style for a segment block.
func SegmentStyle(hexColor string, selected bool, theme Theme) lipgloss.Style {
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(hexColor)).
		Foreground(lipgloss.Color("231"))
	if selected {
		style = style.
			Foreground(lipgloss.Color(theme.Segment.SelectedBorder)).
			Bold(true)
	}
	return style
}
