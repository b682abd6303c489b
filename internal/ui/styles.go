package ui

import "github.com/charmbracelet/lipgloss"

// Palette is one colour theme.
type Palette struct {
	Fg        lipgloss.Color
	Muted     lipgloss.Color
	Primary   lipgloss.Color // selection and active tab
	Highlight lipgloss.Color // key hints, headings
	ChipBg    lipgloss.Color
	Danger    lipgloss.Color
	Favorite  lipgloss.Color
	BarBg     lipgloss.Color
}

var lightPalette = Palette{
	Fg:        lipgloss.Color("235"),
	Muted:     lipgloss.Color("244"),
	Primary:   lipgloss.Color("29"),  // Leaf green
	Highlight: lipgloss.Color("130"), // Turmeric
	ChipBg:    lipgloss.Color("254"),
	Danger:    lipgloss.Color("160"),
	Favorite:  lipgloss.Color("214"),
	BarBg:     lipgloss.Color("252"),
}

var darkPalette = Palette{
	Fg:        lipgloss.Color("255"),
	Muted:     lipgloss.Color("241"),
	Primary:   lipgloss.Color("35"),
	Highlight: lipgloss.Color("179"),
	ChipBg:    lipgloss.Color("237"),
	Danger:    lipgloss.Color("203"),
	Favorite:  lipgloss.Color("220"),
	BarBg:     lipgloss.Color("236"),
}

// Styles are the rendered styles for one palette.
type Styles struct {
	Title       lipgloss.Style
	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	HeaderMeta  lipgloss.Style
	Name        lipgloss.Style
	Selected    lipgloss.Style
	Latin       lipgloss.Style
	Chip        lipgloss.Style
	SystemChip  lipgloss.Style
	Star        lipgloss.Style
	Empty       lipgloss.Style
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusText  lipgloss.Style
	Listening   lipgloss.Style
	Error       lipgloss.Style
	Overlay     lipgloss.Style
	Section     lipgloss.Style
	Danger      lipgloss.Style
	DebugPanel  lipgloss.Style
	DebugHeader lipgloss.Style
}

// NewStyles builds the styles for the light or dark palette.
func NewStyles(dark bool) Styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			Padding(0, 1),
		Tab: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(p.Primary).
			Padding(0, 1),
		HeaderMeta: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 1),
		Name: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Fg).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(p.Primary).
			Padding(0, 1),
		Latin: lipgloss.NewStyle().
			Italic(true).
			Foreground(p.Muted),
		Chip: lipgloss.NewStyle().
			Foreground(p.Fg).
			Background(p.ChipBg).
			Padding(0, 1).
			MarginRight(1),
		SystemChip: lipgloss.NewStyle().
			Foreground(p.Primary).
			Background(p.ChipBg).
			Padding(0, 1).
			MarginRight(1),
		Star: lipgloss.NewStyle().
			Foreground(p.Favorite).
			Bold(true),
		Empty: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(1, 2),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.Fg).
			Background(p.BarBg).
			Padding(0, 1),
		StatusKey: lipgloss.NewStyle().
			Foreground(p.Highlight).
			Bold(true),
		StatusText: lipgloss.NewStyle().
			Foreground(p.Muted),
		Listening: lipgloss.NewStyle().
			Foreground(p.Danger).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(p.Danger).
			Bold(true).
			Padding(0, 1),
		Overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(1, 2),
		Section: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Highlight),
		Danger: lipgloss.NewStyle().
			Foreground(p.Danger),
		DebugPanel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.Muted).
			Padding(1, 1),
		DebugHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Highlight),
	}
}
