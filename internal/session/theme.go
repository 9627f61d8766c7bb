package session

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette and glyph set of the session dialog.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Dim       lipgloss.Color
	Text      lipgloss.Color
	Input     lipgloss.Color

	Title            string
	Prompt           string
	FilterPrompt     string
	SelectedPrefix   string
	UnselectedPrefix string
	Border           lipgloss.Border
}

// DefaultTheme is used for unknown theme names.
const DefaultTheme = "hacker"

var themes = map[string]Theme{
	"minimal": {
		Name:             "minimal",
		Primary:          lipgloss.Color("6"),
		Secondary:        lipgloss.Color("4"),
		Accent:           lipgloss.Color("5"),
		Warning:          lipgloss.Color("3"),
		Error:            lipgloss.Color("1"),
		Dim:              lipgloss.Color("8"),
		Text:             lipgloss.Color("7"),
		Input:            lipgloss.Color("15"),
		Title:            " opencode ",
		Prompt:           "> ",
		FilterPrompt:     "/ ",
		SelectedPrefix:   "> ",
		UnselectedPrefix: "  ",
		Border:           lipgloss.RoundedBorder(),
	},
	"hacker": {
		Name:             "hacker",
		Primary:          lipgloss.Color("#00FF00"),
		Secondary:        lipgloss.Color("#00FFFF"),
		Accent:           lipgloss.Color("#FF00FF"),
		Warning:          lipgloss.Color("#FFAA00"),
		Error:            lipgloss.Color("#FF3232"),
		Dim:              lipgloss.Color("#008C00"),
		Text:             lipgloss.Color("#00E600"),
		Input:            lipgloss.Color("#00FF00"),
		Title:            " ░▒▓ OPENCODE ▓▒░ ",
		Prompt:           "λ ",
		FilterPrompt:     "⟫ ",
		SelectedPrefix:   "▸ ",
		UnselectedPrefix: "  ",
		Border:           lipgloss.ThickBorder(),
	},
	"matrix": {
		Name:             "matrix",
		Primary:          lipgloss.Color("#00C800"),
		Secondary:        lipgloss.Color("#00FF00"),
		Accent:           lipgloss.Color("#96FF96"),
		Warning:          lipgloss.Color("#C8FF00"),
		Error:            lipgloss.Color("#FF6464"),
		Dim:              lipgloss.Color("#005000"),
		Text:             lipgloss.Color("#00B400"),
		Input:            lipgloss.Color("#00FF00"),
		Title:            " ⟨ MATRIX ⟩ ",
		Prompt:           "$ ",
		FilterPrompt:     ">> ",
		SelectedPrefix:   "█ ",
		UnselectedPrefix: "░ ",
		Border:           lipgloss.ThickBorder(),
	},
	"crt": {
		Name:             "crt",
		Primary:          lipgloss.Color("#FFAA00"),
		Secondary:        lipgloss.Color("#FFC832"),
		Accent:           lipgloss.Color("#FFDC64"),
		Warning:          lipgloss.Color("#FFFF00"),
		Error:            lipgloss.Color("#FF6400"),
		Dim:              lipgloss.Color("#8C5A00"),
		Text:             lipgloss.Color("#FFAA00"),
		Input:            lipgloss.Color("#FFC832"),
		Title:            " ◄ TERMINAL ► ",
		Prompt:           `C:\> `,
		FilterPrompt:     "? ",
		SelectedPrefix:   "=> ",
		UnselectedPrefix: "   ",
		Border:           lipgloss.DoubleBorder(),
	},
}

var themeAliases = map[string]string{
	"min":   "minimal",
	"clean": "minimal",
	"hack":  "hacker",
	"cyber": "hacker",
	"neo":   "matrix",
	"retro": "crt",
	"amber": "crt",
}

// ThemeByName returns the named theme, accepting short aliases and falling
// back to DefaultTheme.
func ThemeByName(name string) Theme {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := themeAliases[name]; ok {
		name = alias
	}
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[DefaultTheme]
}

// ThemeNames lists the canonical theme names.
func ThemeNames() []string {
	return []string{"minimal", "hacker", "matrix", "crt"}
}

type styles struct {
	box        lipgloss.Style
	title      lipgloss.Style
	hint       lipgloss.Style
	heading    lipgloss.Style
	item       lipgloss.Style
	selected   lipgloss.Style
	desc       lipgloss.Style
	banner     lipgloss.Style
	status     lipgloss.Style
	help       lipgloss.Style
	prompt     lipgloss.Style
	inputText  lipgloss.Style
	filterText lipgloss.Style
}

func (t Theme) styles() styles {
	return styles{
		box: lipgloss.NewStyle().
			Border(t.Border).
			BorderForeground(t.Primary).
			Padding(0, 1),
		title:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		hint:       lipgloss.NewStyle().Foreground(t.Dim),
		heading:    lipgloss.NewStyle().Foreground(t.Secondary).Bold(true),
		item:       lipgloss.NewStyle().Foreground(t.Text),
		selected:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		desc:       lipgloss.NewStyle().Foreground(t.Dim),
		banner:     lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		status:     lipgloss.NewStyle().Foreground(t.Warning),
		help:       lipgloss.NewStyle().Foreground(t.Dim),
		prompt:     lipgloss.NewStyle().Foreground(t.Primary),
		inputText:  lipgloss.NewStyle().Foreground(t.Input),
		filterText: lipgloss.NewStyle().Foreground(t.Warning),
	}
}
