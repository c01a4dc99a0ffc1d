package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the live view. Fluid cells are tinted from Calm through
// Fast by the speed of the quickest particle in the cell.
type Theme struct {
	Name    string
	Calm    lipgloss.Color
	Fast    lipgloss.Color
	Foam    lipgloss.Color
	Wall    lipgloss.Color
	Pointer lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
}

// Available themes
var (
	ThemeOcean = Theme{
		Name:    "ocean",
		Calm:    lipgloss.Color("#0077be"),
		Fast:    lipgloss.Color("#00a8cc"),
		Foam:    lipgloss.Color("#e0f0ff"),
		Wall:    lipgloss.Color("#4488aa"),
		Pointer: lipgloss.Color("#ffd700"),
		Accent:  lipgloss.Color("#00ffff"),
		Muted:   lipgloss.Color("#4488aa"),
	}

	ThemeLava = Theme{
		Name:    "lava",
		Calm:    lipgloss.Color("#aa2200"),
		Fast:    lipgloss.Color("#ff6b00"),
		Foam:    lipgloss.Color("#ffd700"),
		Wall:    lipgloss.Color("#8b6b8c"),
		Pointer: lipgloss.Color("#ff9ff3"),
		Accent:  lipgloss.Color("#ff6b6b"),
		Muted:   lipgloss.Color("#8b6b8c"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Calm:    lipgloss.Color("#005500"),
		Fast:    lipgloss.Color("#00cc00"),
		Foam:    lipgloss.Color("#88ff88"),
		Wall:    lipgloss.Color("#00ff00"),
		Pointer: lipgloss.Color("#ffff00"),
		Accent:  lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Calm:    lipgloss.Color("#888888"),
		Fast:    lipgloss.Color("#cccccc"),
		Foam:    lipgloss.Color("#ffffff"),
		Wall:    lipgloss.Color("#666666"),
		Pointer: lipgloss.Color("#0088ff"),
		Accent:  lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
	}

	// Default theme
	CurrentTheme = ThemeOcean

	// All available themes
	Themes = []Theme{
		ThemeOcean,
		ThemeLava,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// cellStyles returns the styles indexed by canvas level.
func (t Theme) cellStyles() []lipgloss.Style {
	return []lipgloss.Style{
		lipgloss.NewStyle().Foreground(t.Wall),
		lipgloss.NewStyle().Foreground(t.Calm),
		lipgloss.NewStyle().Foreground(t.Fast),
		lipgloss.NewStyle().Foreground(t.Foam).Bold(true),
		lipgloss.NewStyle().Foreground(t.Pointer).Bold(true),
	}
}
