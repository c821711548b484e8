package termhost

import "github.com/charmbracelet/lipgloss"

// Semantic colors, following the same palette conventions as editor themes.
var (
	colorType  = lipgloss.Color("#10b981") // green-500
	colorParam = lipgloss.Color("#06b6d4") // cyan-500

	colorDim    = lipgloss.Color("#6b7280") // gray-500
	colorMuted  = lipgloss.Color("#9ca3af") // gray-400
	colorAccent = lipgloss.Color("#3b82f6") // blue-500
	colorOff    = lipgloss.Color("#ef4444") // red-500
)

// Styles holds all lipgloss styles for terminal hint rendering.
type Styles struct {
	// Hint labels by category
	TypeHint      lipgloss.Style
	ParameterHint lipgloss.Style

	// Chrome
	Path   lipgloss.Style
	Dim    lipgloss.Style
	Muted  lipgloss.Style
	Bold   lipgloss.Style
	Toggle lipgloss.Style
	Off    lipgloss.Style

	// Symbols
	SymbolOn      string
	SymbolOff     string
	SymbolPointer string
}

// DefaultStyles returns the default rendering styles.
func DefaultStyles() *Styles {
	return &Styles{
		TypeHint:      lipgloss.NewStyle().Foreground(colorType).Italic(true),
		ParameterHint: lipgloss.NewStyle().Foreground(colorParam).Italic(true),

		Path:   lipgloss.NewStyle().Foreground(colorAccent),
		Dim:    lipgloss.NewStyle().Foreground(colorDim),
		Muted:  lipgloss.NewStyle().Foreground(colorMuted),
		Bold:   lipgloss.NewStyle().Bold(true),
		Toggle: lipgloss.NewStyle().Foreground(colorType).Bold(true),
		Off:    lipgloss.NewStyle().Foreground(colorOff).Bold(true),

		SymbolOn:      "●",
		SymbolOff:     "○",
		SymbolPointer: "❯",
	}
}

// SpinnerFrames returns the braille spinner animation frames.
func SpinnerFrames() []string {
	return []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
}
