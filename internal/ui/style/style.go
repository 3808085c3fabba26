// Package style provides the colors and icons shared by terminal output.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
)

// Label renders a dimmed key for key/value listings.
func Label(s string) string {
	return lipgloss.NewStyle().Foreground(Slate).Render(s)
}

// Accent renders s in the brand accent color.
func Accent(s string) string {
	return lipgloss.NewStyle().Foreground(Iris).Bold(true).Render(s)
}
