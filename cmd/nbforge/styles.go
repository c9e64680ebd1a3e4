package main

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorOK      = lipgloss.Color("#10B981") // Green
	colorWarn    = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
	colorHeading = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6B7280") // Gray

	// Doctor markers
	styleOK    = lipgloss.NewStyle().Foreground(colorOK)
	styleWarn  = lipgloss.NewStyle().Foreground(colorWarn)
	styleError = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	// Section headings
	styleHeading = lipgloss.NewStyle().Foreground(colorHeading).Bold(true)

	// Secondary detail lines
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
)

// markOK renders an [OK] line for doctor output.
func markOK(text string) string {
	return "  " + styleOK.Render("[OK]") + " " + text
}

// markWarn renders a [WARN] line for doctor output.
func markWarn(text string) string {
	return "  " + styleWarn.Render("[WARN]") + " " + text
}

// markError renders an [ERROR] line for doctor output.
func markError(text string) string {
	return "  " + styleError.Render("[ERROR]") + " " + text
}

// markMuted renders an informational line without a marker.
func markMuted(text string) string {
	return "  " + styleMuted.Render(text)
}
