// Package output provides styled terminal rendering helpers for studiodesk.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess is used for ON_TRACK projects and completed work.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for OVERDUE projects.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for AT_RISK projects.
	ColorWarning = lipgloss.Color("#ffb74d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	// StyleHeader is used for section headers.
	StyleHeader lipgloss.Style

	// StyleSuccess is used for positive values.
	StyleSuccess lipgloss.Style

	// StyleError is used for negative values.
	StyleError lipgloss.Style

	// StyleWarning is used for cautionary values.
	StyleWarning lipgloss.Style

	// StyleMuted is used for de-emphasized text.
	StyleMuted lipgloss.Style

	// StyleBold is used for emphasized text.
	StyleBold lipgloss.Style

	// StyleLabel is used for field labels in detail views.
	StyleLabel lipgloss.Style

	// StyleValue is used for field values in detail views.
	StyleValue lipgloss.Style
)

// noColor tracks whether color output is disabled.
var noColor bool

// lineWidth is the width tables and section rules are fitted to.
var lineWidth = 80

func init() {
	applyStyles(false)
}

// SetNoColor disables or enables color output globally.
// When disabled, all package-level styles are reassigned to unstyled renderers.
func SetNoColor(disabled bool) {
	noColor = disabled
	applyStyles(disabled)
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// SetWidth sets the line width output is fitted to. Zero or less
// disables fitting.
func SetWidth(n int) {
	lineWidth = n
}

// LineWidth returns the configured line width.
func LineWidth() int {
	return lineWidth
}

// AutoColor disables color unless f is a terminal.
func AutoColor(f *os.File) {
	SetNoColor(!IsTerminal(f))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func applyStyles(plain bool) {
	if plain {
		s := lipgloss.NewStyle()
		StyleHeader = s
		StyleSuccess = s
		StyleError = s
		StyleWarning = s
		StyleMuted = s
		StyleBold = s
		StyleLabel = s.Width(18)
		StyleValue = s
		return
	}
	StyleHeader = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold = lipgloss.NewStyle().Bold(true)
	StyleLabel = lipgloss.NewStyle().Width(18)
	StyleValue = lipgloss.NewStyle().Bold(true)
}
