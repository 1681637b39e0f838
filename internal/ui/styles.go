package ui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan, banners and headings
	colorAccent  = lipgloss.Color("#FFD700") // Gold, warnings and suppressed shaders
	colorSuccess = lipgloss.Color("#00E676") // Green, successful compiles
	colorDanger  = lipgloss.Color("#FF5252") // Red, failures
	colorMuted   = lipgloss.Color("#8C8C8C") // Gray, de-emphasized detail
	colorBlue    = lipgloss.Color("#5B8DEF") // Blue, compile in progress
)

// Status icons.
const (
	iconDone      = "✓"
	iconFailed    = "✗"
	iconWorking   = "◎"
	iconSkipped   = "–"
	iconAdded     = "+"
	iconRemoved   = "-"
	iconWarning   = "⚠"
	iconHeader    = "◆"
	iconSeparator = "──"
)

var (
	styleBanner = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleHeading = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleDone = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleFailed = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleWorking = lipgloss.NewStyle().
			Foreground(colorBlue)

	styleWarn = lipgloss.NewStyle().
			Foreground(colorAccent)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().Bold(true)
)

// Table cell styles.
var (
	styleTableHeader = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				Padding(0, 1)

	styleTableCell = lipgloss.NewStyle().
			Padding(0, 1)

	styleTableBorder = lipgloss.NewStyle().
				Foreground(colorMuted)
)
