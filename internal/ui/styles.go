package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorDanger    = lipgloss.Color("196") // Red
)

// Title style for the app name in the header.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// ModeTab style for inactive mode tabs.
var ModeTab = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// ActiveModeTab style for the current mode tab.
var ActiveModeTab = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// SelectedItem style for the highlighted candidate.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for other candidates.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// KindBadge style for the candidate kind label.
var KindBadge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

// ListHeader style for the candidate list header.
var ListHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// ListCount style for the "N UNITS" counter.
var ListCount = lipgloss.NewStyle().
	Foreground(colorSecondary)

// EmptyState style for "nothing found" messages.
var EmptyState = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true).
	Padding(0, 1)

// SectionHeader style for the per-trade header in the result table.
var SectionHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1).
	Padding(0, 1)

// ColumnHeader style for result table column titles.
var ColumnHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorSecondary)

// CheapestBadge marks the cheapest price in the result set.
var CheapestBadge = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorSuccess)

// MutedText style for secondary text.
var MutedText = lipgloss.NewStyle().
	Foreground(colorMuted)

// SearchBar style for the query input line.
var SearchBar = lipgloss.NewStyle().
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// AlertBox style for the modal alert.
var AlertBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorDanger).
	Padding(1, 3)

// AlertTitle style for the alert heading.
var AlertTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorDanger)

// DebugPanel style for the event overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	BorderForeground(colorMuted).
	Padding(1, 1)

// DebugHeaderStyle style for overlay section headings.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// Prompt styles for text inputs.
var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff")).Bold(true)
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))
)
