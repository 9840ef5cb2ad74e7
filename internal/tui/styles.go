package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/positions/internal/version"
)

// AppName is shown in the header.
const AppName = "DOCUMENT POSITIONS"

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants
const (
	MinTerminalWidth = 72 // Minimum supported terminal width
	MinTableHeight   = 5
	chromeHeight     = 9 // header, pager, notice and help lines around the table
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green
	ErrorColor   = lipgloss.Color("#FF5555") // Red
	WarningColor = lipgloss.Color("#FFA500") // Orange
	MutedColor   = lipgloss.Color("#626262") // Gray
	TextColor    = lipgloss.Color("#FFFFFF") // White
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	PagerStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	FailureStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// FormBoxStyle frames the edit form
	FormBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(18)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true).
				Width(18)

	ReadonlyStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuggestionStyle = lipgloss.NewStyle().
			PaddingLeft(20).
			Foreground(TextColor)

	SelectedSuggestionStyle = lipgloss.NewStyle().
				PaddingLeft(18).
				Foreground(SuccessColor)

	// MatchStyle marks the part of a suggestion that matches the typed text
	MatchStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingTop(1)
)
