package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange/Yellow
	ColorText      = lipgloss.Color("252") // White/Gray

	// Base Styles
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleText    = lipgloss.NewStyle().Foreground(ColorText)

	// Input Box Style for the message prompt
	StyleInputBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	// Semantic Prefix Styles
	StylePrefixAssistant = lipgloss.NewStyle().Foreground(ColorPrimary) // Pink for assistant
	StylePrefixUser      = lipgloss.NewStyle().Foreground(ColorSuccess) // Green for user
	StylePrefixWarn      = lipgloss.NewStyle().Foreground(ColorWarning)
	StylePrefixDone      = lipgloss.NewStyle().Foreground(ColorSuccess)
)
