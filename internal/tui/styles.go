// Package tui implements the interactive quick-add flow: type a sentence,
// review the extracted expenses, fix anything the model got wrong, commit.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#F97316")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates low-confidence rows.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	subtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(PrimaryColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			MarginTop(1)
)
