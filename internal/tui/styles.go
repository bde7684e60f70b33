package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/broady/taskmaster/task"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#5FAFAF") // Teal accent
	secondaryColor = lipgloss.Color("#666666") // Gray for secondary text
	successColor   = lipgloss.Color("#87AF87")
	errorColor     = lipgloss.Color("#AF5F5F")

	highColor   = lipgloss.Color("#D75F5F")
	mediumColor = lipgloss.Color("#D7AF5F")
	lowColor    = lipgloss.Color("#5F87AF")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	completedStyle = lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(secondaryColor)

	checkStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	errorBannerStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(errorColor).
				Foreground(errorColor).
				Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(secondaryColor).
			Padding(1, 2)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			MarginTop(1)
)

// priorityColor is the colour of the bar and badge for p.
func priorityColor(p task.Priority) lipgloss.Color {
	switch p {
	case task.High:
		return highColor
	case task.Medium:
		return mediumColor
	}
	return lowColor
}

func priorityBar(p task.Priority) string {
	return lipgloss.NewStyle().Foreground(priorityColor(p)).Render("▌")
}

func priorityBadge(p task.Priority) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1C1C1C")).
		Background(priorityColor(p)).
		Padding(0, 1).
		Render(string(p))
}
