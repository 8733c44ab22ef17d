package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// Palette shared by every command.
var (
	colorSuccess = lipgloss.Color("#A6E3A1") // Green
	colorWarning = lipgloss.Color("#F9E2AF") // Yellow
	colorError   = lipgloss.Color("#F38BA8") // Red
	colorMuted   = lipgloss.Color("#6C7086") // Medium gray
	colorAccent  = lipgloss.Color("#7C3AED") // Purple
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)

// alertLevelStyle colours an alert severity.
func alertLevelStyle(level domain.AlertLevel) lipgloss.Style {
	switch level {
	case domain.LevelDanger:
		return errorStyle
	case domain.LevelWarning:
		return warningStyle
	default:
		return successStyle
	}
}

// tierStyle colours the flow level and risk tier labels.
func tierStyle(tier string) lipgloss.Style {
	switch tier {
	case "extreme":
		return errorStyle
	case "high":
		return warningStyle
	case "medium":
		return successStyle
	default:
		return mutedStyle
	}
}

// taskStatusStyle colours a scheduler log status.
func taskStatusStyle(status domain.TaskStatus) lipgloss.Style {
	switch status {
	case domain.TaskSuccess:
		return successStyle
	case domain.TaskFailed:
		return warningStyle
	default:
		return errorStyle
	}
}

// title renders a section heading.
func title(s string) string {
	return titleStyle.Render(s)
}
