package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor     = lipgloss.Color("7")
	accentColor  = lipgloss.Color("12")
	successColor = lipgloss.Color("10")
	warningColor = lipgloss.Color("11")
	dangerColor  = lipgloss.Color("9")
	promptBg     = lipgloss.Color("0")

	// Operator prompt and section markers, bright green on black
	PromptStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Background(promptBg)

	// User message style
	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	// Assistant message style
	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	ToolStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)
)

// RoleStyle picks the style used for a role tag
func RoleStyle(role string) lipgloss.Style {
	switch role {
	case "user":
		return UserStyle
	case "assistant":
		return AssistantStyle
	case "tool":
		return ToolStyle
	default:
		return DimStyle
	}
}
