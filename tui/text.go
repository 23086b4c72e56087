package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	linkForegroupColor = lipgloss.AdaptiveColor{Light: "#000099", Dark: "#9F9FFF"}
	linkStyle          = lipgloss.NewStyle().Foreground(linkForegroupColor).Underline(true)
	textStyleColor     = lipgloss.AdaptiveColor{Light: "#36EEE0", Dark: "#00FFFF"}
	mutedStyleColor    = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}
	warningStyleColor  = lipgloss.AdaptiveColor{Light: "#FFA500", Dark: "#FFA500"}
	titleStyleColor    = lipgloss.AdaptiveColor{Light: "#071330", Dark: "#F652A0"}
)

func Title(text string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(titleStyleColor).Render(text)
}

func Bold(text string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(textStyleColor).Render(text)
}

func Muted(text string) string {
	return lipgloss.NewStyle().Foreground(mutedStyleColor).Render(text)
}

func Warning(text string) string {
	return lipgloss.NewStyle().Foreground(warningStyleColor).Render(text)
}

func Link(url string, args ...any) string {
	return linkStyle.Render(fmt.Sprintf(url, args...))
}
