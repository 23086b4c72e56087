package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerForegroupColor = lipgloss.AdaptiveColor{Light: "#1B5E20", Dark: "#A5D6A7"}
	bannerBorderColor    = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#AAAAAA"}
	bannerTitleColor     = lipgloss.AdaptiveColor{Light: "#00AAAA", Dark: "#00FFFF"}
	bannerMaxWidth       = 60
	bannerPadding        = 1
	bannerBorder         = lipgloss.RoundedBorder()
	bannerStyle          = lipgloss.NewStyle().
				Padding(bannerPadding).
				AlignVertical(lipgloss.Top).
				AlignHorizontal(lipgloss.Left).
				Border(bannerBorder).
				BorderForeground(bannerBorderColor)
	bannerBodyStyle  = lipgloss.NewStyle().Width(bannerMaxWidth).Foreground(bannerForegroupColor)
	bannerTitleStyle = lipgloss.NewStyle().AlignHorizontal(lipgloss.Center).Bold(true).Foreground(bannerTitleColor)
)

// Banner renders a bordered box with a centered title.
func Banner(title string, body string) string {
	block := bannerTitleStyle.Render(title) + "\n\n" + bannerBodyStyle.Render(body)
	return bannerStyle.Render(block)
}

// ShowBanner prints Banner to w when stdout is a terminal.
func ShowBanner(w io.Writer, title string, body string) {
	if !HasTTY {
		return
	}
	fmt.Fprintln(w, Banner(title, body))
}
