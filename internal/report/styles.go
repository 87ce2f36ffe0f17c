// Package report renders relocation plans and layouts for the terminal.
package report

import "github.com/charmbracelet/lipgloss"

var (
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"} // Paths
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BBBBBB"} // Kinds, references
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Diff context, footers

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	StatusPendingColor = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}

	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	PathStyle    = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	KindStyle    = lipgloss.NewStyle().Foreground(TextSecondaryColor).Width(12)
	MutedStyle   = lipgloss.NewStyle().Foreground(TextMutedColor)
	WarningStyle = lipgloss.NewStyle().Foreground(StatusWarningColor)
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextSecondaryColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(BorderDefaultColor)

	DiffDeleteStyle  = lipgloss.NewStyle().Foreground(StatusErrorColor)
	DiffInsertStyle  = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	DiffContextStyle = MutedStyle
)

// statusColors maps manifest status values to their badge color.
var statusColors = map[string]lipgloss.AdaptiveColor{
	"copied":   StatusSuccessColor,
	"lost":     StatusErrorColor,
	"excluded": TextMutedColor,
	"pending":  StatusPendingColor,
}

// StatusStyle returns the badge style for a status value.
func StatusStyle(status string) lipgloss.Style {
	color, ok := statusColors[status]
	if !ok {
		color = TextSecondaryColor
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Width(9)
}
