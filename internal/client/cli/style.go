package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/newsmarks/internal/highlight"
)

var (
	yellowStyle = lipgloss.NewStyle().Background(lipgloss.Color("11")).Foreground(lipgloss.Color("0"))
	blueStyle   = lipgloss.NewStyle().Background(lipgloss.Color("12")).Foreground(lipgloss.Color("15"))
	redStyle    = lipgloss.NewStyle().Background(lipgloss.Color("9")).Foreground(lipgloss.Color("15"))
	greenStyle  = lipgloss.NewStyle().Background(lipgloss.Color("10")).Foreground(lipgloss.Color("0"))
	purpleStyle = lipgloss.NewStyle().Background(lipgloss.Color("13")).Foreground(lipgloss.Color("0"))
)

func colorStyle(c highlight.Color) lipgloss.Style {
	switch c {
	case highlight.ColorBlue:
		return blueStyle
	case highlight.ColorRed:
		return redStyle
	case highlight.ColorGreen:
		return greenStyle
	case highlight.ColorPurple:
		return purpleStyle
	default:
		return yellowStyle
	}
}

// RenderSegments turns the segmenter's output into a styled terminal string.
// Plain segments pass through untouched; highlighted ones get their color's
// background, and the active one is additionally underlined.
func RenderSegments(segments []highlight.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if !seg.Highlighted {
			b.WriteString(seg.Text)
			continue
		}
		style := colorStyle(seg.Color)
		if seg.Active {
			style = style.Underline(true).Bold(true)
		}
		b.WriteString(style.Render(seg.Text))
	}
	return b.String()
}
