package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderFormSection renders a bordered field section: ╭─ Title (hint) ───╮.
// A non-empty errMsg is drawn inside the bottom border in the error color,
// so a field's validation message always sits directly under it.
func RenderFormSection(content []string, title, hint, errMsg string, width int, focused bool) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	var titleColor lipgloss.TerminalColor = TextPrimaryColor
	if focused {
		borderColor = BorderHighlightFocusColor
		titleColor = BorderHighlightFocusColor
	}

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	hintStyle := lipgloss.NewStyle().Foreground(TextMutedColor)
	errStyle := lipgloss.NewStyle().Foreground(StatusErrorColor)

	innerWidth := max(width-2, 1)

	var topBorder string
	if title == "" {
		topBorder = borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	} else {
		label := title
		if hint != "" {
			label = title + " (" + hint + ")"
		}
		dashesAfter := max(innerWidth-lipgloss.Width(label)-3, 0)

		topBorder = borderStyle.Render(borderTopLeft+borderHorizontal+" ") + titleStyle.Render(title)
		if hint != "" {
			topBorder += " " + hintStyle.Render("("+hint+")")
		}
		topBorder += borderStyle.Render(" " + strings.Repeat(borderHorizontal, dashesAfter) + borderTopRight)
	}

	var lines []string
	lines = append(lines, topBorder)
	for _, row := range content {
		padding := ""
		if w := lipgloss.Width(row); w < innerWidth {
			padding = strings.Repeat(" ", innerWidth-w)
		}
		lines = append(lines, borderStyle.Render(borderVertical)+row+padding+borderStyle.Render(borderVertical))
	}

	if errMsg == "" {
		lines = append(lines, borderStyle.Render(borderBottomLeft+strings.Repeat(borderHorizontal, innerWidth)+borderBottomRight))
	} else {
		// ╰─ message ───╯, truncated to fit.
		msg := runewidth.Truncate(errMsg, max(innerWidth-3, 1), "…")
		dashesAfter := max(innerWidth-runewidth.StringWidth(msg)-3, 0)
		lines = append(lines, borderStyle.Render(borderBottomLeft+borderHorizontal+" ")+
			errStyle.Render(msg)+
			borderStyle.Render(" "+strings.Repeat(borderHorizontal, dashesAfter)+borderBottomRight))
	}

	return strings.Join(lines, "\n")
}
