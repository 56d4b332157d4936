package formatter

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// HumanDate returns a human-friendly absolute date string, or a dimmed
// placeholder for a missing date.
func HumanDate(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return t.UTC().Format("Jan 2, 2006")
}

// HumanTimestamp formats t with minute precision in UTC.
func HumanTimestamp(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006 15:04 MST")
}

// DateWindow renders a plan's start and end dates as "start → end".
func DateWindow(start, end *time.Time) string {
	if start == nil && end == nil {
		return Dim("open-ended")
	}
	return HumanDate(start) + Dim(" → ") + HumanDate(end)
}

// CultureBadge renders a language tag with its English display name,
// e.g. "de-DE (German)".
func CultureBadge(tag language.Tag) string {
	name := display.English.Tags().Name(tag)
	if name == "" {
		return StyleBlue.Render(tag.String())
	}
	return StyleBlue.Render(tag.String()) + Dim(" ("+name+")")
}

// ClassificationBadges renders taxonomy ids as purple comma-separated labels.
func ClassificationBadges(ids []string) string {
	if len(ids) == 0 {
		return Dim("--")
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = StylePurple.Render(id)
	}
	return strings.Join(parts, Dim(", "))
}
