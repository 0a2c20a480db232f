package poller

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
)

var (
	tileStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
	emptyStyle  = lipgloss.NewStyle().Foreground(colorGray)
)

func severityColor(s Severity) lipgloss.AdaptiveColor {
	switch s {
	case SeveritySuccess:
		return colorGreen
	case SeverityWarning:
		return colorYellow
	default:
		return colorBlue
	}
}

// RenderTile draws one tile: title, message and the "By … • when" footer.
func RenderTile(t Tile, now time.Time) string {
	c := severityColor(t.Severity)
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Foreground(c).Render(t.Title),
		t.Notification.Message,
		footerStyle.Render(t.Footer(now)),
	)
	return tileStyle.BorderForeground(c).Render(body)
}

// Render draws the visible tiles oldest first.
func Render(tiles []Tile, now time.Time) string {
	if len(tiles) == 0 {
		return emptyStyle.Render("no notifications")
	}
	parts := make([]string, 0, len(tiles))
	for _, t := range tiles {
		parts = append(parts, RenderTile(t, now))
	}
	return strings.Join(parts, "\n")
}
