package panels

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 20

// renderBar draws a [0,1] value. When limit is set its cell is marked with |.
func renderBar(value float64, limit *float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := cellsFor(value, width)
	limitCell := -1
	if limit != nil {
		limitCell = cellsFor(*limit, width)
		if limitCell >= width {
			limitCell = width - 1
		}
	}

	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == limitCell:
			b.WriteString(s.barLimit.Render("|"))
		case i < filled:
			b.WriteString(s.barFill.Render("="))
		default:
			b.WriteString(s.barEmpty.Render("-"))
		}
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		b.String(),
		s.barBracket.Render("]"),
	)
}

func cellsFor(fraction float64, width int) int {
	cells := int(math.Round(float64(width) * clampUnit(fraction)))
	if cells < 0 {
		return 0
	}
	if cells > width {
		return width
	}
	return cells
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatRelative(ts, now time.Time) string {
	if ts.IsZero() {
		return "unknown"
	}
	if now.IsZero() {
		return ts.Format("2006-01-02 15:04")
	}

	elapsed := now.Sub(ts)
	switch {
	case elapsed < 0:
		return ts.Format("15:04")
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return ts.Format("02 Jan 15:04")
	}
}

func formatPercent(fraction float64) string {
	return fmt.Sprintf("%.0f%%", fraction*100)
}

func onOff(enabled bool, s styles) string {
	if enabled {
		return s.ok.Render("enabled")
	}
	return s.danger.Render("disabled")
}

func truncate(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 || len([]rune(text)) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max-1]) + "…"
}
