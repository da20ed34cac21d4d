package style

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bssong66/PerformanceTracker-sub000/internal/grid"
)

// Terminal converts attributes into a lipgloss style for the CLI month view.
func Terminal(a Attributes) lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color))
	if a.Strikethrough {
		st = st.Strikethrough(true)
	}
	if a.Opacity < 1 {
		st = st.Faint(true)
	}
	if a.Border == BorderDashed {
		st = st.Italic(true)
	}
	return st
}

// RenderOptions controls the terminal month grid.
type RenderOptions struct {
	CellWidth int
	Today     time.Time
}

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	dayStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	outsideStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	todayStyle   = lipgloss.NewStyle().Underline(true).Bold(true)
	moreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	cellBox      = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, true, false)
)

// RenderMonth draws a 6x7 grid of day buckets with their visible occurrences
// and "+N more" overflow markers.
func RenderMonth(month time.Time, cells []grid.DayBucket, s Styler, opts RenderOptions) string {
	width := opts.CellWidth
	if width <= 0 {
		width = 16
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(month.Format("January 2006")))
	b.WriteString("\n")

	heads := make([]string, 0, 7)
	for _, d := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		heads = append(heads, headerStyle.Width(width).Render(d))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, heads...))
	b.WriteString("\n")

	for _, week := range grid.Weeks(cells) {
		cols := make([]string, 0, len(week))
		for _, c := range week {
			cols = append(cols, cellBox.Width(width).Render(renderCell(c, s, width, opts.Today)))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
		b.WriteString("\n")
	}
	return b.String()
}

func renderCell(c grid.DayBucket, s Styler, width int, today time.Time) string {
	label := fmt.Sprintf("%2d", c.Date.Day())
	ls := dayStyle
	if !c.InMonth {
		ls = outsideStyle
	}
	if !today.IsZero() && sameDay(c.Date, today) {
		ls = ls.Inherit(todayStyle)
	}

	lines := []string{ls.Render(label)}
	for _, o := range c.Visible {
		lines = append(lines, Terminal(s.Style(o)).Render(truncate(o.Title, width-1)))
	}
	for len(lines) < grid.VisibleCap+1 {
		lines = append(lines, "")
	}
	if c.OverflowCount > 0 {
		lines = append(lines, moreStyle.Render(fmt.Sprintf("+%d more", c.OverflowCount)))
	} else {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
