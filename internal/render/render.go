// Package render formats review hunks, notifications, and summaries
// for terminal output.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/hay-kot/redline/internal/core/config"
	"github.com/hay-kot/redline/internal/core/notify"
	"github.com/hay-kot/redline/internal/core/textdiff"
)

const (
	defaultWidth = 80
	maxRuleWidth = 100
)

// Renderer formats hunks and review output for the terminal. Styling
// honors the configured color mode.
type Renderer struct {
	color bool

	header  lipgloss.Style
	add     lipgloss.Style
	remove  lipgloss.Style
	context lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style
	errored lipgloss.Style
}

// New returns a renderer for the given color mode. Modes other than
// "always" and "never" detect whether stdout is a terminal.
func New(colorMode string) *Renderer {
	var color bool
	switch colorMode {
	case config.ColorAlways:
		// Keep ANSI output even when piped.
		lipgloss.SetColorProfile(termenv.ANSI256)
		color = true
	case config.ColorNever:
		color = false
	default:
		color = term.IsTerminal(int(os.Stdout.Fd()))
	}

	return &Renderer{
		color:   color,
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		add:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		remove:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		context: lipgloss.NewStyle().Faint(true),
		muted:   lipgloss.NewStyle().Faint(true),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		errored: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	}
}

// Width returns the current terminal width, or a default when stdout is
// not a terminal.
func Width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

func (r *Renderer) style(st lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return st.Render(s)
}

// Rule renders a horizontal separator sized to the terminal.
func (r *Renderer) Rule() string {
	return r.style(r.muted, strings.Repeat("-", min(Width(), maxRuleWidth)))
}

// Title renders a section heading.
func (r *Renderer) Title(s string) string { return r.style(r.header, s) }

// Muted renders de-emphasized detail text.
func (r *Renderer) Muted(s string) string { return r.style(r.muted, s) }

// Success renders s in the additive (green) style.
func (r *Renderer) Success(s string) string { return r.style(r.add, s) }

// Warning renders s in the warning (yellow) style.
func (r *Renderer) Warning(s string) string { return r.style(r.warn, s) }

// Error renders s in the error style.
func (r *Renderer) Error(s string) string { return r.style(r.errored, s) }

// Hunk renders a single hunk with a unified-style header and gutter
// line numbers. Position is shown as "n/total" when total > 0.
func (r *Renderer) Hunk(h textdiff.Hunk, index, total int) string {
	var b strings.Builder

	header := fmt.Sprintf("@@ %s -%s +%s @@", h.ID, rangeLabel(h.OldStart, h.OldEnd), rangeLabel(h.NewStart, h.NewEnd))
	if total > 0 {
		header = fmt.Sprintf("%s hunk %d/%d", header, index, total)
	}
	b.WriteString(r.style(r.header, header))
	b.WriteString("\n")

	for _, line := range h.Lines {
		b.WriteString(r.line(line))
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// line renders one diff line as "old new marker content".
func (r *Renderer) line(line textdiff.Line) string {
	oldNum, newNum := "", ""
	if line.OldLineNum > 0 {
		oldNum = fmt.Sprintf("%d", line.OldLineNum)
	}
	if line.NewLineNum > 0 {
		newNum = fmt.Sprintf("%d", line.NewLineNum)
	}

	gutter := fmt.Sprintf("%4s %4s", oldNum, newNum)

	switch line.Type {
	case textdiff.LineAdd:
		return fmt.Sprintf("%s %s", r.style(r.muted, gutter), r.style(r.add, "+ "+line.Content))
	case textdiff.LineRemove:
		return fmt.Sprintf("%s %s", r.style(r.muted, gutter), r.style(r.remove, "- "+line.Content))
	default:
		return fmt.Sprintf("%s %s", r.style(r.muted, gutter), r.style(r.context, "  "+line.Content))
	}
}

// Summary renders a one-line review progress summary.
func (r *Renderer) Summary(documentID string, pending, decided int) string {
	return fmt.Sprintf("%s  %s", r.style(r.header, documentID),
		fmt.Sprintf("%d pending, %d decided", pending, decided))
}

// Notification renders a stored notification as a single line.
func (r *Renderer) Notification(n notify.Notification) string {
	marker := "•"
	st := r.muted

	switch n.Level {
	case notify.LevelWarning:
		marker = "!"
		st = r.warn
	case notify.LevelError:
		marker = "✗"
		st = r.errored
	}

	ts := n.CreatedAt.Local().Format("2006-01-02 15:04")
	return fmt.Sprintf("%s %s [%d] %s", r.style(st, marker), r.style(r.muted, ts), n.ID, n.Message)
}

// rangeLabel formats a 1-based inclusive range, "0" when the hunk has
// no lines on that side.
func rangeLabel(start, end int) string {
	if start <= 0 {
		return "0"
	}
	return fmt.Sprintf("%d,%d", start, end-start+1)
}
