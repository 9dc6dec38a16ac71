package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	hashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// painter renders styled text only when the destination is a terminal, so
// piped output and tests see plain text.
type painter struct {
	color bool
}

func newPainter(w io.Writer) painter {
	f, ok := w.(*os.File)
	if !ok {
		return painter{}
	}
	fd := f.Fd()
	return painter{color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

func (p painter) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p painter) red(text string) string     { return p.render(errorStyle, text) }
func (p painter) yellow(text string) string  { return p.render(warnStyle, text) }
func (p painter) current(text string) string { return p.render(currentStyle, text) }
func (p painter) hash(text string) string    { return p.render(hashStyle, text) }
