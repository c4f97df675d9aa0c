package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-colorable"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Styles is the terminal palette shared by prompts and the output relay.
type Styles struct {
	Title    lipgloss.Style
	Bold     lipgloss.Style
	Option   lipgloss.Style
	Accent   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Progress lipgloss.Style
	Fallback lipgloss.Style
}

// NewStyles builds the palette for w. With color disabled every style renders
// plain text.
func NewStyles(w io.Writer, color bool) Styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return Styles{
		Title:    r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Bold:     r.NewStyle().Bold(true),
		Option:   r.NewStyle().Foreground(lipgloss.Color("12")),
		Accent:   r.NewStyle().Foreground(lipgloss.Color("14")),
		Success:  r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:  r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    r.NewStyle().Foreground(lipgloss.Color("9")),
		Progress: r.NewStyle().Foreground(lipgloss.Color("10")),
		Fallback: r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Terminal describes the process's standard output.
type Terminal struct {
	Out         io.Writer
	Interactive bool
}

// Stdout wraps os.Stdout so ANSI sequences also work on legacy Windows
// consoles, and reports whether it is attached to a terminal.
func Stdout() Terminal {
	return Terminal{
		Out:         colorable.NewColorableStdout(),
		Interactive: term.IsTerminal(int(os.Stdout.Fd())),
	}
}
