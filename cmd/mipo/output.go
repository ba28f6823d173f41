package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	apperrors "github.com/shhac/mipo/internal/errors"
)

var styleHeading = lipgloss.NewStyle().
	Bold(true).
	PaddingBottom(1)

var styleSuccess = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#04B575"))

var styleWarning = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FDD835"))

var styleError = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FF5F87"))

var styleFaint = lipgloss.NewStyle().Faint(true)

var styleHighlight = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FFA726"))

// output prints styled text on a terminal and plain text otherwise.
type output struct {
	out    io.Writer
	err    io.Writer
	styled bool
}

func newOutput(stdout, stderr *os.File) *output {
	fd := stdout.Fd()
	return &output{
		out:    stdout,
		err:    stderr,
		styled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
	}
}

func (o *output) render(s lipgloss.Style, text string) string {
	if !o.styled {
		return text
	}
	return s.Render(text)
}

func (o *output) Heading(text string) {
	fmt.Fprintln(o.out, o.render(styleHeading, text))
}

func (o *output) Println(format string, args ...any) {
	fmt.Fprintf(o.out, format+"\n", args...)
}

func (o *output) Success(format string, args ...any) {
	fmt.Fprintln(o.out, o.render(styleSuccess, fmt.Sprintf(format, args...)))
}

func (o *output) Warn(format string, args ...any) {
	fmt.Fprintln(o.err, o.render(styleWarning, fmt.Sprintf(format, args...)))
}

func (o *output) Faint(text string) string { return o.render(styleFaint, text) }

func (o *output) Highlight(text string) string { return o.render(styleHighlight, text) }

// Fail prints err as the user should see it: title, message and recovery
// hints, never the raw error chain.
func (o *output) Fail(err error) {
	ui := apperrors.ClassifyError(err)
	if ui == nil {
		return
	}
	fmt.Fprintln(o.err, o.render(styleError, ui.Title+": ")+ui.Message)
	if len(ui.Recovery) > 0 {
		fmt.Fprintln(o.err, o.render(styleFaint, "  "+strings.Join(ui.Recovery, "; ")))
	}
}
