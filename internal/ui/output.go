package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"github.com/chameleoncloud/trovi/internal/ui/theme"
)

// Output provides styled terminal output.
type Output struct {
	out    io.Writer
	err    io.Writer
	theme  theme.Theme
	silent bool
	noTTY  bool
	width  int
}

// NewOutput creates a new styled output instance.
func NewOutput(out, err io.Writer) *Output {
	width := 80 // default
	if f, ok := out.(*os.File); ok {
		if w, _, e := term.GetSize(int(f.Fd())); e == nil && w > 0 {
			width = w
		}
	}
	return &Output{
		out:   out,
		err:   err,
		theme: theme.Current(),
		noTTY: !IsTTY(out) || NoColor(),
		width: width,
	}
}

// Width returns the terminal width.
func (o *Output) Width() int {
	return o.width
}

// Wrap wraps text to fit the terminal width.
func (o *Output) Wrap(text string) string {
	if o.width <= 0 {
		return text
	}
	return wordwrap.String(text, o.width)
}

// SetSilent enables or disables silent mode (suppresses stdout).
func (o *Output) SetSilent(silent bool) {
	o.silent = silent
}

func (o *Output) styled(style lipgloss.Style, text string) string {
	if o.noTTY {
		return text
	}
	return style.Render(text)
}

// Success prints a success message with checkmark.
func (o *Output) Success(msg string) {
	if o.silent {
		return
	}
	text := o.theme.Symbols().Success + " " + msg
	fmt.Fprintln(o.out, o.styled(o.theme.Styles().Success, text))
}

// Error prints an error message with X mark to stderr.
func (o *Output) Error(msg string) {
	text := o.theme.Symbols().Error + " " + msg
	fmt.Fprintln(o.err, o.styled(o.theme.Styles().Error, text))
}

// Warning prints a warning message to stderr.
func (o *Output) Warning(msg string) {
	text := o.theme.Symbols().Warning + " " + msg
	fmt.Fprintln(o.err, o.styled(o.theme.Styles().Warning, text))
}

// Info prints an info message with arrow.
func (o *Output) Info(msg string) {
	if o.silent {
		return
	}
	text := o.theme.Symbols().Info + " " + msg
	fmt.Fprintln(o.out, o.styled(o.theme.Styles().Info, text))
}

// Header prints a bold header.
func (o *Output) Header(text string) {
	if o.silent {
		return
	}
	fmt.Fprintln(o.out, o.styled(o.theme.Styles().Header, text))
}

// Println prints a line to stdout.
func (o *Output) Println(args ...any) {
	if o.silent {
		return
	}
	fmt.Fprintln(o.out, args...)
}

// Printf prints formatted output to stdout.
func (o *Output) Printf(format string, args ...any) {
	if o.silent {
		return
	}
	fmt.Fprintf(o.out, format, args...)
}

// Muted prints muted/dim text.
func (o *Output) Muted(msg string) {
	if o.silent {
		return
	}
	fmt.Fprintln(o.out, o.styled(o.theme.Styles().Muted, msg))
}

// KeyValue prints a key-value pair.
func (o *Output) KeyValue(key, value string) {
	if o.silent {
		return
	}
	if o.noTTY {
		fmt.Fprintf(o.out, "%s: %s\n", key, value)
		return
	}
	styles := o.theme.Styles()
	fmt.Fprintln(o.out, styles.Key.Render(key+":")+" "+styles.Value.Render(value))
}

// List prints a bulleted list.
func (o *Output) List(items []string) {
	if o.silent {
		return
	}
	sym := o.styled(o.theme.Styles().Emphasis, o.theme.Symbols().Bullet)
	for _, item := range items {
		fmt.Fprintf(o.out, "  %s %s\n", sym, item)
	}
}

// Newline prints an empty line.
func (o *Output) Newline() {
	if o.silent {
		return
	}
	fmt.Fprintln(o.out)
}

// Table prints rows under a bold header separated by a heavy rule, with no
// outer border.
func (o *Output) Table(headers []string, rows [][]string) {
	if o.silent {
		return
	}
	fmt.Fprintln(o.out, o.RenderTable(headers, rows))
}

// RenderTable returns the table produced by Table without printing it.
func (o *Output) RenderTable(headers []string, rows [][]string) string {
	styles := o.theme.Styles()
	headerStyle := styles.TableHeader
	borderStyle := styles.TableBorder
	if o.noTTY {
		headerStyle = lipgloss.NewStyle().Padding(0, 1)
		borderStyle = lipgloss.NewStyle()
	}

	t := table.New().
		Border(lipgloss.ThickBorder()).
		BorderStyle(borderStyle).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderRow(false).
		BorderHeader(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return styles.TableCell
		})
	return t.String()
}

// Theme returns the current theme.
func (o *Output) Theme() theme.Theme {
	return o.theme
}
