package dupfind

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Console is the interactive channel: prompts and outcomes go to out, answers are
// read line by line from in
type Console struct {
	in  *bufio.Reader
	out io.Writer

	header *color.Color
	ok     *color.Color
	warn   *color.Color
	fail   *color.Color
}

// NewConsole creates a console. With colored unset the output is plain text
// regardless of the terminal.
func NewConsole(in io.Reader, out io.Writer, colored bool) *Console {
	c := &Console{
		in:     bufio.NewReader(in),
		out:    out,
		header: color.New(color.Bold),
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed),
	}

	for _, p := range []*color.Color{c.header, c.ok, c.warn, c.fail} {
		if colored {
			p.EnableColor()
		} else {
			p.DisableColor()
		}
	}

	return c
}

// ColorEnabled resolves a color mode ("auto", "always", "never") for out. Auto
// colors only terminals.
func ColorEnabled(mode string, out io.Writer) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}

	if f, ok := out.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// ReadLine reads one line without its line terminator. A final line without a
// newline is returned normally; io.EOF is only returned when nothing was read.
func (c *Console) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Printf writes plain transcript text
func (c *Console) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// Headerf writes a section header
func (c *Console) Headerf(format string, args ...interface{}) {
	c.header.Fprintf(c.out, format, args...)
}

// Successf writes a successful outcome line
func (c *Console) Successf(format string, args ...interface{}) {
	c.ok.Fprintf(c.out, format, args...)
}

// Warnf writes a skipped or cancelled outcome line
func (c *Console) Warnf(format string, args ...interface{}) {
	c.warn.Fprintf(c.out, format, args...)
}

// Failf writes a failed outcome line
func (c *Console) Failf(format string, args ...interface{}) {
	c.fail.Fprintf(c.out, format, args...)
}
