// Package display prints user facing status lines for the text menu.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

type symbols struct {
	success, err, warning, info string
}

var (
	unicodeSymbols = symbols{success: "✓", err: "✗", warning: "!", info: "i"}
	asciiSymbols   = symbols{success: "[OK]", err: "[ERROR]", warning: "[WARN]", info: "[INFO]"}
)

type Display struct {
	out  io.Writer
	sym  symbols
	ok   *color.Color
	fail *color.Color
	warn *color.Color
	note *color.Color
}

type Option func(*Display)

// WithoutColor disables ANSI sequences regardless of the terminal.
func WithoutColor() Option {
	return func(d *Display) {
		for _, c := range []*color.Color{d.ok, d.fail, d.warn, d.note} {
			c.DisableColor()
		}
	}
}

// WithASCII replaces the status glyphs with bracketed words.
func WithASCII() Option {
	return func(d *Display) {
		d.sym = asciiSymbols
	}
}

func New(out io.Writer, opts ...Option) *Display {
	if out == nil {
		out = os.Stdout
	}
	d := &Display{
		out:  out,
		sym:  unicodeSymbols,
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		warn: color.New(color.FgYellow),
		note: color.New(color.FgCyan),
	}
	if !supportsUnicode() {
		d.sym = asciiSymbols
	}
	for _, op := range opts {
		op(d)
	}
	return d
}

func supportsUnicode() bool {
	for _, env := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return strings.Contains(strings.ToUpper(v), "UTF-8") || strings.Contains(strings.ToUpper(v), "UTF8")
		}
	}
	return true
}

func (d *Display) Success(format string, a ...any) { d.line(d.ok, d.sym.success, format, a...) }

func (d *Display) Error(format string, a ...any) { d.line(d.fail, d.sym.err, format, a...) }

func (d *Display) Warning(format string, a ...any) { d.line(d.warn, d.sym.warning, format, a...) }

func (d *Display) Info(format string, a ...any) { d.line(d.note, d.sym.info, format, a...) }

// Println writes an unprefixed line.
func (d *Display) Println(format string, a ...any) {
	fmt.Fprintf(d.out, format+"\n", a...)
}

func (d *Display) line(c *color.Color, sym, format string, a ...any) {
	fmt.Fprintln(d.out, c.Sprint(sym), fmt.Sprintf(format, a...))
}

// Prompt writes a label without a trailing newline.
func (d *Display) Prompt(format string, a ...any) {
	fmt.Fprintf(d.out, format, a...)
}
