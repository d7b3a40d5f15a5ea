// Package ui provides colored console output.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	// Colors
	Red    = color.New(color.FgRed)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Blue   = color.New(color.FgBlue)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
)

// Color modes accepted by ConfigureColor.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ConfigureColor enables or disables colored output. In auto mode color is
// used only when out is a terminal and NO_COLOR is unset.
func ConfigureColor(mode string, out io.Writer) error {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto, "":
		color.NoColor = !isTerminal(out) || os.Getenv("NO_COLOR") != ""
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Printer writes status lines to one writer.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Success prints a green success message with checkmark.
func (p *Printer) Success(format string, args ...any) {
	Green.Fprintf(p.w, "✓ "+format+"\n", args...)
}

// Error prints a red error message with X.
func (p *Printer) Error(format string, args ...any) {
	Red.Fprintf(p.w, "✗ "+format+"\n", args...)
}

// Warning prints a yellow warning message.
func (p *Printer) Warning(format string, args ...any) {
	Yellow.Fprintf(p.w, "⚠ "+format+"\n", args...)
}

// Info prints a blue info message.
func (p *Printer) Info(format string, args ...any) {
	Blue.Fprintf(p.w, format+"\n", args...)
}

// Header prints a bold header.
func (p *Printer) Header(format string, args ...any) {
	Bold.Fprintf(p.w, format+"\n", args...)
}

// Item prints an indented detail line in cyan with a plain value.
func (p *Printer) Item(label, format string, args ...any) {
	Cyan.Fprintf(p.w, "  %s ", label)
	fmt.Fprintf(p.w, format+"\n", args...)
}
