package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// profile is the color profile used by Format. Ascii disables colors.
var profile = termenv.ColorProfile()

// DisableColors disables color output.
func DisableColors() {
	profile = termenv.Ascii
}

// EnableColors re-detects the terminal color profile.
func EnableColors() {
	profile = termenv.ColorProfile()
}

func paint(text, color string, bold bool) string {
	s := profile.String(text).Foreground(profile.Color(color))
	if bold {
		s = s.Bold()
	}
	return s.String()
}

func red(text string) string  { return paint(text, "1", false) }
func cyan(text string) string { return paint(text, "6", false) }
func blue(text string) string { return paint(text, "4", false) }
func gray(text string) string { return paint(text, "8", false) }

// Format returns the error laid out for terminal display.
func (e *EghactError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(paint("ERROR ", "1", true))
		b.WriteString(paint(e.Code+": ", "7", true))
	} else {
		b.WriteString(paint("ERROR: ", "1", true))
	}
	b.WriteString(e.Message)
	b.WriteString("\n\n")

	if e.Subject != "" {
		b.WriteString("  ")
		b.WriteString(cyan(e.Subject))
		b.WriteString("\n\n")
	}

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if e.Wrapped != nil {
		b.WriteString("  ")
		b.WriteString(red("Cause: "))
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n\n")
	}

	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(cyan("Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n\n")
	}

	if e.DocURL != "" {
		b.WriteString("  ")
		b.WriteString(gray("Learn more: "))
		b.WriteString(blue(e.DocURL))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact returns a compact single-line error format.
func (e *EghactError) FormatCompact() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Subject != "" {
		b.WriteString(" [")
		b.WriteString(e.Subject)
		b.WriteString("]")
	}
	return b.String()
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder

	for _, word := range strings.Fields(text) {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}

// Fprint writes a formatted error to w.
func Fprint(w io.Writer, err error) {
	if ee, ok := err.(*EghactError); ok {
		fmt.Fprint(w, ee.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint("ERROR:", "1", true), err.Error())
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
