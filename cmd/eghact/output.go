package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/muesli/termenv"

	"github.com/eghact/eghact/pkg/vdom"
)

// ANSI colors used for patch output.
const (
	colorGreen  = "2"
	colorRed    = "1"
	colorYellow = "3"
	colorBlue   = "4"
	colorCyan   = "6"
	colorGray   = "8"
)

// printer writes colored CLI output. Colors are dropped when the writer is
// not a terminal or --no-color is set.
type printer struct {
	out *termenv.Output
}

func newPrinter(w io.Writer, noColor bool) printer {
	if noColor {
		return printer{out: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
	}
	return printer{out: termenv.NewOutput(w)}
}

func (p printer) paint(text, color string) string {
	return p.out.String(text).Foreground(p.out.Color(color)).String()
}

func (p printer) success(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.paint("✓", colorGreen), fmt.Sprintf(format, args...))
}

func (p printer) info(format string, args ...any) {
	fmt.Fprintf(p.out, "  %s\n", fmt.Sprintf(format, args...))
}

func (p printer) warn(format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", p.paint("⚠", colorYellow), fmt.Sprintf(format, args...))
}

// patches writes one line per patch, nesting Children patches under their
// child index.
func (p printer) patches(patches []vdom.Patch, depth int) {
	pad := strings.Repeat("  ", depth)
	for _, pt := range patches {
		switch pt.Kind {
		case vdom.PatchCreate:
			fmt.Fprintf(p.out, "%s%s create %s\n", pad, p.paint("+", colorGreen), describe(pt.Node))
		case vdom.PatchRemove:
			fmt.Fprintf(p.out, "%s%s remove\n", pad, p.paint("-", colorRed))
		case vdom.PatchReplace:
			fmt.Fprintf(p.out, "%s%s replace with %s\n", pad, p.paint("!", colorYellow), describe(pt.Node))
		case vdom.PatchText:
			fmt.Fprintf(p.out, "%s%s text %q\n", pad, p.paint("~", colorCyan), pt.Text)
		case vdom.PatchProps:
			fmt.Fprintf(p.out, "%s%s props %s\n", pad, p.paint("~", colorBlue), p.propChanges(pt.Props))
		case vdom.PatchChildren:
			for _, c := range pt.Children {
				fmt.Fprintf(p.out, "%s%s\n", pad, p.paint(fmt.Sprintf("[%d]", c.Index), colorGray))
				p.patches(c.Patches, depth+1)
			}
		}
	}
}

func (p printer) propChanges(changes []vdom.PropChange) string {
	sorted := append([]vdom.PropChange(nil), changes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	parts := make([]string, 0, len(sorted))
	for _, c := range sorted {
		if c.Removed() {
			parts = append(parts, p.paint(c.Key, colorRed)+"=<removed>")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", c.Key, formatValue(c.Value)))
	}
	return strings.Join(parts, " ")
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	default:
		if _, ok := vdom.FuncIdentity(v); ok {
			return "<func>"
		}
		return fmt.Sprint(x)
	}
}

func describe(n *vdom.VNode) string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case vdom.KindText:
		return fmt.Sprintf("text %q", n.Text)
	case vdom.KindFragment:
		return fmt.Sprintf("fragment (%d children)", len(n.Children))
	case vdom.KindComponent:
		return "<" + n.Tag + " />"
	default:
		if len(n.Children) == 0 {
			return "<" + n.Tag + ">"
		}
		return fmt.Sprintf("<%s> (%d children)", n.Tag, len(n.Children))
	}
}
