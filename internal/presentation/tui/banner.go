// Package tui styles terminal output of the dig commands.
package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"      _ _       ", "#34d399"},
	{"   __| (_) __ _ ", "#2dd4bf"},
	{"  / _` | |/ _` |", "#22d3ee"},
	{" | (_| | | (_| |", "#38bdf8"},
	{"  \\__,_|_|\\__, |", "#60a5fa"},
	{"          |___/ ", "#818cf8"},
}

// PrintBanner writes the dig banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}

// Status colors a one-line outcome green when ok and red otherwise.
func Status(ok bool, message string) string {
	p := termenv.ColorProfile()
	color := "#f87171"
	mark := "✗"
	if ok {
		color = "#34d399"
		mark = "✓"
	}
	return termenv.String(mark + " " + message).Foreground(p.Color(color)).String()
}
