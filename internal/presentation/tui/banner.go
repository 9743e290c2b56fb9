package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the printdesk banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct{ text, color string }{
		{`             _       _      _           _    `, "#38bdf8"},
		{`  _ __  _ __(_)_ __ | |_ __| | ___  ___| | __`, "#22d3ee"},
		{` | '_ \| '__| | '_ \| __/ _' |/ _ \/ __| |/ /`, "#2dd4bf"},
		{` | |_) | |  | | | | | || (_| |  __/\__ \   < `, "#34d399"},
		{` | .__/|_|  |_|_| |_|\__\__,_|\___||___/_|\_\`, "#4ade80"},
		{` |_|                                         `, "#a3e635"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
