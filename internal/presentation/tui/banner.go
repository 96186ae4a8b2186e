package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the pagecraft banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"                                      __ _   ", "#818cf8"},
		{"  _ __   __ _  __ _  ___  ___ _ __ __ _ / _| |_ ", "#a78bfa"},
		{" | '_ \\ / _` |/ _` |/ _ \\/ __| '__/ _` | |_| __|", "#c084fc"},
		{" | |_) | (_| | (_| |  __/ (__| | | (_| |  _| |_ ", "#e879f9"},
		{" | .__/ \\__,_|\\__, |\\___|\\___|_|  \\__,_|_|  \\__|", "#f472b6"},
		{" |_|          |___/                              ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
