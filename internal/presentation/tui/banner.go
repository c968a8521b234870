package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the workpad ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{` __      __       _                   _ `, "#34d399"},
		{` \ \    / /__ _ _| |___ __  __ _ __| |`, "#2dd4bf"},
		{`  \ \/\/ / _ \ '_| / / '_ \/ _' / _' |`, "#22d3ee"},
		{`   \_/\_/\___/_| |_\_\ .__/\__,_\__,_|`, "#38bdf8"},
		{`                     |_|               `, "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
