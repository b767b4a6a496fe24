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
	{`   ___          _                     `, "#818cf8"},
	{`  / __\__ _  __| | ___ _ __   ___ ___ `, "#a78bfa"},
	{` / /  / _` + "`" + ` |/ _` + "`" + ` |/ _ \ '_ \ / __/ _ \`, "#c084fc"},
	{`/ /__| (_| | (_| |  __/ | | | (_|  __/`, "#e879f9"},
	{`\____/\__,_|\__,_|\___|_| |_|\___\___|`, "#f472b6"},
}

// PrintBanner writes the Cadence ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}
