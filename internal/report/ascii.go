package report

import "github.com/guptarohit/asciigraph"

// Ascii renders one series as an 80x10 terminal chart.
func Ascii(data []float64, caption string) string {
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}
