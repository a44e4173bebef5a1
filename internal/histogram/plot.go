package histogram

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SavePNG renders the histogram as a bar chart and writes it to path.
// Underflow and overflow bins are included only when non-empty, matching
// the String rendering.
func (h *Histogram) SavePNG(path, title string) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "count"

	values := make(plotter.Values, 0, len(h.counts))
	labels := make([]string, 0, len(h.counts))

	if h.counts[0] > 0 {
		values = append(values, float64(h.counts[0]))
		labels = append(labels, fmt.Sprintf("< %g", h.boundaries[0]))
	}
	for i := 1; i < len(h.boundaries); i++ {
		values = append(values, float64(h.counts[i]))
		labels = append(labels, fmt.Sprintf("[%g, %g)", h.boundaries[i-1], h.boundaries[i]))
	}
	last := len(h.counts) - 1
	if h.counts[last] > 0 {
		values = append(values, float64(h.counts[last]))
		labels = append(labels, fmt.Sprintf("> %g", h.boundaries[len(h.boundaries)-1]))
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram plot: %w", err)
	}
	return nil
}
