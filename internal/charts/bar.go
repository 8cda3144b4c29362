package charts

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"advisingdash/internal/stats"
)

// Bar draws one vertical bar per count.
func Bar(title, xLabel, yLabel string, counts stats.Counts) (*plot.Plot, error) {
	p := newPlot(title, xLabel, yLabel)
	if len(counts) == 0 {
		return markEmpty(p), nil
	}

	bars, err := plotter.NewBarChart(values(counts), barWidth(len(counts), 1))
	if err != nil {
		return nil, fmt.Errorf("bar chart %q: %w", title, err)
	}
	bars.Color = ColorPrimary
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	p.Y.Min = 0
	p.NominalX(counts.Labels()...)
	rotateTicks(&p.X, len(counts))
	return p, nil
}

// HorizontalBar draws counts as horizontal bars with the first entry on top.
func HorizontalBar(title, xLabel, yLabel string, counts stats.Counts) (*plot.Plot, error) {
	p := newPlot(title, xLabel, yLabel)
	if len(counts) == 0 {
		return markEmpty(p), nil
	}

	reversed := make(stats.Counts, len(counts))
	for i, c := range counts {
		reversed[len(counts)-1-i] = c
	}

	bars, err := plotter.NewBarChart(values(reversed), barWidth(len(reversed), 1))
	if err != nil {
		return nil, fmt.Errorf("horizontal bar chart %q: %w", title, err)
	}
	bars.Horizontal = true
	bars.Color = ColorPrimary
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	p.X.Min = 0
	p.NominalY(reversed.Labels()...)
	return p, nil
}

// Line connects counts in order with markers at each point.
func Line(title, xLabel, yLabel string, counts stats.Counts) (*plot.Plot, error) {
	p := newPlot(title, xLabel, yLabel)
	if len(counts) == 0 {
		return markEmpty(p), nil
	}

	pts := make(plotter.XYs, len(counts))
	for i, c := range counts {
		pts[i].X = float64(i)
		pts[i].Y = float64(c.Value)
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("line chart %q: %w", title, err)
	}
	line.Color = ColorPrimary
	line.Width = vg.Points(2)
	points.Color = ColorPrimary
	points.Radius = vg.Points(3)

	p.Add(plotter.NewGrid(), line, points)
	p.Y.Min = 0
	p.NominalX(counts.Labels()...)
	rotateTicks(&p.X, len(counts))
	return p, nil
}

// GroupedBar draws one bar group per crosstab row with one bar per column.
func GroupedBar(title string, ct *stats.Crosstab) (*plot.Plot, error) {
	p := newPlot(title, "", "Count")
	if ct.Empty() {
		return markEmpty(p), nil
	}
	p.X.Label.Text = ct.RowHeader

	w := barWidth(len(ct.Rows), len(ct.Cols))
	for j, col := range ct.Cols {
		vs := make(plotter.Values, len(ct.Rows))
		for i := range ct.Rows {
			vs[i] = float64(ct.Get(i, j))
		}
		bars, err := plotter.NewBarChart(vs, w)
		if err != nil {
			return nil, fmt.Errorf("grouped bar chart %q: %w", title, err)
		}
		bars.Color = seriesColors[j%len(seriesColors)]
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(j)-float64(len(ct.Cols)-1)/2) * w
		p.Add(bars)
		p.Legend.Add(col, bars)
	}

	p.Legend.Top = true
	p.Y.Min = 0
	p.NominalX(ct.Rows...)
	rotateTicks(&p.X, len(ct.Rows))
	return p, nil
}

func values(c stats.Counts) plotter.Values {
	vs := make(plotter.Values, len(c))
	for i, item := range c {
		vs[i] = float64(item.Value)
	}
	return vs
}
