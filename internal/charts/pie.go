package charts

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"advisingdash/internal/stats"
)

// Pie draws counts as wedges starting at twelve o'clock and running
// counter-clockwise, labelled outside with the category and inside with
// its share.
func Pie(title string, counts stats.Counts) (*plot.Plot, error) {
	p := newPlot(title, "", "")
	if counts.Total() == 0 {
		return markEmpty(p), nil
	}
	p.HideAxes()
	p.Add(&pieChart{counts: counts})
	return p, nil
}

type pieChart struct {
	counts stats.Counts
}

// DataRange pins the unused axes.
func (pc *pieChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	return 0, 1, 0, 1
}

// Plot implements plot.Plotter.
func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	center := c.Center()
	radius := 0.38 * math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y))
	total := float64(pc.counts.Total())

	label := plt.Title.TextStyle
	label.Font.Size = vg.Points(10)
	label.YAlign = draw.YCenter

	start := math.Pi / 2
	for i, item := range pc.counts {
		if item.Value == 0 {
			continue
		}
		sweep := 2 * math.Pi * float64(item.Value) / total
		wedge := arc(center, radius, start, sweep)
		c.FillPolygon(shade(i, len(pc.counts)), wedge)
		c.StrokeLines(draw.LineStyle{Color: Purples[len(Purples)-1], Width: vg.Points(1)}, wedge)

		mid := start + sweep/2
		cos, sin := math.Cos(mid), math.Sin(mid)

		outer := label
		outer.XAlign = draw.XLeft
		if cos < 0 {
			outer.XAlign = draw.XRight
		}
		c.FillText(outer, polar(center, 1.1*radius, cos, sin), item.Label)

		inner := label
		inner.XAlign = draw.XCenter
		inner.Color = Purples[len(Purples)-1]
		if shadeIndex(i, len(pc.counts)) >= 4 {
			inner.Color = Purples[0]
		}
		c.FillText(inner, polar(center, 0.6*radius, cos, sin), fmt.Sprintf("%.1f%%", 100*float64(item.Value)/total))

		start += sweep
	}
}

// arc approximates a wedge as a closed polygon.
func arc(center vg.Point, radius, start, sweep float64) []vg.Point {
	steps := int(math.Ceil(sweep / (math.Pi / 90)))
	if steps < 1 {
		steps = 1
	}
	pts := make([]vg.Point, 0, steps+3)
	pts = append(pts, center)
	for s := 0; s <= steps; s++ {
		a := start + sweep*float64(s)/float64(steps)
		pts = append(pts, polar(center, radius, math.Cos(a), math.Sin(a)))
	}
	return append(pts, center)
}

func polar(center vg.Point, r, cos, sin float64) vg.Point {
	return vg.Point{
		X: center.X + vg.Length(r*cos),
		Y: center.Y + vg.Length(r*sin),
	}
}
