package charts

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"advisingdash/internal/stats"
)

// Font sizes, in points, of the least and most frequent cloud words.
const (
	CloudMinFont = 10.0
	CloudMaxFont = 56.0
)

// Rect is an axis-aligned box in canvas units.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) contains(o Rect) bool {
	return o.MinX >= r.MinX && o.MaxX <= r.MaxX && o.MinY >= r.MinY && o.MaxY <= r.MaxY
}

func (r Rect) overlaps(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Placement is a positioned cloud word. X and Y are the word's center.
type Placement struct {
	Text string
	Size float64
	X, Y float64
	Box  Rect
}

// MeasureFunc returns the width and height of word at a font size.
type MeasureFunc func(word string, size float64) (w, h float64)

// LayoutCloud places words, heaviest first, along an Archimedean spiral
// from the center of bounds. Font sizes scale linearly with weight between
// CloudMinFont and CloudMaxFont. A word is dropped when no spiral position
// inside bounds is free of earlier words. The result is deterministic.
func LayoutCloud(words stats.Counts, bounds Rect, measure MeasureFunc) []Placement {
	if len(words) == 0 {
		return nil
	}

	lo, hi := words[0].Value, words[0].Value
	for _, w := range words {
		lo = min(lo, w.Value)
		hi = max(hi, w.Value)
	}

	cx := (bounds.MinX + bounds.MaxX) / 2
	cy := (bounds.MinY + bounds.MaxY) / 2
	width := bounds.MaxX - bounds.MinX
	height := bounds.MaxY - bounds.MinY
	if width <= 0 || height <= 0 {
		return nil
	}
	aspect := width / height
	maxRadius := math.Hypot(width, height) / 2

	placed := make([]Placement, 0, len(words))
	for _, w := range words {
		size := CloudMaxFont
		if hi > lo {
			size = CloudMinFont + (CloudMaxFont-CloudMinFont)*float64(w.Value-lo)/float64(hi-lo)
		}
		ww, wh := measure(w.Label, size)

		const step = 0.1
		for t := 0.0; ; t += step {
			r := 2 * t
			if r > maxRadius {
				break
			}
			x := cx + r*math.Cos(t)*aspect
			y := cy + r*math.Sin(t)
			box := Rect{MinX: x - ww/2, MinY: y - wh/2, MaxX: x + ww/2, MaxY: y + wh/2}
			if !bounds.contains(box) || collides(box, placed) {
				continue
			}
			placed = append(placed, Placement{Text: w.Label, Size: size, X: x, Y: y, Box: box})
			break
		}
	}
	return placed
}

func collides(box Rect, placed []Placement) bool {
	for _, p := range placed {
		if box.overlaps(p.Box) {
			return true
		}
	}
	return false
}

// WordCloud draws words sized by frequency.
func WordCloud(title string, words stats.Counts) (*plot.Plot, error) {
	p := newPlot(title, "", "")
	if len(words) == 0 {
		return markEmpty(p), nil
	}
	p.HideAxes()
	p.Add(&wordCloud{words: words})
	return p, nil
}

type wordCloud struct {
	words stats.Counts
}

// DataRange pins the unused axes.
func (wc *wordCloud) DataRange() (xmin, xmax, ymin, ymax float64) {
	return 0, 1, 0, 1
}

// Plot implements plot.Plotter.
func (wc *wordCloud) Plot(c draw.Canvas, plt *plot.Plot) {
	sty := plt.Title.TextStyle
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YCenter

	measure := func(word string, size float64) (float64, float64) {
		s := sty
		s.Font.Size = vg.Points(size)
		return float64(s.Width(word)), float64(s.Height(word))
	}

	bounds := Rect{
		MinX: float64(c.Min.X), MinY: float64(c.Min.Y),
		MaxX: float64(c.Max.X), MaxY: float64(c.Max.Y),
	}
	placements := LayoutCloud(wc.words, bounds, measure)
	for i, pl := range placements {
		s := sty
		s.Font.Size = vg.Points(pl.Size)
		s.Color = shade(i%6, 6)
		c.FillText(s, vg.Point{X: vg.Length(pl.X), Y: vg.Length(pl.Y)}, pl.Text)
	}
}
