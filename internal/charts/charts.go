// Package charts renders dashboard figures with gonum/plot.
//
// Builders return a *plot.Plot so callers can tweak it before handing it to
// a Renderer. Empty input always yields a valid figure carrying a
// "No data" notice.
package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"advisingdash/internal/config"
)

// Renderer encodes plots at a fixed size.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
	Format string
}

// NewRenderer builds a Renderer from chart configuration in inches.
func NewRenderer(cfg config.ChartConfig) *Renderer {
	format := cfg.Format
	if format == "" {
		format = "png"
	}
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = 10
	}
	if height <= 0 {
		height = 5
	}
	return &Renderer{
		Width:  vg.Length(width) * vg.Inch,
		Height: vg.Length(height) * vg.Inch,
		Format: format,
	}
}

// Render encodes p in the renderer's format.
func (r *Renderer) Render(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(r.Width, r.Height, r.Format)
	if err != nil {
		return nil, fmt.Errorf("create %s writer: %w", r.Format, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode %s: %w", r.Format, err)
	}
	return buf.Bytes(), nil
}

// ContentType is the MIME type of rendered output.
func (r *Renderer) ContentType() string {
	if r.Format == "svg" {
		return "image/svg+xml"
	}
	return "image/png"
}

// Extension is the file extension of rendered output, without the dot.
func (r *Renderer) Extension() string {
	return r.Format
}

// Purples runs from dark to light.
var Purples = []color.RGBA{
	{R: 0x3f, G: 0x00, B: 0x7d, A: 0xff},
	{R: 0x54, G: 0x27, B: 0x8f, A: 0xff},
	{R: 0x6a, G: 0x51, B: 0xa3, A: 0xff},
	{R: 0x80, G: 0x7d, B: 0xba, A: 0xff},
	{R: 0x9e, G: 0x9a, B: 0xc8, A: 0xff},
	{R: 0xbc, G: 0xbd, B: 0xdc, A: 0xff},
	{R: 0xda, G: 0xda, B: 0xeb, A: 0xff},
	{R: 0xef, G: 0xed, B: 0xf5, A: 0xff},
}

// Series colors for bars and lines.
var (
	ColorPrimary   = color.RGBA{R: 0x8a, G: 0x2b, B: 0xe2, A: 0xff}
	ColorSecondary = color.RGBA{R: 0xff, G: 0x8c, B: 0x00, A: 0xff}
	ColorTertiary  = color.RGBA{R: 0x2e, G: 0x8b, B: 0x57, A: 0xff}
)

var seriesColors = []color.Color{ColorPrimary, ColorSecondary, ColorTertiary, Purples[4]}

// shade picks the i-th of n colors spread across Purples.
func shade(i, n int) color.Color {
	return Purples[shadeIndex(i, n)]
}

func shadeIndex(i, n int) int {
	if n <= 1 {
		return 0
	}
	// Keep clear of the lightest shade, which vanishes on white.
	last := len(Purples) - 2
	return (i * last) / (n - 1)
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func markEmpty(p *plot.Plot) *plot.Plot {
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: 0.5, Y: 0.5}},
		Labels: []string{"No data"},
	})
	if err == nil {
		labels.TextStyle[0].XAlign = draw.XCenter
		labels.TextStyle[0].YAlign = draw.YCenter
		labels.TextStyle[0].Font.Size = vg.Points(14)
		p.Add(labels)
	}
	return p
}

// barWidth shrinks bars as categories grow so they stay separated.
func barWidth(n, series int) vg.Length {
	if n == 0 {
		n = 1
	}
	if series <= 0 {
		series = 1
	}
	w := 360.0 / float64(n*series)
	return vg.Points(math.Max(4, math.Min(w, 40)))
}

func rotateTicks(a *plot.Axis, labels int) {
	if labels <= 6 {
		return
	}
	a.Tick.Label.Rotation = math.Pi / 4
	a.Tick.Label.XAlign = draw.XRight
	a.Tick.Label.YAlign = draw.YCenter
}
