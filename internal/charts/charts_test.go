package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"advisingdash/internal/config"
	"advisingdash/internal/stats"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testRenderer() *Renderer {
	return NewRenderer(config.ChartConfig{Width: 4, Height: 3, Format: "png"})
}

func sampleCounts() stats.Counts {
	return stats.Counts{
		{Label: "Monday", Value: 4},
		{Label: "Tuesday", Value: 2},
		{Label: "Wednesday", Value: 7},
	}
}

func sampleCrosstab() *stats.Crosstab {
	return stats.NewCrosstab("Advisor", "Status",
		[]string{"Ada", "Ada", "Grace", "Grace", "Grace"},
		[]string{"First-Time", "Repeat", "First-Time", "First-Time", "Repeat"},
		stats.CrosstabOptions{})
}

func TestBuilders_RenderPNG(t *testing.T) {
	builders := map[string]func(stats.Counts) (*plot.Plot, error){
		"bar": func(c stats.Counts) (*plot.Plot, error) { return Bar("Weekday", "Day", "Count", c) },
		"hbar": func(c stats.Counts) (*plot.Plot, error) {
			return HorizontalBar("Words", "Frequency", "", c)
		},
		"line":  func(c stats.Counts) (*plot.Plot, error) { return Line("Timeline", "Month", "Students", c) },
		"pie":   func(c stats.Counts) (*plot.Plot, error) { return Pie("Majors", c) },
		"cloud": func(c stats.Counts) (*plot.Plot, error) { return WordCloud("Topics", c) },
		"grouped": func(stats.Counts) (*plot.Plot, error) {
			return GroupedBar("New vs returning", sampleCrosstab())
		},
	}

	r := testRenderer()
	for name, build := range builders {
		for _, input := range []stats.Counts{sampleCounts(), nil} {
			t.Run(name, func(t *testing.T) {
				p, err := build(input)
				require.NoError(t, err)

				data, err := r.Render(p)
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(data, pngMagic), "output is not a PNG")
			})
		}
	}
}

func TestGroupedBar_EmptyCrosstab(t *testing.T) {
	p, err := GroupedBar("Empty", stats.NewCrosstab("A", "B", nil, nil, stats.CrosstabOptions{}))
	require.NoError(t, err)

	data, err := testRenderer().Render(p)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestRenderer_SVG(t *testing.T) {
	r := NewRenderer(config.ChartConfig{Width: 4, Height: 3, Format: "svg"})
	assert.Equal(t, "image/svg+xml", r.ContentType())
	assert.Equal(t, "svg", r.Extension())

	p, err := Bar("Weekday", "", "", sampleCounts())
	require.NoError(t, err)
	data, err := r.Render(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestRenderer_Defaults(t *testing.T) {
	r := NewRenderer(config.ChartConfig{})
	assert.Equal(t, "png", r.Format)
	assert.Equal(t, "image/png", r.ContentType())
	assert.Equal(t, 10*vg.Inch, r.Width)
	assert.Equal(t, 5*vg.Inch, r.Height)
}

// fixedMeasure treats every glyph as a square of the font size.
func fixedMeasure(word string, size float64) (float64, float64) {
	return float64(len(word)) * size * 0.6, size
}

func TestLayoutCloud(t *testing.T) {
	words := stats.Counts{
		{Label: "essay", Value: 10},
		{Label: "major", Value: 6},
		{Label: "application", Value: 4},
		{Label: "courses", Value: 3},
		{Label: "plan", Value: 1},
	}
	bounds := Rect{MinX: 0, MinY: 0, MaxX: 600, MaxY: 300}

	placed := LayoutCloud(words, bounds, fixedMeasure)
	require.Len(t, placed, len(words))

	first := placed[0]
	assert.Equal(t, "essay", first.Text)
	assert.Equal(t, CloudMaxFont, first.Size)
	assert.InDelta(t, 300, first.X, 1e-9)
	assert.InDelta(t, 150, first.Y, 1e-9)
	assert.Equal(t, CloudMinFont, placed[len(placed)-1].Size)

	for i, a := range placed {
		assert.True(t, bounds.contains(a.Box), "%s leaves bounds", a.Text)
		for _, b := range placed[i+1:] {
			assert.False(t, a.Box.overlaps(b.Box), "%s overlaps %s", a.Text, b.Text)
		}
	}

	assert.Equal(t, placed, LayoutCloud(words, bounds, fixedMeasure))
}

func TestLayoutCloud_DropsWordsThatDoNotFit(t *testing.T) {
	words := stats.Counts{
		{Label: "tiny", Value: 1},
		{Label: "extraordinarilylongword", Value: 1},
	}
	bounds := Rect{MaxX: 200, MaxY: 80}

	placed := LayoutCloud(words, bounds, fixedMeasure)
	require.Len(t, placed, 1)
	assert.Equal(t, "tiny", placed[0].Text)
}

func TestLayoutCloud_Degenerate(t *testing.T) {
	assert.Nil(t, LayoutCloud(nil, Rect{MaxX: 10, MaxY: 10}, fixedMeasure))
	assert.Nil(t, LayoutCloud(sampleCounts(), Rect{}, fixedMeasure))
}
