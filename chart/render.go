package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/youssefsiam38/artifactpg/download"
)

// Format is an image output format.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat maps "png" to PNG and everything else to SVG.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, string(PNG)) {
		return PNG
	}
	return SVG
}

func (f Format) provider() gochart.RendererProvider {
	if f == PNG {
		return gochart.PNG
	}
	return gochart.SVG
}

func (f Format) contentType() string {
	if f == PNG {
		return download.ContentTypePNG
	}
	return download.ContentTypeSVG
}

const (
	renderWidth  = 800
	renderHeight = 400
)

// Render draws the chart in its current type.
func (c *Chart) Render(w io.Writer, f Format) error {
	if len(c.Data) == 0 {
		return ErrNoData
	}
	if len(c.Series) == 0 {
		return ErrNoSeries
	}

	var err error
	switch c.Type {
	case Pie:
		err = c.renderPie(w, f)
	case Donut:
		err = c.renderDonut(w, f)
	case StackedBar:
		err = c.renderStacked(w, f)
	case GroupedBar:
		err = c.renderGrouped(w, f)
	case Line, Area, Scatter:
		err = c.renderContinuous(w, f)
	default:
		err = c.renderBar(w, f)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s chart: %w", c.Type, err)
	}
	return nil
}

// ExportImage renders the chart into a download named after the title.
func (c *Chart) ExportImage(f Format) (download.File, error) {
	var buf bytes.Buffer
	if err := c.Render(&buf, f); err != nil {
		return download.File{}, err
	}
	return download.File{
		Name:        download.Filename(c.Title, string(f)),
		ContentType: f.contentType(),
		Data:        buf.Bytes(),
	}, nil
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func fillStyle(hex string) gochart.Style {
	col := color(hex)
	return gochart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1}
}

// valueRange spans vals and zero with a non-zero height, which go-chart
// requires.
func valueRange(vals ...[]float64) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, vs := range vals {
		for _, v := range vs {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi * 1.05}
}

func barWidth(n int) int {
	return max(8, min(60, (renderWidth-120)/max(1, n)-8))
}

func (c *Chart) renderBar(w io.Writer, f Format) error {
	s := c.Series[0]
	cats := c.Categories()
	vals := c.Values(s.Key)

	bars := make([]gochart.Value, len(cats))
	for i := range cats {
		bars[i] = gochart.Value{Label: cats[i], Value: vals[i], Style: fillStyle(s.Color)}
	}

	bc := gochart.BarChart{
		Title:    c.Title,
		Width:    renderWidth,
		Height:   renderHeight,
		BarWidth: barWidth(len(bars)),
		YAxis:    gochart.YAxis{Name: c.YAxisLabel, Range: valueRange(vals)},
		Bars:     bars,
	}
	return bc.Render(f.provider(), w)
}

// renderGrouped places the bars of every series side by side per category.
// Only the first bar of a group carries the category label.
func (c *Chart) renderGrouped(w io.Writer, f Format) error {
	cats := c.Categories()
	all := make([][]float64, len(c.Series))
	for i, s := range c.Series {
		all[i] = c.Values(s.Key)
	}

	bars := make([]gochart.Value, 0, len(cats)*len(c.Series))
	for i, cat := range cats {
		for j, s := range c.Series {
			label := ""
			if j == 0 {
				label = cat
			}
			bars = append(bars, gochart.Value{Label: label, Value: all[j][i], Style: fillStyle(s.Color)})
		}
	}

	bc := gochart.BarChart{
		Title:    c.Title,
		Width:    renderWidth,
		Height:   renderHeight,
		BarWidth: barWidth(len(bars)),
		YAxis:    gochart.YAxis{Name: c.YAxisLabel, Range: valueRange(all...)},
		Bars:     bars,
	}
	return bc.Render(f.provider(), w)
}

func (c *Chart) renderStacked(w io.Writer, f Format) error {
	cats := c.Categories()
	all := make([][]float64, len(c.Series))
	for i, s := range c.Series {
		all[i] = c.Values(s.Key)
	}

	bars := make([]gochart.StackedBar, len(cats))
	for i, cat := range cats {
		values := make([]gochart.Value, len(c.Series))
		for j, s := range c.Series {
			values[j] = gochart.Value{Label: s.Name, Value: all[j][i], Style: fillStyle(s.Color)}
		}
		bars[i] = gochart.StackedBar{Name: cat, Values: values}
	}

	sbc := gochart.StackedBarChart{
		Title:  c.Title,
		Width:  renderWidth,
		Height: renderHeight,
		Bars:   bars,
	}
	return sbc.Render(f.provider(), w)
}

// renderContinuous draws line, area and scatter charts. Categories are
// placed at integer x positions and labelled with ticks.
func (c *Chart) renderContinuous(w io.Writer, f Format) error {
	cats := c.Categories()
	xs := make([]float64, len(cats))
	ticks := make([]gochart.Tick, len(cats))
	for i, cat := range cats {
		xs[i] = float64(i)
		ticks[i] = gochart.Tick{Value: float64(i), Label: cat}
	}

	all := make([][]float64, len(c.Series))
	series := make([]gochart.Series, len(c.Series))
	for i, s := range c.Series {
		all[i] = c.Values(s.Key)
		col := color(s.Color)

		style := gochart.Style{StrokeColor: col, StrokeWidth: 2}
		switch c.Type {
		case Area:
			style.FillColor = col.WithAlpha(64)
		case Scatter:
			style = gochart.Style{StrokeColor: drawing.ColorTransparent, DotWidth: 5, DotColor: col}
		}
		series[i] = gochart.ContinuousSeries{Name: s.Name, XValues: xs, YValues: all[i], Style: style}
	}

	ch := gochart.Chart{
		Title:  c.Title,
		Width:  renderWidth,
		Height: renderHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:  c.XAxisLabel,
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(cats)) - 0.5},
		},
		YAxis:  gochart.YAxis{Name: c.YAxisLabel, Range: valueRange(all...)},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(f.provider(), w)
}

// sliceValues returns one slice per category of the first series. Slices
// that are zero or negative are left out.
func (c *Chart) sliceValues() []gochart.Value {
	s := c.Series[0]
	cats := c.Categories()
	vals := c.Values(s.Key)

	values := make([]gochart.Value, 0, len(cats))
	for i, cat := range cats {
		if vals[i] <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: cat,
			Value: vals[i],
			Style: fillStyle(Palette[i%len(Palette)]),
		})
	}
	return values
}

func (c *Chart) renderPie(w io.Writer, f Format) error {
	pc := gochart.PieChart{
		Title:  c.Title,
		Width:  renderHeight,
		Height: renderHeight,
		Values: c.sliceValues(),
	}
	return pc.Render(f.provider(), w)
}

func (c *Chart) renderDonut(w io.Writer, f Format) error {
	dc := gochart.DonutChart{
		Title:  c.Title,
		Width:  renderHeight,
		Height: renderHeight,
		Values: c.sliceValues(),
	}
	return dc.Render(f.provider(), w)
}
