// Package render draws dashboard figures as static SVG or PNG images.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ruslano69/launchdash/pkg/dashboard"
)

// ErrEmptyFigure is returned for a figure with nothing to draw.
var ErrEmptyFigure = errors.New("figure has no data")

// Format is an image encoding.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat maps a file extension (with or without the dot) to a Format.
func ParseFormat(ext string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(ext, "."))) {
	case SVG:
		return SVG, nil
	case PNG:
		return PNG, nil
	}
	return "", fmt.Errorf("unsupported image format %q", ext)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

// Size of rendered images in pixels.
const (
	Width  = 800
	Height = 500
)

// Pie draws a pie figure.
func Pie(w io.Writer, fig dashboard.PieFigure, f Format) error {
	if fig.Total() == 0 {
		return ErrEmptyFigure
	}

	values := make([]chart.Value, 0, len(fig.Slices))
	for _, s := range fig.Slices {
		values = append(values, chart.Value{
			Value: float64(s.Value),
			Label: s.Label + " (" + strconv.Itoa(s.Value) + ")",
		})
	}

	pie := chart.PieChart{
		Title:  fig.Title,
		Width:  Width,
		Height: Height,
		Values: values,
	}
	if err := pie.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render pie: %w", err)
	}
	return nil
}

// pointStyle draws markers only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

// Scatter draws a scatter figure, one series per color category.
func Scatter(w io.Writer, fig dashboard.ScatterFigure, f Format) error {
	if len(fig.Points) == 0 {
		return ErrEmptyFigure
	}

	// Серии в порядке категорий, чтобы цвета совпадали между запросами
	index := make(map[string]int, len(fig.Categories))
	series := make([]chart.ContinuousSeries, len(fig.Categories))
	for i, c := range fig.Categories {
		index[c] = i
		series[i] = chart.ContinuousSeries{Name: c, Style: pointStyle(chart.GetDefaultColor(i))}
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, p := range fig.Points {
		i, ok := index[p.Color]
		if !ok {
			i = len(series)
			index[p.Color] = i
			series = append(series, chart.ContinuousSeries{Name: p.Color, Style: pointStyle(chart.GetDefaultColor(i))})
		}
		series[i].XValues = append(series[i].XValues, p.X)
		series[i].YValues = append(series[i].YValues, float64(p.Y))
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
	}

	out := make([]chart.Series, 0, len(series))
	for _, s := range series {
		if len(s.XValues) > 0 {
			out = append(out, s)
		}
	}

	// go-chart не рисует нулевой диапазон
	pad := (maxX - minX) * 0.05
	if pad == 0 {
		pad = 500
	}

	ch := chart.Chart{
		Title:      fig.Title,
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  fig.XField,
			Range: &chart.ContinuousRange{Min: math.Max(0, minX-pad), Max: maxX + pad},
		},
		YAxis: chart.YAxis{
			Name:  fig.YField,
			Range: &chart.ContinuousRange{Min: -0.25, Max: 1.25},
			Ticks: []chart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}},
		},
		Series: out,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

// Figure draws either figure kind.
func Figure(w io.Writer, fig any, f Format) error {
	switch v := fig.(type) {
	case dashboard.PieFigure:
		return Pie(w, v, f)
	case dashboard.ScatterFigure:
		return Scatter(w, v, f)
	}
	return fmt.Errorf("unsupported figure type %T", fig)
}
