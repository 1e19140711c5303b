package dashboard

import (
	"math"
	"strconv"

	"github.com/ruslano69/launchdash/pkg/launch"
)

// Component ids.
const (
	SiteDropdownID  = "site-dropdown"
	PayloadSliderID = "payload-slider"
	PieChartID      = "success-pie-chart"
	ScatterChartID  = "success-payload-scatter-chart"
)

// Control properties.
var (
	SiteValue    = Prop{Component: SiteDropdownID, Property: "value"}
	PayloadValue = Prop{Component: PayloadSliderID, Property: "value"}
	PieFigureOut = Prop{Component: PieChartID, Property: "figure"}
	ScatterOut   = Prop{Component: ScatterChartID, Property: "figure"}
)

// Placeholder is shown by the dropdown while nothing is selected.
const Placeholder = "Select a Launch Site"

// Option is one dropdown entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Dropdown describes the site selector.
type Dropdown struct {
	ID          string   `json:"id"`
	Options     []Option `json:"options"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder"`
	Searchable  bool     `json:"searchable"`
}

// RangeSlider describes the payload range selector.
type RangeSlider struct {
	ID    string            `json:"id"`
	Min   float64           `json:"min"`
	Max   float64           `json:"max"`
	Step  float64           `json:"step"`
	Marks map[string]string `json:"marks"`
	Value [2]float64        `json:"value"`
}

// Range returns the slider value as a payload range.
func (s RangeSlider) Range() launch.PayloadRange {
	return launch.PayloadRange{Low: s.Value[0], High: s.Value[1]}
}

// Graph is a chart container with its current figure.
type Graph struct {
	ID     string `json:"id"`
	Figure any    `json:"figure"`
}

// Layout is the static page description sent to the rendering layer.
type Layout struct {
	Title        string      `json:"title"`
	SiteLabel    string      `json:"site_label"`
	Dropdown     Dropdown    `json:"dropdown"`
	SliderLabel  string      `json:"slider_label"`
	Slider       RangeSlider `json:"slider"`
	PieGraph     Graph       `json:"pie_graph"`
	ScatterLabel string      `json:"scatter_label"`
	ScatterGraph Graph       `json:"scatter_graph"`
}

func buildDropdown(t *launch.Table, initial string) Dropdown {
	opts := []Option{{Label: "All Sites", Value: launch.AllSites}}
	for _, s := range t.Sites() {
		opts = append(opts, Option{Label: s, Value: s})
	}
	return Dropdown{
		ID:          SiteDropdownID,
		Options:     opts,
		Value:       initial,
		Placeholder: Placeholder,
		Searchable:  true,
	}
}

// buildSlider bounds the slider to [min, max] and defaults it to the observed
// payload range. Bounds are widened to the enclosing step multiples when the
// data falls outside them so the default value always lies inside.
func buildSlider(t *launch.Table, min, max, step float64) RangeSlider {
	bounds := t.PayloadBounds()
	if step <= 0 {
		step = 1000
	}
	if bounds.Low < min {
		min = math.Floor(bounds.Low/step) * step
	}
	if bounds.High > max {
		max = math.Ceil(bounds.High/step) * step
	}

	marks := make(map[string]string)
	n := int(math.Floor((max-min)/step + 1e-9))
	for i := 0; i <= n; i++ {
		k := strconv.FormatFloat(markValue(min, step, i), 'f', -1, 64)
		marks[k] = k
	}

	return RangeSlider{
		ID:    PayloadSliderID,
		Min:   min,
		Max:   max,
		Step:  step,
		Marks: marks,
		Value: [2]float64{bounds.Low, bounds.High},
	}
}

// markValue returns the i-th mark, rounded to the precision of step so that
// fractional steps print as 0.3 and not 0.30000000000000004.
func markValue(min, step float64, i int) float64 {
	v := min + float64(i)*step
	digits := 0
	for d := step; d != math.Trunc(d) && digits < 12; d *= 10 {
		digits++
	}
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
