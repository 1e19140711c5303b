// Package dashboard builds the launch dashboard: the static layout, the two
// chart computations and the callback table wiring control changes to them.
package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/ruslano69/launchdash/pkg/launch"
)

// Options configure the layout. Zero values take the defaults below.
type Options struct {
	Title       string  // default "SpaceX Launch Records Dashboard"
	InitialSite string  // default launch.AllSites
	SliderMin   float64 // default 0
	SliderMax   float64 // default 10000
	SliderStep  float64 // default 1000
}

// DefaultTitle is the page heading.
const DefaultTitle = "SpaceX Launch Records Dashboard"

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.InitialSite == "" {
		o.InitialSite = launch.AllSites
	}
	if o.SliderMax == 0 {
		o.SliderMax = 10000
	}
	if o.SliderStep == 0 {
		o.SliderStep = 1000
	}
	return o
}

// Dashboard is the immutable table plus the layout and callbacks built on it.
// All methods are safe for concurrent use.
type Dashboard struct {
	table    *launch.Table
	layout   Layout
	registry *Registry
	defaults Inputs
}

// New builds the layout for t and registers the chart callbacks.
func New(t *launch.Table, opts Options) (*Dashboard, error) {
	opts = opts.withDefaults()
	if opts.SliderMin > opts.SliderMax {
		return nil, fmt.Errorf("slider min %g is above max %g", opts.SliderMin, opts.SliderMax)
	}

	d := &Dashboard{table: t, registry: NewRegistry()}

	d.layout = Layout{
		Title:        opts.Title,
		SiteLabel:    "Successful Launches Per Site",
		Dropdown:     buildDropdown(t, opts.InitialSite),
		SliderLabel:  "Payload range (Kg):",
		Slider:       buildSlider(t, opts.SliderMin, opts.SliderMax, opts.SliderStep),
		ScatterLabel: "Correlation between payload and launch success",
	}

	site, _ := json.Marshal(d.layout.Dropdown.Value)
	rng, _ := json.Marshal(d.layout.Slider.Value)
	d.defaults = Inputs{SiteValue: site, PayloadValue: rng}

	for _, cb := range []Callback{
		{Output: PieFigureOut, Inputs: []Prop{SiteValue}, Handler: d.handlePie},
		{Output: ScatterOut, Inputs: []Prop{SiteValue, PayloadValue}, Handler: d.handleScatter},
	} {
		if err := d.registry.Register(cb); err != nil {
			return nil, err
		}
	}

	// Начальные фигуры - результат колбэков для начальных значений контролов
	initial, err := d.registry.Dispatch(nil, d.defaults)
	if err != nil {
		return nil, fmt.Errorf("initial figures: %w", err)
	}
	d.layout.PieGraph = Graph{ID: PieChartID, Figure: initial[PieFigureOut]}
	d.layout.ScatterGraph = Graph{ID: ScatterChartID, Figure: initial[ScatterOut]}

	return d, nil
}

// Table returns the table the dashboard was built on.
func (d *Dashboard) Table() *launch.Table { return d.table }

// Layout returns the page description with the initial figures.
func (d *Dashboard) Layout() Layout { return d.layout }

// Registry returns the callback table.
func (d *Dashboard) Registry() *Registry { return d.registry }

// Pie computes the site-success chart.
func (d *Dashboard) Pie(site string) PieFigure {
	return SiteSuccess(d.table, site)
}

// Scatter computes the payload-success chart.
func (d *Dashboard) Scatter(site string, rng launch.PayloadRange) ScatterFigure {
	return PayloadSuccess(d.table, site, rng)
}

// Selection returns the records plotted by Scatter for the same arguments.
func (d *Dashboard) Selection(site string, rng launch.PayloadRange) []launch.Record {
	return d.table.Select(launch.PayloadWithin(rng), launch.ForSite(site))
}

func (d *Dashboard) handlePie(in Inputs) (any, error) {
	site, err := decodeSite(in)
	if err != nil {
		return nil, err
	}
	return d.Pie(site), nil
}

func (d *Dashboard) handleScatter(in Inputs) (any, error) {
	site, err := decodeSite(in)
	if err != nil {
		return nil, err
	}
	rng, err := decodeRange(in)
	if err != nil {
		return nil, err
	}
	return d.Scatter(site, rng), nil
}

func decodeSite(in Inputs) (string, error) {
	var site string
	if err := in.Decode(SiteValue, &site); err != nil {
		return "", err
	}
	return site, nil
}

func decodeRange(in Inputs) (launch.PayloadRange, error) {
	var v []float64
	if err := in.Decode(PayloadValue, &v); err != nil {
		return launch.PayloadRange{}, err
	}
	if len(v) != 2 {
		return launch.PayloadRange{}, fmt.Errorf("%w: %s must be [low, high], got %d values", ErrBadInput, PayloadValue, len(v))
	}
	return launch.PayloadRange{Low: v[0], High: v[1]}, nil
}

// Update is an input change sent by the page, keyed by "component.property".
type Update struct {
	Changed []string                   `json:"changed"`
	Inputs  map[string]json.RawMessage `json:"inputs"`
}

// Result carries the recomputed outputs keyed by "component.property".
type Result struct {
	Outputs map[string]any `json:"outputs"`
}

// Apply runs the callbacks affected by u. Inputs absent from u take their
// initial layout value; present ones must decode or ErrBadInput is returned.
func (d *Dashboard) Apply(u Update) (*Result, error) {
	in := make(Inputs, len(d.defaults)+len(u.Inputs))
	for p, v := range d.defaults {
		in[p] = v
	}
	for k, v := range u.Inputs {
		p, err := ParseProp(k)
		if err != nil {
			return nil, err
		}
		if !d.registry.Listens(p) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProp, p)
		}
		if len(v) == 0 || string(v) == "null" {
			continue
		}
		in[p] = v
	}

	changed := make([]Prop, 0, len(u.Changed))
	for _, k := range u.Changed {
		p, err := ParseProp(k)
		if err != nil {
			return nil, err
		}
		changed = append(changed, p)
	}

	out, err := d.registry.Dispatch(changed, in)
	if err != nil {
		return nil, err
	}

	res := &Result{Outputs: make(map[string]any, len(out))}
	for p, v := range out {
		res.Outputs[p.String()] = v
	}
	return res, nil
}
