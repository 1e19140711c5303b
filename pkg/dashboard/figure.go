package dashboard

// Figure kinds understood by the page script and pkg/render.
const (
	KindPie     = "pie"
	KindScatter = "scatter"
)

// Slice is one pie segment.
type Slice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// PieFigure is the chart description returned by the site-success callback.
type PieFigure struct {
	Kind   string  `json:"kind"`
	Title  string  `json:"title"`
	Slices []Slice `json:"slices"`
}

// Total returns the sum of slice values.
func (f PieFigure) Total() int {
	n := 0
	for _, s := range f.Slices {
		n += s.Value
	}
	return n
}

// Point is one scatter marker: x is payload mass, y the outcome class.
type Point struct {
	X     float64 `json:"x"`
	Y     int     `json:"y"`
	Color string  `json:"color"`
	Hover string  `json:"hover"`
}

// ScatterFigure is the chart description returned by the payload-success callback.
type ScatterFigure struct {
	Kind       string   `json:"kind"`
	Title      string   `json:"title"`
	XField     string   `json:"x_field"`
	YField     string   `json:"y_field"`
	ColorField string   `json:"color_field"`
	Categories []string `json:"categories"`
	Points     []Point  `json:"points"`
}
