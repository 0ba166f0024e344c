// Package svg renders small accessible charts as inline SVG for the dashboard.
package svg

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
	// TickFormat renders axis values; defaults to a compact number.
	TickFormat func(float64) string
}

// BarOpts customises the grouped bar chart renderer.
type BarOpts struct {
	Title        string
	Description  string
	SeriesALabel string
	SeriesBLabel string
	ColorA       string
	ColorB       string
	AxisColor    string
	GridColor    string
	Padding      float64
	TickCount    int
	TickFormat   func(float64) string
}

// Slice is one wedge of a pie chart.
type Slice struct {
	Label string
	Value float64
	Color string
}

// PieOpts customises the pie chart renderer.
type PieOpts struct {
	Title       string
	Description string
	// Donut cuts a hole of this fraction of the radius, 0 for a full pie.
	Donut      float64
	LabelColor string
	Legend     bool
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 28.0
	DefaultTicks   = 5
)

// Palette is used for slices without an explicit color.
var Palette = []string{"#0d9488", "#f59e0b", "#ef4444", "#6366f1", "#64748b", "#22c55e", "#ec4899"}
