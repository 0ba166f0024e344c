package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders a grouped bar chart comparing two series. Either series may be
// empty.
func Bars(width, height int, seriesA, seriesB []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(seriesA) == 0 && len(seriesB) == 0 {
		return "", fmt.Errorf("svg: at least one series required")
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	if len(seriesA) > 0 && len(seriesA) != len(labels) {
		return "", fmt.Errorf("svg: seriesA length must match labels")
	}
	if len(seriesB) > 0 && len(seriesB) != len(labels) {
		return "", fmt.Errorf("svg: seriesB length must match labels")
	}
	f, err := newFrame(width, height, opts.Padding, opts.TickCount, opts.AxisColor, opts.GridColor, opts.TickFormat)
	if err != nil {
		return "", err
	}
	f.fit(bounds(seriesA, seriesB))
	colorA := fallback(opts.ColorA, "#0d9488")
	colorB := fallback(opts.ColorB, "#f59e0b")
	labelA := fallback(opts.SeriesALabel, "Series A")
	labelB := fallback(opts.SeriesBLabel, "Series B")

	group := f.plotW / float64(len(labels))
	barW := group / 3

	var b strings.Builder
	f.open(&b, "bar", opts.Title, opts.Description, "Bar chart", "Grouped bar comparison")
	f.grid(&b)
	bar := func(x, value float64, color, name, label string) {
		top, bottom := f.y(math.Max(value, 0)), f.y(math.Min(value, 0))
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"><title>%s %s: %s</title></rect>`,
			x, top, barW, bottom-top, color, template.HTMLEscapeString(name), template.HTMLEscapeString(label), template.HTMLEscapeString(f.format(value)))
	}
	for i, label := range labels {
		x := f.padding + float64(i)*group
		if len(seriesA) > 0 {
			bar(x+barW*0.3, seriesA[i], colorA, labelA, label)
		}
		if len(seriesB) > 0 {
			bar(x+barW*1.4, seriesB[i], colorB, labelB, label)
		}
		f.xLabel(&b, x+group/2, label)
	}

	legendY := math.Max(f.padding-12, 12)
	legendX := f.padding
	for _, entry := range []struct {
		show  bool
		color string
		name  string
	}{{len(seriesA) > 0, colorA, labelA}, {len(seriesB) > 0, colorB, labelB}} {
		if !entry.show {
			continue
		}
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect>`, legendX, legendY-8, entry.color)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10">%s</text>`, legendX+14, legendY, f.axisColor, template.HTMLEscapeString(entry.name))
		legendX += 110
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
