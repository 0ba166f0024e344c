package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders a line chart of series with one x label per point.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	f, err := newFrame(width, height, opts.Padding, opts.TickCount, opts.AxisColor, opts.GridColor, opts.TickFormat)
	if err != nil {
		return "", err
	}
	f.fit(bounds(series))
	stroke := fallback(opts.StrokeColor, "#0d9488")
	fill := fallback(opts.FillColor, "rgba(13,148,136,0.12)")

	xAt := func(i int) float64 {
		if len(series) == 1 {
			return f.padding + f.plotW/2
		}
		return f.padding + float64(i)*f.plotW/float64(len(series)-1)
	}

	var path strings.Builder
	for i, v := range series {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		} else {
			path.WriteByte(' ')
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xAt(i), f.y(v))
	}

	var b strings.Builder
	f.open(&b, "line", opts.Title, opts.Description, "Line chart", "Trend data")
	f.grid(&b)
	base := f.y(0)
	fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none" aria-hidden="true"></path>`, path.String(), xAt(len(series)-1), base, xAt(0), base, fill)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"></path>`, path.String(), stroke)
	for i, v := range series {
		if opts.ShowDots {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"><title>%s: %s</title></circle>`, xAt(i), f.y(v), stroke, template.HTMLEscapeString(labels[i]), template.HTMLEscapeString(f.format(v)))
		}
		f.xLabel(&b, xAt(i), labels[i])
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
