package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Pie renders slices as a pie or donut chart. Zero and negative slices are
// skipped; an all-zero input is an error so callers can show an empty state.
func Pie(width, height int, slices []Slice, opts PieOpts) (template.HTML, error) {
	if width <= 0 {
		width = DefaultHeight
	}
	if height <= 0 {
		height = DefaultHeight
	}
	total := 0.0
	for _, s := range slices {
		if s.Value > 0 {
			total += s.Value
		}
	}
	if total <= 0 {
		return "", fmt.Errorf("svg: pie needs a positive total")
	}

	legendW := 0.0
	if opts.Legend {
		legendW = float64(width) * 0.4
	}
	cx := (float64(width) - legendW) / 2
	cy := float64(height) / 2
	r := math.Min(cx, cy) - 8
	if r <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	inner := r * math.Max(0, math.Min(opts.Donut, 0.9))
	labelColor := fallback(opts.LabelColor, "#334155")

	titleID := makeID(opts.Title, "pie-title")
	descID := makeID(opts.Title, "pie-desc")
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s" data-chart="pie">`, width, height, titleID, descID)
	fmt.Fprintf(&b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(opts.Title, "Pie chart")))
	fmt.Fprintf(&b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(fallback(opts.Description, "Share of total")))

	angle := -math.Pi / 2
	row := 0
	for i, s := range slices {
		if s.Value <= 0 {
			continue
		}
		color := s.Color
		if color == "" {
			color = Palette[i%len(Palette)]
		}
		share := s.Value / total
		tip := fmt.Sprintf("%s: %s (%.0f%%)", s.Label, formatTick(s.Value), share*100)
		if share >= 0.9999 {
			// a single full slice cannot be drawn as an arc
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"><title>%s</title></circle>`, cx, cy, r, color, template.HTMLEscapeString(tip))
		} else {
			end := angle + share*2*math.Pi
			large := 0
			if share > 0.5 {
				large = 1
			}
			x1, y1 := cx+r*math.Cos(angle), cy+r*math.Sin(angle)
			x2, y2 := cx+r*math.Cos(end), cy+r*math.Sin(end)
			fmt.Fprintf(&b, `<path d="M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f Z" fill="%s" stroke="#fff" stroke-width="1"><title>%s</title></path>`,
				cx, cy, x1, y1, r, r, large, x2, y2, color, template.HTMLEscapeString(tip))
			angle = end
		}
		if opts.Legend {
			lx := float64(width) - legendW + 8
			ly := 20 + float64(row)*18
			fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect>`, lx, ly-9, color)
			fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="11">%s</text>`, lx+14, ly, labelColor, template.HTMLEscapeString(tip))
			row++
		}
	}
	if inner > 0 {
		fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="#fff" aria-hidden="true"></circle>`, cx, cy, inner)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
