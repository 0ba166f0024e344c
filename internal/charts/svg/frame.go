package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// frame is the plotting area shared by the axis charts.
type frame struct {
	width, height int
	padding       float64
	plotW, plotH  float64
	minVal        float64
	maxVal        float64
	ticks         int
	axisColor     string
	gridColor     string
	format        func(float64) string
}

func newFrame(width, height int, padding float64, ticks int, axisColor, gridColor string, format func(float64) string) (frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if padding <= 0 {
		padding = DefaultPadding
	}
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	if format == nil {
		format = formatTick
	}
	f := frame{
		width:     width,
		height:    height,
		padding:   padding,
		plotW:     float64(width) - 2*padding,
		plotH:     float64(height) - 2*padding,
		ticks:     ticks,
		axisColor: fallback(axisColor, "#475569"),
		gridColor: fallback(gridColor, "#cbd5e1"),
		format:    format,
	}
	if f.plotW <= 0 || f.plotH <= 0 {
		return f, fmt.Errorf("svg: viewport too small")
	}
	return f, nil
}

// fit sets the value range; zero is always visible.
func (f *frame) fit(minVal, maxVal float64) {
	f.minVal = math.Min(minVal, 0)
	f.maxVal = math.Max(maxVal, 0)
	if almostEqual(f.maxVal, f.minVal) {
		f.maxVal = f.minVal + 1
	}
}

func (f frame) y(value float64) float64 {
	return f.padding + f.plotH - (value-f.minVal)*f.plotH/(f.maxVal-f.minVal)
}

func (f frame) bottom() float64 { return f.padding + f.plotH }

func (f frame) open(b *strings.Builder, kind, title, desc, defTitle, defDesc string) {
	titleID := makeID(title, kind+"-title")
	descID := makeID(title, kind+"-desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s" data-chart="%s">`, f.width, f.height, titleID, descID, kind)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(title, defTitle)))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(fallback(desc, defDesc)))
}

// grid draws the horizontal guides, tick labels and both axes.
func (f frame) grid(b *strings.Builder) {
	for i := 0; i <= f.ticks; i++ {
		ratio := float64(i) / float64(f.ticks)
		value := f.minVal + (f.maxVal-f.minVal)*ratio
		y := f.y(value)
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, f.padding, y, f.padding+f.plotW, y, f.gridColor)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, f.padding-6, y+4, f.axisColor, template.HTMLEscapeString(f.format(value)))
	}
	fmt.Fprintf(b, `<g stroke="%s" aria-hidden="true">`, f.axisColor)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.padding, f.padding, f.padding, f.bottom())
	zero := f.y(0)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.padding, zero, f.padding+f.plotW, zero)
	b.WriteString("</g>")
}

func (f frame) xLabel(b *strings.Builder, x float64, label string) {
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x, f.bottom()+14, f.axisColor, template.HTMLEscapeString(label))
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series ...[]float64) (float64, float64) {
	first := true
	var minVal, maxVal float64
	for _, s := range series {
		for _, v := range s {
			if first {
				minVal, maxVal, first = v, v, false
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case almostEqual(v, math.Round(v)):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
