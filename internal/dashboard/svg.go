package dashboard

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

const (
	chartWidth   = 800
	chartHeight  = 400
	padLeft      = 50
	padRight     = 20
	padTop       = 20
	padBottom    = 90
	pieRadius    = 150
	primaryColor = "#3B82F6"
)

var palette = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899", "#14B8A6", "#F97316"}

// RenderChart draws s as an inline SVG element.
func RenderChart(chart ChartType, s Series) template.HTML {
	if s.Empty() {
		return template.HTML(`<p class="empty">No call data for this period.</p>`)
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" class="chart" role="img">`, chartWidth, chartHeight)
	switch chart {
	case ChartPie:
		drawPie(&b, s)
	case ChartLine, ChartDaily:
		drawAxes(&b, s)
		drawLine(&b, s)
	default:
		drawAxes(&b, s)
		drawBars(&b, s)
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

type plot struct {
	left, top, width, height float64
	max                      int
	slot                     float64
}

func newPlot(s Series) plot {
	p := plot{
		left:   padLeft,
		top:    padTop,
		width:  chartWidth - padLeft - padRight,
		height: chartHeight - padTop - padBottom,
	}
	for _, v := range s.Values {
		p.max = max(p.max, v)
	}
	if p.max == 0 {
		p.max = 1
	}
	p.slot = p.width / float64(len(s.Values))
	return p
}

func (p plot) y(v int) float64 {
	return p.top + p.height - float64(v)/float64(p.max)*p.height
}

func (p plot) xCenter(i int) float64 {
	return p.left + p.slot*(float64(i)+0.5)
}

// yStep spaces roughly five Y-axis labels.
func yStep(maxVal int) int {
	return max(1, int(math.Ceil(float64(maxVal)/5)))
}

func drawAxes(b *strings.Builder, s Series) {
	p := newPlot(s)
	base := p.top + p.height
	for v := 0; v <= p.max; v += yStep(p.max) {
		y := p.y(v)
		fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#e5e7eb" stroke-dasharray="3 3"/>`, p.left, y, p.left+p.width, y)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="10" fill="#666" text-anchor="end">%d</text>`, p.left-5, y+3, v)
	}
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#000"/>`, p.left, base, p.left+p.width, base)
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#000"/>`, p.left, p.top, p.left, base)
	for i, label := range s.Labels {
		if i%s.TickEvery != 0 {
			continue
		}
		x := p.xCenter(i)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-size="10" fill="#666" text-anchor="end" transform="rotate(-45 %.1f %.1f)">%s</text>`,
			x, base+14, x, base+14, template.HTMLEscapeString(label))
	}
}

func drawBars(b *strings.Builder, s Series) {
	p := newPlot(s)
	base := p.top + p.height
	w := p.slot * 0.7
	for i, v := range s.Values {
		y := p.y(v)
		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s"><title>%s: %d</title></rect>`,
			p.xCenter(i)-w/2, y, w, base-y, primaryColor, template.HTMLEscapeString(s.Labels[i]), v)
	}
}

func drawLine(b *strings.Builder, s Series) {
	p := newPlot(s)
	pts := make([]string, len(s.Values))
	for i, v := range s.Values {
		pts[i] = fmt.Sprintf("%.1f,%.1f", p.xCenter(i), p.y(v))
	}
	fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`, strings.Join(pts, " "), primaryColor)
	for i, v := range s.Values {
		fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="4" fill="%s"><title>%s: %d</title></circle>`,
			p.xCenter(i), p.y(v), primaryColor, template.HTMLEscapeString(s.Labels[i]), v)
	}
}

func drawPie(b *strings.Builder, s Series) {
	total := 0
	for _, v := range s.Values {
		total += v
	}
	if total == 0 {
		return
	}
	cx, cy, r := float64(chartWidth)/2-120, float64(chartHeight)/2, float64(pieRadius)

	start := -math.Pi / 2
	for i, v := range s.Values {
		color := palette[i%len(palette)]
		frac := float64(v) / float64(total)
		label := template.HTMLEscapeString(s.Labels[i])
		if frac >= 1 {
			fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>%s (100%%)</title></circle>`, cx, cy, r, color, label)
		} else {
			end := start + frac*2*math.Pi
			large := 0
			if frac > 0.5 {
				large = 1
			}
			fmt.Fprintf(b, `<path d="M%.1f,%.1f L%.1f,%.1f A%.1f,%.1f 0 %d 1 %.1f,%.1f Z" fill="%s"><title>%s (%.0f%%)</title></path>`,
				cx, cy, cx+r*math.Cos(start), cy+r*math.Sin(start), r, r, large, cx+r*math.Cos(end), cy+r*math.Sin(end), color, label, frac*100)
			start = end
		}

		ly := float64(padTop + 16*i + 10)
		fmt.Fprintf(b, `<rect x="%d" y="%.1f" width="10" height="10" fill="%s"/>`, chartWidth-230, ly-9, color)
		fmt.Fprintf(b, `<text x="%d" y="%.1f" font-size="11" fill="#333">%s (%.0f%%)</text>`, chartWidth-215, ly, label, frac*100)
	}
}
