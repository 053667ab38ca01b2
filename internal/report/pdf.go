package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// Chart geometry in millimetres on an A4 portrait page.
const (
	chartLeft   = 25.0
	chartWidth  = 165.0
	chartHeight = 60.0
)

// WritePDF renders a one-document report: header, daily bar chart, user table, footer.
func WritePDF(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Call Analytics Report - "+r.Company, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, tr(r.Company), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 8, tr(r.PeriodLabel()), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Daily Call Volume", "", 1, "L", false, 0, "")
	drawDailyChart(pdf, r.activeDays(), tr)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, titleUsers, "", 1, "L", false, 0, "")
	drawUserTable(pdf, r, tr)

	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 6, "Generated on: "+r.GeneratedAt.Format("January 2, 2006 3:04 PM"), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return nil
}

func drawDailyChart(pdf *fpdf.Fpdf, days []dayRow, tr func(string) string) {
	top := pdf.GetY() + 4
	base := top + chartHeight

	if len(days) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 8, "No calls in this period.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}

	maxCalls := 0
	for _, d := range days {
		maxCalls = max(maxCalls, d.Calls)
	}
	scale := chartHeight / float64(maxCalls)
	slot := chartWidth / float64(len(days))
	barW := math.Min(slot*0.8, 8)

	pdf.SetFont("Arial", "", 7)
	pdf.SetTextColor(102, 102, 102)
	step := max(1, int(math.Ceil(float64(maxCalls)/5)))
	for v := 0; v <= maxCalls; v += step {
		y := base - float64(v)*scale
		label := strconv.Itoa(v)
		pdf.Text(chartLeft-2-pdf.GetStringWidth(label), y+1, label)
	}

	pdf.SetFillColor(59, 130, 246)
	for i, d := range days {
		x := chartLeft + float64(i)*slot + (slot-barW)/2
		h := float64(d.Calls) * scale
		pdf.Rect(x, base-h, barW, h, "F")

		lx, ly := x+barW/2, base+3
		pdf.TransformBegin()
		pdf.TransformRotate(45, lx, ly)
		pdf.Text(lx-pdf.GetStringWidth(d.Label), ly, tr(d.Label))
		pdf.TransformEnd()
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(chartLeft, base, chartLeft+chartWidth, base)
	pdf.Line(chartLeft, top, chartLeft, base)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetY(base + 18)
}

func drawUserTable(pdf *fpdf.Fpdf, r Report, tr func(string) string) {
	widths := []float64{60, 24, 24, 24, 24, 24}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetDrawColor(221, 221, 221)
	for i, h := range userHeader {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, u := range r.Users {
		for i, c := range userRow(u) {
			pdf.CellFormat(widths[i], 7, tr(fmt.Sprint(c)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
