// Package export renders cutting results to shareable artifacts: stepover
// chart PDFs, spreadsheet summaries and QR-coded setup cards.
package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/report"
	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

// Page layout constants (US Letter landscape in inches).
const (
	chartPageWidth  = 11.0
	chartPageHeight = 8.5
	plotLeft        = 0.95
	plotRight       = chartPageWidth - 1.3
	plotTop         = 1.0
	plotBottom      = chartPageHeight - 1.0
	plotWidth       = plotRight - plotLeft
	plotHeight      = plotBottom - plotTop
)

// ChartFileName returns the per-machine chart file name, e.g.
// "speeds_and_feeds_Bridgeport_J-Head_Mill.pdf".
func ChartFileName(machineName string) string {
	return fmt.Sprintf("speeds_and_feeds_%s.pdf", strings.ReplaceAll(machineName, " ", "_"))
}

// ExportCharts writes one stepover chart PDF per machine into dir and
// returns the paths written, in machine order.
func ExportCharts(dir string, bundle *report.Bundle, settings model.Settings) ([]string, error) {
	machines := bundle.Machines()
	if len(machines) == 0 {
		return nil, fmt.Errorf("no results to chart")
	}

	paths := make([]string, 0, len(machines))
	for _, name := range machines {
		path := filepath.Join(dir, ChartFileName(name))
		if err := ExportMachineChart(path, bundle.ForMachine(name), settings); err != nil {
			return nil, fmt.Errorf("chart for %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ExportMachineChart writes one machine's chart PDF. Each tool gets its own
// page with one stepover curve per work material.
func ExportMachineChart(path string, results []model.CuttingResult, settings model.Settings) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to chart")
	}

	pdf := fpdf.New("L", "in", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range groupByTool(results) {
		pdf.AddPage()
		renderChartPage(pdf, tr, page, settings)
	}

	return pdf.OutputFileAndClose(path)
}

// groupByTool splits one machine's results into consecutive runs sharing a
// tool, preserving the library order of both tools and materials.
func groupByTool(results []model.CuttingResult) [][]model.CuttingResult {
	var groups [][]model.CuttingResult
	for _, r := range results {
		n := len(groups)
		if n == 0 || groups[n-1][0].Tool.ID != r.Tool.ID {
			groups = append(groups, []model.CuttingResult{r})
			continue
		}
		groups[n-1] = append(groups[n-1], r)
	}
	return groups
}

// renderChartPage draws one tool's stepover chart on the current page.
func renderChartPage(pdf *fpdf.Fpdf, tr func(string) string, results []model.CuttingResult, settings model.Settings) {
	machine := results[0].Machine
	tool := results[0].Tool
	xmax := settings.MaxDepthDiameterMultiple * inches(tool.Diameter)

	// Title
	title := fmt.Sprintf("Rough Milling  •  %s %.1f hp, %.0f%% load  •  %s\" %d fl. %s End Mill",
		machine.Name, horsepower(machine.Power), settings.PowerSafetyFactor*100,
		model.FractionInches(tool.Diameter), tool.Teeth, tool.Material.Display())
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	titleW := pdf.GetStringWidth(tr(title))
	pdf.SetXY(plotLeft+(plotWidth-titleW)/2, 0.3)
	pdf.CellFormat(titleW, 0.25, tr(title), "", 0, "C", false, 0, "")

	drawChartGrid(pdf, xmax)
	drawCurves(pdf, results, xmax)
	drawAxes(pdf, tool, xmax)
	drawChartLegend(pdf, results)
}

// drawChartGrid draws light gridlines at every major tick of both axes.
func drawChartGrid(pdf *fpdf.Fpdf, xmax float64) {
	pdf.SetDrawColor(176, 176, 176)
	pdf.SetLineWidth(0.008)

	for _, tick := range xTicks(xmax) {
		x := xPos(tick, xmax)
		pdf.Line(x, plotTop, x, plotBottom)
	}
	for p := 0; p <= 100; p += 5 {
		y := yPos(float64(p))
		pdf.Line(plotLeft, y, plotRight, y)
	}
}

// drawCurves plots one styled stepover curve per material, clipped to the
// plot area. Stepover values beyond 100% leave through the top edge, the
// same way the display window works on screen plots.
func drawCurves(pdf *fpdf.Fpdf, results []model.CuttingResult, xmax float64) {
	pdf.ClipRect(plotLeft, plotTop, plotWidth, plotHeight, false)

	for _, r := range results {
		if len(r.Curve) == 0 {
			continue
		}
		red, green, blue := r.Material.Style.RGB()
		pdf.SetDrawColor(red, green, blue)
		pdf.SetLineWidth(r.Material.Style.Width / 72)
		setDash(pdf, r.Material.Style.Dash)

		first := r.Curve[0]
		pdf.MoveTo(xPos(inches(first.AxialDOC), xmax), yPos(first.StepoverPercent))
		for _, p := range r.Curve[1:] {
			pdf.LineTo(xPos(inches(p.AxialDOC), xmax), yPos(p.StepoverPercent))
		}
		pdf.DrawPath("D")
	}

	pdf.ClipEnd()
	pdf.SetDashPattern([]float64{}, 0)
}

// drawAxes draws the plot frame, the tick marks and labels on all four
// sides, and the axis titles.
func drawAxes(pdf *fpdf.Fpdf, tool model.Tool, xmax float64) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.01)
	pdf.Rect(plotLeft, plotTop, plotWidth, plotHeight, "D")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)

	// Bottom ticks: axial DOC in inches over the metric equivalent.
	for _, tick := range xTicks(xmax) {
		x := xPos(tick, xmax)
		pdf.Line(x, plotBottom, x, plotBottom+0.05)
		pdf.SetXY(x-0.4, plotBottom+0.07)
		pdf.CellFormat(0.8, 0.12, fmt.Sprintf("%.3f", tick), "", 0, "C", false, 0, "")
		pdf.SetXY(x-0.4, plotBottom+0.19)
		pdf.CellFormat(0.8, 0.12, fmt.Sprintf("[%.2f]", tick*25.4), "", 0, "C", false, 0, "")
	}

	// Left ticks: stepover percent, 0 to 100 by 5.
	for p := 0; p <= 100; p += 5 {
		y := yPos(float64(p))
		pdf.Line(plotLeft-0.05, y, plotLeft, y)
		pdf.SetXY(plotLeft-0.45, y-0.06)
		pdf.CellFormat(0.35, 0.12, strconv.Itoa(p), "", 0, "R", false, 0, "")
	}

	// Right ticks: the same heights restated as physical radial DOC, from
	// zero up to the full tool diameter.
	d := inches(tool.Diameter)
	for i := 0; i <= 20; i++ {
		r := d * 0.05 * float64(i)
		y := plotBottom - float64(i)/20*plotHeight
		pdf.Line(plotRight, y, plotRight+0.05, y)
		pdf.SetXY(plotRight+0.08, y-0.06)
		pdf.CellFormat(0.95, 0.12, fmt.Sprintf("%.3f [%.2f]", r, r*25.4), "", 0, "L", false, 0, "")
	}

	// Top markers at one and one and a half tool diameters.
	for _, m := range []struct {
		mult  float64
		label string
	}{{1.0, "1D"}, {1.5, "1.5D"}} {
		x := xPos(m.mult*d, xmax)
		if x > plotRight+1e-9 {
			continue
		}
		pdf.Line(x, plotTop-0.05, x, plotTop)
		pdf.SetXY(x-0.2, plotTop-0.2)
		pdf.CellFormat(0.4, 0.12, m.label, "", 0, "C", false, 0, "")
	}

	// Axis titles.
	pdf.SetFont("Helvetica", "", 10)
	xlabel := "Axial DOC (inch [mm])"
	xlabelW := pdf.GetStringWidth(xlabel)
	pdf.SetXY(plotLeft+(plotWidth-xlabelW)/2, plotBottom+0.38)
	pdf.CellFormat(xlabelW, 0.15, xlabel, "", 0, "C", false, 0, "")

	drawRotatedLabel(pdf, "Max Stepover (%)", plotLeft-0.62, plotTop+plotHeight/2)
	drawRotatedLabel(pdf, "Radial DOC (inch [mm])", plotRight+1.18, plotTop+plotHeight/2)
}

// drawRotatedLabel draws text rotated 90 degrees counterclockwise, centered
// on the given point.
func drawRotatedLabel(pdf *fpdf.Fpdf, text string, x, y float64) {
	pdf.TransformBegin()
	pdf.TransformRotate(90, x, y)
	w := pdf.GetStringWidth(text)
	pdf.SetXY(x-w/2, y-0.08)
	pdf.CellFormat(w, 0.15, text, "", 0, "C", false, 0, "")
	pdf.TransformEnd()
}

// drawChartLegend draws the material key in the upper right corner of the
// plot, one styled line sample per curve.
func drawChartLegend(pdf *fpdf.Fpdf, results []model.CuttingResult) {
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)

	entries := make([]string, len(results))
	maxW := 0.0
	for i, r := range results {
		entries[i] = fmt.Sprintf("%s: %.0f RPM, %.0f IPM", r.Material.Name, r.SpindleRPM(), r.FeedIPM())
		if w := pdf.GetStringWidth(entries[i]); w > maxW {
			maxW = w
		}
	}

	const sampleLen = 0.45
	const rowHeight = 0.21
	boxW := sampleLen + maxW + 0.3
	boxH := float64(len(entries))*rowHeight + 0.1
	boxX := plotRight - boxW - 0.1
	boxY := plotTop + 0.1

	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(204, 204, 204)
	pdf.SetLineWidth(0.01)
	pdf.Rect(boxX, boxY, boxW, boxH, "FD")

	for i, r := range results {
		y := boxY + 0.05 + float64(i)*rowHeight + rowHeight/2
		red, green, blue := r.Material.Style.RGB()
		pdf.SetDrawColor(red, green, blue)
		pdf.SetLineWidth(r.Material.Style.Width / 72)
		setDash(pdf, r.Material.Style.Dash)
		pdf.Line(boxX+0.08, y, boxX+0.08+sampleLen, y)

		pdf.SetXY(boxX+sampleLen+0.16, y-rowHeight/2+0.02)
		pdf.CellFormat(maxW, rowHeight-0.04, entries[i], "", 0, "L", false, 0, "")
	}

	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetDrawColor(0, 0, 0)
}

// setDash maps a material's dash style onto an fpdf dash pattern, scaled
// for a page measured in inches.
func setDash(pdf *fpdf.Fpdf, dash string) {
	switch dash {
	case model.DashDashed:
		pdf.SetDashPattern([]float64{0.055, 0.025}, 0)
	case model.DashDashDot:
		pdf.SetDashPattern([]float64{0.09, 0.022, 0.014, 0.022}, 0)
	default:
		pdf.SetDashPattern([]float64{}, 0)
	}
}

// xPos maps an axial DOC in inches onto the page.
func xPos(doc, xmax float64) float64 {
	return plotLeft + doc/xmax*plotWidth
}

// yPos maps a stepover percentage onto the page.
func yPos(pct float64) float64 {
	return plotBottom - pct/100*plotHeight
}

// tickStep picks the axial tick spacing so the axis carries roughly eight
// major divisions regardless of tool diameter.
func tickStep(xmax float64) float64 {
	step := 0.0001
	for {
		switch {
		case step*10 > xmax/8:
			return step * 5
		case step*20 > xmax/8:
			return step * 10
		case step*50 > xmax/8:
			return step * 20
		}
		step *= 10
	}
}

// xTicks returns ascending tick positions from zero up to but excluding
// xmax.
func xTicks(xmax float64) []float64 {
	step := tickStep(xmax)
	var ticks []float64
	for i := 0; ; i++ {
		v := float64(i) * step
		if v >= xmax {
			break
		}
		ticks = append(ticks, v)
	}
	return ticks
}

// inches reads a length in inches. Results only ever carry lengths here, so
// the dimension check cannot fail.
func inches(q units.Quantity) float64 {
	v, _ := q.In(units.Inch)
	return v
}

// horsepower reads a power in horsepower.
func horsepower(q units.Quantity) float64 {
	v, _ := q.In(units.Horsepower)
	return v
}
