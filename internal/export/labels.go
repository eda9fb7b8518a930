package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/pwnage101/speeds-and-feeds/internal/report"
)

// LabelInfo holds the data encoded into each setup label's QR code.
type LabelInfo struct {
	Machine      string  `json:"machine"`
	Tool         string  `json:"tool"`
	DiameterIn   float64 `json:"diameter_in"`
	Teeth        int     `json:"teeth"`
	ToolMaterial string  `json:"tool_material"`
	Material     string  `json:"material"`
	SpindleRPM   float64 `json:"rpm"`
	FeedIPM      float64 `json:"feed_ipm"`
	TargetHP     float64 `json:"target_hp"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7  // mm
	labelMarginLeft = 4.8   // mm
	labelWidth      = 66.7  // mm per label
	labelHeight     = 25.4  // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded setup labels, one per machine,
// tool and material combination. Each label carries the recommended numbers
// in print and the full parameter set in a QR code, laid out on a standard
// label sheet format (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, bundle *report.Bundle) error {
	labels := CollectLabelInfos(bundle)
	if len(labels) == 0 {
		return fmt.Errorf("no results to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		// Add new page when needed
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Tool, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, index int, info LabelInfo) error {
	// Draw light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	// Generate QR code PNG bytes
	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d_%s", index, info.Material)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// Place QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Text area (left side of label)
	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Tool label (bold, larger)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, truncate(pdf, info.Tool, textW), "", 1, "L", false, 0, "")

	// Work material
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, truncate(pdf, info.Material, textW), "", 1, "L", false, 0, "")

	// Recommended numbers
	pdf.SetXY(textX, y+labelPadding+9)
	numbers := fmt.Sprintf("%.0f RPM  %.1f IPM  %.2f hp", info.SpindleRPM, info.FeedIPM, info.TargetHP)
	pdf.CellFormat(textW, 3.5, numbers, "", 1, "L", false, 0, "")

	// Machine
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+13.5)
	pdf.CellFormat(textW, 3, truncate(pdf, info.Machine, textW), "", 0, "L", false, 0, "")

	// Reset text color
	pdf.SetTextColor(0, 0, 0)

	return nil
}

// truncate shortens s with an ellipsis until it fits the given width in the
// current font.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// CollectLabelInfos extracts label information from a result bundle for use
// in testing or alternative export formats.
func CollectLabelInfos(bundle *report.Bundle) []LabelInfo {
	labels := make([]LabelInfo, 0, len(bundle.Results))
	for _, r := range bundle.Results {
		labels = append(labels, LabelInfo{
			Machine:      r.Machine.Name,
			Tool:         r.Tool.Label,
			DiameterIn:   inches(r.Tool.Diameter),
			Teeth:        r.Tool.Teeth,
			ToolMaterial: r.Tool.Material.Display(),
			Material:     r.Material.Name,
			SpindleRPM:   math.Round(r.SpindleRPM()),
			FeedIPM:      round1(r.FeedIPM()),
			TargetHP:     round2(r.TargetPower.Value()),
		})
	}
	return labels
}
