package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/report"
)

var xlsxHeaders = []interface{}{
	"Tool",
	"Material",
	"Spindle (RPM)",
	"Feed (in/min)",
	"Feed (mm/min)",
	"Target Power (hp)",
	"Removal Rate (in3/min)",
	"Stepover @ 1D (%)",
}

// ExportXLSX writes the bundle as a spreadsheet workbook: one sheet per
// machine, one row per tool and material combination.
func ExportXLSX(path string, bundle *report.Bundle) error {
	machines := bundle.Machines()
	if len(machines) == 0 {
		return fmt.Errorf("no results to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range machines {
		sheet := sheetName(name)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("failed to name sheet for %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet for %s: %w", name, err)
		}
		if err := writeMachineSheet(f, sheet, bundle.ForMachine(name)); err != nil {
			return fmt.Errorf("failed to fill sheet for %s: %w", name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeMachineSheet fills one machine's sheet with a header row and one row
// per result.
func writeMachineSheet(f *excelize.File, sheet string, results []model.CuttingResult) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &xlsxHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "H1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "H", 18); err != nil {
		return err
	}

	for i, r := range results {
		row := []interface{}{
			r.Tool.Label,
			r.Material.Name,
			math.Round(r.SpindleRPM()),
			round1(r.FeedIPM()),
			round1(r.FeedIPM() * 25.4),
			round2(r.TargetPower.Value()),
			round2(r.RemovalRate.Value()),
		}
		if pct, ok := r.StepoverAtDepth(r.Tool.Diameter); ok {
			row = append(row, round1(pct))
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// sheetName trims a machine name to the 31 characters Excel allows for a
// sheet name.
func sheetName(machineName string) string {
	if len(machineName) > 31 {
		return machineName[:31]
	}
	return machineName
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
