package export

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/report"
	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

// buildTestBundle computes a small but realistic result set: two machines,
// two tools and two materials.
func buildTestBundle(t *testing.T) *report.Bundle {
	t.Helper()

	maxSpeed := units.New(3000, units.RevPerMinute)
	lib := model.Library{
		Machines: []model.Machine{
			{
				Name:     "Sharp LMV CNC Mill",
				Power:    units.New(3, units.Horsepower),
				MaxFeed:  units.New(60, units.InchesPerMinute),
				MaxSpeed: &maxSpeed,
			},
			{
				Name:    "Bridgeport J-Head Mill",
				Power:   units.New(1, units.Horsepower),
				MaxFeed: units.New(30, units.InchesPerMinute),
				Speeds: []units.Quantity{
					units.New(660, units.RevPerMinute),
					units.New(1750, units.RevPerMinute),
				},
			},
		},
		Tools: []model.Tool{
			model.NewTool("3/4\" 4 fl. HSS/Cobalt", units.New(0.75, units.Inch), 4, model.HSSCobalt),
			model.NewTool("3/8\" 2 fl. Carbide", units.New(0.375, units.Inch), 2, model.Carbide),
		},
		Materials: []model.WorkMaterial{
			{
				Name:         "Aluminum",
				SurfaceSpeed: units.New(300, units.FeetPerMinute),
				UnitPower:    units.New(0.4, units.HPMinPerCubicInch),
				Style:        model.PlotStyle{Color: "#0343df", Dash: model.DashSolid, Width: 1.5},
			},
			{
				Name:         "Mild Steel",
				SurfaceSpeed: units.New(100, units.FeetPerMinute),
				UnitPower:    units.New(1.8, units.HPMinPerCubicInch),
				Style:        model.PlotStyle{Color: "#e50000", Dash: model.DashDashed, Width: 1.5},
			},
		},
	}

	bundle, err := report.Build(lib, model.DefaultSettings(), 1)
	if err != nil {
		t.Fatalf("report.Build failed: %v", err)
	}
	return bundle
}

func buildEmptyBundle(t *testing.T) *report.Bundle {
	t.Helper()
	bundle, err := report.Build(model.Library{}, model.DefaultSettings(), 1)
	if err != nil {
		t.Fatalf("report.Build failed: %v", err)
	}
	return bundle
}

func TestExportCharts_CreatesFilePerMachine(t *testing.T) {
	dir := t.TempDir()
	bundle := buildTestBundle(t)

	paths, err := ExportCharts(dir, bundle, model.DefaultSettings())
	if err != nil {
		t.Fatalf("ExportCharts returned error: %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("expected 2 chart files, got %d", len(paths))
	}
	if filepath.Base(paths[0]) != "speeds_and_feeds_Sharp_LMV_CNC_Mill.pdf" {
		t.Errorf("unexpected first chart name: %s", filepath.Base(paths[0]))
	}
	if filepath.Base(paths[1]) != "speeds_and_feeds_Bridgeport_J-Head_Mill.pdf" {
		t.Errorf("unexpected second chart name: %s", filepath.Base(paths[1]))
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("chart file was not created: %v", err)
		}
		if info.Size() < 500 {
			t.Errorf("chart file seems too small: %d bytes", info.Size())
		}
	}
}

func TestExportCharts_EmptyBundle(t *testing.T) {
	dir := t.TempDir()

	_, err := ExportCharts(dir, buildEmptyBundle(t), model.DefaultSettings())
	if err == nil {
		t.Fatal("expected error for empty bundle, got nil")
	}
}

func TestExportMachineChart_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.pdf")
	bundle := buildTestBundle(t)

	results := bundle.ForMachine("Sharp LMV CNC Mill")
	if len(results) != 4 {
		t.Fatalf("expected 4 results for machine, got %d", len(results))
	}

	err := ExportMachineChart(path, results, model.DefaultSettings())
	if err != nil {
		t.Fatalf("ExportMachineChart returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("chart file is empty")
	}
}

func TestExportMachineChart_EmptyResults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pdf")

	err := ExportMachineChart(path, nil, model.DefaultSettings())
	if err == nil {
		t.Fatal("expected error for empty results, got nil")
	}
}

func TestChartFileName(t *testing.T) {
	got := ChartFileName("Bridgeport J-Head Mill")
	want := "speeds_and_feeds_Bridgeport_J-Head_Mill.pdf"
	if got != want {
		t.Errorf("ChartFileName() = %q, want %q", got, want)
	}
}

func TestGroupByTool(t *testing.T) {
	results := []model.CuttingResult{
		{Tool: model.Tool{ID: "a"}, Material: model.WorkMaterial{Name: "Aluminum"}},
		{Tool: model.Tool{ID: "a"}, Material: model.WorkMaterial{Name: "Mild Steel"}},
		{Tool: model.Tool{ID: "b"}, Material: model.WorkMaterial{Name: "Aluminum"}},
	}

	groups := groupByTool(results)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Errorf("expected 2 results in first group, got %d", len(groups[0]))
	}
	if len(groups[1]) != 1 {
		t.Errorf("expected 1 result in second group, got %d", len(groups[1]))
	}
	if groups[1][0].Tool.ID != "b" {
		t.Errorf("expected second group for tool b, got %s", groups[1][0].Tool.ID)
	}
}

func TestTickStep(t *testing.T) {
	tests := []struct {
		xmax float64
		want float64
	}{
		{1.125, 0.1},    // 3/4" tool at 1.5D
		{0.5625, 0.05},  // 3/8" tool
		{0.28125, 0.02}, // 3/16" tool
		{3.0, 0.2},      // 2" tool
		{8.0, 1.0},
	}
	for _, tt := range tests {
		got := tickStep(tt.xmax)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("tickStep(%v) = %v, want %v", tt.xmax, got, tt.want)
		}
	}
}

func TestXTicks(t *testing.T) {
	ticks := xTicks(1.125)

	if len(ticks) != 12 {
		t.Fatalf("expected 12 ticks, got %d", len(ticks))
	}
	if ticks[0] != 0 {
		t.Errorf("first tick should be 0, got %v", ticks[0])
	}
	last := ticks[len(ticks)-1]
	if math.Abs(last-1.1) > 1e-9 {
		t.Errorf("last tick should be 1.1, got %v", last)
	}
	for _, tick := range ticks {
		if tick >= 1.125 {
			t.Errorf("tick %v should be below the axis maximum", tick)
		}
	}
}
