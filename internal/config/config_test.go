package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const fullConfig = `
report:
  workers: 4
  out_dir: ./out

cutting:
  chip_load: 0.004
  power_safety_factor: 0.6
  transmission_efficiency: 0.8
  speed_factors:
    carbide: 2.0
  max_depth_diameter_multiple: 1.5
  depth_step_in: 0.02

machines:
  - name: Sharp LMV CNC Mill
    power_hp: 3
    max_feed_ipm: 60
    max_speed_rpm: 3000
  - name: Bridgeport J-Head Mill
    power_hp: 1
    max_feed_ipm: 30
    speeds_rpm: [80, 135, 210, 325, 660, 1115, 1750, 2720]

tools:
  - label: my favorite rougher
    diameter_in: 0.5
    teeth: 4
    material: carbide
  - diameter_in: 0.75
    teeth: 4
    material: hss_cobalt

materials:
  - name: Aluminum
    surface_speed_sfm: 300
    unit_power_hp_min_in3: 0.4
    style:
      color: "#0343df"
      dash: solid
      width: 1.5
  - name: Mild Steel
    surface_speed_sfm: 100
    unit_power_hp_min_in3: 1.8

logging:
  level: warn
  format: text
  output: stderr
`

func TestLoadFullConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load(writeConfig(t, fullConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Report.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Report.Workers)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "text" || cfg.Logging.Output != "stderr" {
		t.Errorf("logging = %+v", cfg.Logging)
	}

	settings := cfg.ToSettings()
	if settings.ChipLoad != 0.004 {
		t.Errorf("chip load = %v, want 0.004", settings.ChipLoad)
	}
	if settings.PowerSafetyFactor != 0.6 || settings.TransmissionEfficiency != 0.8 {
		t.Errorf("power factors = %v / %v", settings.PowerSafetyFactor, settings.TransmissionEfficiency)
	}
	if got := settings.SpeedFactor(model.Carbide); got != 2.0 {
		t.Errorf("carbide factor = %v, want 2.0", got)
	}
	step, err := settings.DepthStep.In(units.Inch)
	if err != nil || math.Abs(step-0.02) > 1e-12 {
		t.Errorf("depth step = %v in (err %v), want 0.02", step, err)
	}

	if !cfg.HasLibrary() {
		t.Fatal("expected config library")
	}
	lib := cfg.ToLibrary()
	if err := lib.Validate(); err != nil {
		t.Fatalf("library validate: %v", err)
	}

	if !lib.Machines[0].Continuous() {
		t.Error("Sharp should be continuous")
	}
	if lib.Machines[1].Continuous() || len(lib.Machines[1].Speeds) != 8 {
		t.Errorf("Bridgeport envelope wrong: %+v", lib.Machines[1])
	}

	if lib.Tools[0].Label != "my favorite rougher" {
		t.Errorf("explicit label lost: %q", lib.Tools[0].Label)
	}
	if lib.Tools[1].Label != `3/4" 4 fl. HSS/Cobalt` {
		t.Errorf("derived label = %q", lib.Tools[1].Label)
	}
	if lib.Tools[0].ID == "" || lib.Tools[0].ID == lib.Tools[1].ID {
		t.Errorf("tool IDs not generated: %q vs %q", lib.Tools[0].ID, lib.Tools[1].ID)
	}

	// Unstyled materials get the fallback line style.
	style := lib.Materials[1].Style
	if style.Color != "#000000" || style.Dash != model.DashSolid || style.Width != 1.5 {
		t.Errorf("fallback style = %+v", style)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load(writeConfig(t, "cutting:\n  chip_load: 0.003\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cutting.ChipLoad != 0.003 {
		t.Errorf("chip load = %v, want 0.003", cfg.Cutting.ChipLoad)
	}
	if cfg.Cutting.PowerSafetyFactor != 0.5 || cfg.Cutting.TransmissionEfficiency != 0.75 {
		t.Errorf("defaults lost: %+v", cfg.Cutting)
	}
	if cfg.Cutting.SpeedFactors["carbide"] != 2.5 {
		t.Errorf("carbide default = %v, want 2.5", cfg.Cutting.SpeedFactors["carbide"])
	}
	if cfg.HasLibrary() {
		t.Error("partial config should not define a library")
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	if cfg.Cutting.ChipLoad != want.Cutting.ChipLoad || cfg.Logging.Level != want.Logging.Level {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "cutting: [not: a: map\n"))
	if err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadEnvOverridesLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want env override debug", cfg.Logging.Level)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "negative chip load",
			config:  "cutting:\n  chip_load: -1\n",
			wantErr: "cutting.chip_load",
		},
		{
			name:    "safety factor above one",
			config:  "cutting:\n  power_safety_factor: 1.5\n",
			wantErr: "cutting.power_safety_factor",
		},
		{
			name:    "zero speed factor",
			config:  "cutting:\n  speed_factors:\n    carbide: 0\n",
			wantErr: "cutting.speed_factors.carbide",
		},
		{
			name:    "tools without machines",
			config:  "tools:\n  - diameter_in: 0.5\n    teeth: 4\n    material: hss\n",
			wantErr: "machines is required",
		},
		{
			name: "machine with both envelopes",
			config: `
machines:
  - name: M
    power_hp: 1
    max_feed_ipm: 30
    max_speed_rpm: 3000
    speeds_rpm: [80]
tools:
  - diameter_in: 0.5
    teeth: 4
    material: hss
materials:
  - name: Aluminum
    surface_speed_sfm: 300
    unit_power_hp_min_in3: 0.4
`,
			wantErr: "machines[0]: exactly one",
		},
		{
			name: "machine with neither envelope",
			config: `
machines:
  - name: M
    power_hp: 1
    max_feed_ipm: 30
tools:
  - diameter_in: 0.5
    teeth: 4
    material: hss
materials:
  - name: Aluminum
    surface_speed_sfm: 300
    unit_power_hp_min_in3: 0.4
`,
			wantErr: "machines[0]: exactly one",
		},
		{
			name: "tool without teeth",
			config: `
machines:
  - name: M
    power_hp: 1
    max_feed_ipm: 30
    max_speed_rpm: 3000
tools:
  - diameter_in: 0.5
    teeth: 0
    material: hss
materials:
  - name: Aluminum
    surface_speed_sfm: 300
    unit_power_hp_min_in3: 0.4
`,
			wantErr: "tools[0].teeth",
		},
		{
			name: "material without name",
			config: `
machines:
  - name: M
    power_hp: 1
    max_feed_ipm: 30
    max_speed_rpm: 3000
tools:
  - diameter_in: 0.5
    teeth: 4
    material: hss
materials:
  - surface_speed_sfm: 300
    unit_power_hp_min_in3: 0.4
`,
			wantErr: "materials[0].name",
		},
		{
			name: "unknown dash style",
			config: `
machines:
  - name: M
    power_hp: 1
    max_feed_ipm: 30
    max_speed_rpm: 3000
tools:
  - diameter_in: 0.5
    teeth: 4
    material: hss
materials:
  - name: Aluminum
    surface_speed_sfm: 300
    unit_power_hp_min_in3: 0.4
    style:
      dash: wavy
`,
			wantErr: "materials[0].style.dash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "")

			_, err := Load(writeConfig(t, tt.config))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
