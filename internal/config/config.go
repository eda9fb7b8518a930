// Package config loads the YAML shop configuration: cutting parameters,
// machine/tool/material definitions and logging setup. Raw numbers in the
// file carry their unit in the field name (power_hp, max_feed_ipm); the
// conversion into dimensioned quantities happens here, in one place.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

type Config struct {
	Report    ReportConfig     `yaml:"report"`
	Cutting   CuttingConfig    `yaml:"cutting"`
	Machines  []MachineConfig  `yaml:"machines"`
	Tools     []ToolConfig     `yaml:"tools"`
	Materials []MaterialConfig `yaml:"materials"`
	Logging   LoggingConfig    `yaml:"logging"`
}

type ReportConfig struct {
	Workers int    `yaml:"workers"`
	OutDir  string `yaml:"out_dir"`
}

type CuttingConfig struct {
	ChipLoad                 float64            `yaml:"chip_load"`
	PowerSafetyFactor        float64            `yaml:"power_safety_factor"`
	TransmissionEfficiency   float64            `yaml:"transmission_efficiency"`
	SpeedFactors             map[string]float64 `yaml:"speed_factors"`
	MaxDepthDiameterMultiple float64            `yaml:"max_depth_diameter_multiple"`
	DepthStepIn              float64            `yaml:"depth_step_in"`
}

// MachineConfig describes one mill. Exactly one of max_speed_rpm
// (continuously variable head) or speeds_rpm (gearbox steps) must be set.
type MachineConfig struct {
	Name        string    `yaml:"name"`
	PowerHP     float64   `yaml:"power_hp"`
	MaxFeedIPM  float64   `yaml:"max_feed_ipm"`
	MaxSpeedRPM float64   `yaml:"max_speed_rpm"`
	SpeedsRPM   []float64 `yaml:"speeds_rpm"`
}

type ToolConfig struct {
	Label      string  `yaml:"label"`
	DiameterIn float64 `yaml:"diameter_in"`
	Teeth      int     `yaml:"teeth"`
	Material   string  `yaml:"material"`
}

type MaterialConfig struct {
	Name              string      `yaml:"name"`
	SurfaceSpeedSFM   float64     `yaml:"surface_speed_sfm"`
	UnitPowerHPMinIn3 float64     `yaml:"unit_power_hp_min_in3"`
	Style             StyleConfig `yaml:"style"`
}

type StyleConfig struct {
	Color string  `yaml:"color"`
	Dash  string  `yaml:"dash"`
	Width float64 `yaml:"width"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

// Default returns the configuration used when no file is given: stock
// cutting parameters and no library of its own.
func Default() *Config {
	settings := model.DefaultSettings()
	factors := make(map[string]float64, len(settings.SpeedFactors))
	for material, factor := range settings.SpeedFactors {
		factors[string(material)] = factor
	}
	step, _ := settings.DepthStep.In(units.Inch)
	return &Config{
		Report: ReportConfig{
			Workers: 0, // one per CPU
			OutDir:  ".",
		},
		Cutting: CuttingConfig{
			ChipLoad:                 settings.ChipLoad,
			PowerSafetyFactor:        settings.PowerSafetyFactor,
			TransmissionEfficiency:   settings.TransmissionEfficiency,
			SpeedFactors:             factors,
			MaxDepthDiameterMultiple: settings.MaxDepthDiameterMultiple,
			DepthStepIn:              step,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Load reads and validates a configuration file. File values land on top
// of the defaults, so a partial file is fine.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override logging from environment variables if available
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.TrimSpace(v)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func validate(cfg *Config) error {
	if cfg.Cutting.ChipLoad <= 0 {
		return fmt.Errorf("cutting.chip_load must be greater than 0")
	}
	if cfg.Cutting.PowerSafetyFactor <= 0 || cfg.Cutting.PowerSafetyFactor > 1 {
		return fmt.Errorf("cutting.power_safety_factor must be in (0, 1]")
	}
	if cfg.Cutting.TransmissionEfficiency <= 0 || cfg.Cutting.TransmissionEfficiency > 1 {
		return fmt.Errorf("cutting.transmission_efficiency must be in (0, 1]")
	}
	for material, factor := range cfg.Cutting.SpeedFactors {
		if factor <= 0 {
			return fmt.Errorf("cutting.speed_factors.%s must be greater than 0", material)
		}
	}
	if cfg.Cutting.MaxDepthDiameterMultiple <= 0 {
		return fmt.Errorf("cutting.max_depth_diameter_multiple must be greater than 0")
	}
	if cfg.Cutting.DepthStepIn <= 0 {
		return fmt.Errorf("cutting.depth_step_in must be greater than 0")
	}
	if cfg.Report.Workers < 0 {
		return fmt.Errorf("report.workers must not be negative")
	}

	// The library sections stand or fall together: either the file defines
	// the whole shop or none of it.
	if cfg.HasLibrary() {
		if len(cfg.Machines) == 0 {
			return fmt.Errorf("machines is required when tools or materials are set")
		}
		if len(cfg.Tools) == 0 {
			return fmt.Errorf("tools is required when machines or materials are set")
		}
		if len(cfg.Materials) == 0 {
			return fmt.Errorf("materials is required when machines or tools are set")
		}
	}

	for i, m := range cfg.Machines {
		if m.Name == "" {
			return fmt.Errorf("machines[%d].name is required", i)
		}
		if m.PowerHP <= 0 {
			return fmt.Errorf("machines[%d].power_hp must be greater than 0", i)
		}
		if m.MaxFeedIPM <= 0 {
			return fmt.Errorf("machines[%d].max_feed_ipm must be greater than 0", i)
		}
		if (m.MaxSpeedRPM > 0) == (len(m.SpeedsRPM) > 0) {
			return fmt.Errorf("machines[%d]: exactly one of max_speed_rpm or speeds_rpm must be set", i)
		}
		for j, s := range m.SpeedsRPM {
			if s <= 0 {
				return fmt.Errorf("machines[%d].speeds_rpm[%d] must be greater than 0", i, j)
			}
		}
	}

	for i, t := range cfg.Tools {
		if t.DiameterIn <= 0 {
			return fmt.Errorf("tools[%d].diameter_in must be greater than 0", i)
		}
		if t.Teeth <= 0 {
			return fmt.Errorf("tools[%d].teeth must be greater than 0", i)
		}
		if t.Material == "" {
			return fmt.Errorf("tools[%d].material is required", i)
		}
	}

	for i, m := range cfg.Materials {
		if m.Name == "" {
			return fmt.Errorf("materials[%d].name is required", i)
		}
		if m.SurfaceSpeedSFM <= 0 {
			return fmt.Errorf("materials[%d].surface_speed_sfm must be greater than 0", i)
		}
		if m.UnitPowerHPMinIn3 <= 0 {
			return fmt.Errorf("materials[%d].unit_power_hp_min_in3 must be greater than 0", i)
		}
		switch m.Style.Dash {
		case "", model.DashSolid, model.DashDashed, model.DashDashDot:
		default:
			return fmt.Errorf("materials[%d].style.dash must be solid, dashed or dashdot", i)
		}
		if m.Style.Width < 0 {
			return fmt.Errorf("materials[%d].style.width must not be negative", i)
		}
	}

	return nil
}

// HasLibrary reports whether the file defines its own shop library rather
// than relying on the stored one.
func (c *Config) HasLibrary() bool {
	return len(c.Machines) > 0 || len(c.Tools) > 0 || len(c.Materials) > 0
}

// ToSettings converts the cutting section into engine settings.
func (c *Config) ToSettings() model.Settings {
	factors := make(map[model.ToolMaterial]float64, len(c.Cutting.SpeedFactors))
	for material, factor := range c.Cutting.SpeedFactors {
		factors[model.ToolMaterial(material)] = factor
	}
	return model.Settings{
		ChipLoad:                 c.Cutting.ChipLoad,
		PowerSafetyFactor:        c.Cutting.PowerSafetyFactor,
		TransmissionEfficiency:   c.Cutting.TransmissionEfficiency,
		SpeedFactors:             factors,
		MaxDepthDiameterMultiple: c.Cutting.MaxDepthDiameterMultiple,
		DepthStep:                units.New(c.Cutting.DepthStepIn, units.Inch),
	}
}

// ToLibrary converts the machine/tool/material sections into a model
// library. Call only after Load has validated the config.
func (c *Config) ToLibrary() model.Library {
	lib := model.Library{
		Machines:  make([]model.Machine, 0, len(c.Machines)),
		Tools:     make([]model.Tool, 0, len(c.Tools)),
		Materials: make([]model.WorkMaterial, 0, len(c.Materials)),
	}

	for _, m := range c.Machines {
		machine := model.Machine{
			Name:    m.Name,
			Power:   units.New(m.PowerHP, units.Horsepower),
			MaxFeed: units.New(m.MaxFeedIPM, units.InchesPerMinute),
		}
		if m.MaxSpeedRPM > 0 {
			max := units.New(m.MaxSpeedRPM, units.RevPerMinute)
			machine.MaxSpeed = &max
		} else {
			machine.Speeds = make([]units.Quantity, 0, len(m.SpeedsRPM))
			for _, s := range m.SpeedsRPM {
				machine.Speeds = append(machine.Speeds, units.New(s, units.RevPerMinute))
			}
		}
		lib.Machines = append(lib.Machines, machine)
	}

	for _, t := range c.Tools {
		diameter := units.New(t.DiameterIn, units.Inch)
		material := model.ToolMaterial(t.Material)
		label := t.Label
		if label == "" {
			label = fmt.Sprintf("%s\" %d fl. %s", model.FractionInches(diameter), t.Teeth, material.Display())
		}
		lib.Tools = append(lib.Tools, model.NewTool(label, diameter, t.Teeth, material))
	}

	for _, m := range c.Materials {
		style := model.PlotStyle{Color: m.Style.Color, Dash: m.Style.Dash, Width: m.Style.Width}
		if style.Color == "" {
			style.Color = "#000000"
		}
		if style.Dash == "" {
			style.Dash = model.DashSolid
		}
		if style.Width == 0 {
			style.Width = 1.5
		}
		lib.Materials = append(lib.Materials, model.WorkMaterial{
			Name:         m.Name,
			SurfaceSpeed: units.New(m.SurfaceSpeedSFM, units.FeetPerMinute),
			UnitPower:    units.New(m.UnitPowerHPMinIn3, units.HPMinPerCubicInch),
			Style:        style,
		})
	}

	return lib
}
