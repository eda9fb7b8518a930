package model

import (
	"fmt"

	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

// Settings holds the calculator's calibration constants. These are shop
// policy rather than physics: adjust them to run closer to or further from
// the machine's rated limits.
type Settings struct {
	// ChipLoad is the advance per tooth per revolution, as a fraction of
	// tool diameter.
	ChipLoad float64 `json:"chip_load"`

	// PowerSafetyFactor derates the machine's nameplate horsepower so
	// approximation errors cannot stall the motor.
	PowerSafetyFactor float64 `json:"power_safety_factor"`

	// TransmissionEfficiency is the fraction of motor power that reaches
	// the tool after belt, spindle bearing and gear losses.
	TransmissionEfficiency float64 `json:"transmission_efficiency"`

	// SpeedFactors maps a tool material to its surface speed multiplier
	// relative to the HSS baseline.
	SpeedFactors map[ToolMaterial]float64 `json:"speed_factors"`

	// MaxDepthDiameterMultiple is the axial DOC ceiling for the stepover
	// curve, as a multiple of tool diameter.
	MaxDepthDiameterMultiple float64 `json:"max_depth_diameter_multiple"`

	// DepthStep is the axial DOC sampling interval for the stepover curve.
	DepthStep units.Quantity `json:"depth_step"`
}

// DefaultSettings returns the stock calibration constants.
func DefaultSettings() Settings {
	return Settings{
		ChipLoad:               0.005,
		PowerSafetyFactor:      0.5,
		TransmissionEfficiency: 0.75,
		SpeedFactors: map[ToolMaterial]float64{
			HSS:       1.0,
			HSSCobalt: 1.0,
			Carbide:   2.5,
		},
		MaxDepthDiameterMultiple: 1.5,
		DepthStep:                units.New(0.01, units.Inch),
	}
}

// Clone returns a copy of the settings whose speed factor map can be
// mutated without touching the original.
func (s Settings) Clone() Settings {
	out := s
	out.SpeedFactors = make(map[ToolMaterial]float64, len(s.SpeedFactors))
	for k, v := range s.SpeedFactors {
		out.SpeedFactors[k] = v
	}
	return out
}

// SpeedFactor returns the surface speed multiplier for a tool material,
// falling back to the 1.0 baseline for unlisted materials.
func (s Settings) SpeedFactor(m ToolMaterial) float64 {
	if f, ok := s.SpeedFactors[m]; ok {
		return f
	}
	return 1.0
}

// Validate checks the calibration constants.
func (s Settings) Validate() error {
	if s.ChipLoad <= 0 {
		return fmt.Errorf("settings: chip_load must be positive, got %g", s.ChipLoad)
	}
	if s.PowerSafetyFactor <= 0 || s.PowerSafetyFactor > 1 {
		return fmt.Errorf("settings: power_safety_factor must be in (0, 1], got %g", s.PowerSafetyFactor)
	}
	if s.TransmissionEfficiency <= 0 || s.TransmissionEfficiency > 1 {
		return fmt.Errorf("settings: transmission_efficiency must be in (0, 1], got %g", s.TransmissionEfficiency)
	}
	for m, f := range s.SpeedFactors {
		if f <= 0 {
			return fmt.Errorf("settings: speed factor for %q must be positive, got %g", m, f)
		}
	}
	if s.MaxDepthDiameterMultiple <= 0 {
		return fmt.Errorf("settings: max_depth_diameter_multiple must be positive, got %g", s.MaxDepthDiameterMultiple)
	}
	if s.DepthStep.Dim() != units.LengthDim {
		return fmt.Errorf("settings: depth_step must be a length, got %s", s.DepthStep.Dim())
	}
	if s.DepthStep.Sign() <= 0 {
		return fmt.Errorf("settings: depth_step must be positive, got %v", s.DepthStep)
	}
	return nil
}
