package engine

import (
	"fmt"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
)

// Scenario is a named settings variant to evaluate side by side.
type Scenario struct {
	Name     string
	Settings model.Settings
}

// ScenarioResult holds the cutting result and the headline numbers for a
// single scenario.
type ScenarioResult struct {
	Scenario     Scenario
	Result       model.CuttingResult
	SpindleRPM   float64
	FeedIPM      float64
	MRR          float64 // in3/min
	StepoverAt1D float64 // percent, at one diameter of axial engagement
}

// CompareScenarios evaluates one machine/tool/material triple under each
// scenario and returns the results in scenario order. This enables
// side-by-side comparison of different calibration choices (e.g., chip
// loads, power safety factors, carbide speed multipliers).
func CompareScenarios(scenarios []Scenario, machine model.Machine, tool model.Tool, material model.WorkMaterial) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		grid := GridFromSettings(scenario.Settings)
		result, err := Calculate(machine, tool, material, scenario.Settings, grid.Samples(tool.Diameter))
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		at1D, _ := result.StepoverAtDepth(tool.Diameter)

		results = append(results, ScenarioResult{
			Scenario:     scenario,
			Result:       result,
			SpindleRPM:   result.SpindleRPM(),
			FeedIPM:      result.FeedIPM(),
			MRR:          result.RemovalRate.Value(),
			StepoverAt1D: at1D,
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(base model.Settings) []Scenario {
	scenarios := []Scenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Scenario: run the motor closer to its rating.
	if base.PowerSafetyFactor < 0.8 {
		hot := base.Clone()
		hot.PowerSafetyFactor = 0.8
		scenarios = append(scenarios, Scenario{
			Name:     "80% Power",
			Settings: hot,
		})
	}

	// Scenario: halve the chip load for fragile tools or poor rigidity.
	light := base.Clone()
	light.ChipLoad = base.ChipLoad * 0.5
	scenarios = append(scenarios, Scenario{
		Name:     fmt.Sprintf("Chip Load %.4f (half)", light.ChipLoad),
		Settings: light,
	})

	// Scenario: conservative carbide at 2x rather than the default 2.5x.
	if base.SpeedFactor(model.Carbide) > 2 {
		conservative := base.Clone()
		conservative.SpeedFactors[model.Carbide] = 2.0
		scenarios = append(scenarios, Scenario{
			Name:     "Carbide 2x Surface Speed",
			Settings: conservative,
		})
	}

	return scenarios
}
