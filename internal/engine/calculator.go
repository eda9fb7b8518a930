// Package engine derives recommended cutting parameters from a machine's
// power and kinematic limits. It is purely computational: no I/O, no
// shared state, every call self-contained.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

var (
	// ErrInvalidToolGeometry reports a tool with a non-positive diameter
	// or tooth count.
	ErrInvalidToolGeometry = errors.New("engine: invalid tool geometry")

	// ErrInvalidMaterial reports a work material with a non-positive
	// surface speed or specific cutting power.
	ErrInvalidMaterial = errors.New("engine: invalid work material")
)

// Calculate derives the recommended cutting parameters for one machine,
// tool and work material combination. depths lists the candidate axial
// depths of cut for the stepover curve; zero and negative entries are
// dropped and the curve comes back in ascending depth order, one point per
// surviving depth. Stepover percentages are not capped: values beyond 100
// mean the power budget outruns the tool's full diameter, which is worth
// seeing even though it cannot be milled.
func Calculate(machine model.Machine, tool model.Tool, material model.WorkMaterial, settings model.Settings, depths []units.Quantity) (model.CuttingResult, error) {
	var zero model.CuttingResult

	if err := validateInputs(machine, tool, material, depths); err != nil {
		return zero, err
	}

	// Effective surface speed for this tool's material class.
	surface := material.SurfaceSpeed.Scale(settings.SpeedFactor(tool.Material))

	// Surface speed over circumference-per-revolution is the ideal spindle
	// speed; the envelope decides what the machine actually delivers.
	perRev := tool.Diameter.Scale(math.Pi).Div(units.New(1, units.Revolution))
	achieved := EnvelopeOf(machine).Resolve(surface.Div(perRev))

	// Chip load per tooth scales with tool diameter.
	teeth := units.New(float64(tool.Teeth), units.PerRevolution)
	feed := tool.Diameter.Scale(settings.ChipLoad).Mul(achieved).Mul(teeth)
	over, err := feed.Cmp(machine.MaxFeed)
	if err != nil {
		return zero, err
	}
	if over > 0 {
		feed = machine.MaxFeed
	}

	target := machine.Power.Scale(settings.PowerSafetyFactor * settings.TransmissionEfficiency)
	budget := target.Div(material.UnitPower)

	curve, err := stepoverCurve(budget, feed, tool.Diameter, depths)
	if err != nil {
		return zero, err
	}

	speedOut, err := achieved.ConvertTo(units.RevPerMinute)
	if err != nil {
		return zero, err
	}
	feedOut, err := feed.ConvertTo(units.InchesPerMinute)
	if err != nil {
		return zero, err
	}
	powerOut, err := target.ConvertTo(units.Horsepower)
	if err != nil {
		return zero, err
	}
	budgetOut, err := budget.ConvertTo(units.CubicInchPerMinute)
	if err != nil {
		return zero, err
	}

	return model.CuttingResult{
		Machine:      machine,
		Tool:         tool,
		Material:     material,
		SpindleSpeed: speedOut,
		FeedRate:     feedOut,
		TargetPower:  powerOut,
		RemovalRate:  budgetOut,
		Curve:        curve,
	}, nil
}

func validateInputs(machine model.Machine, tool model.Tool, material model.WorkMaterial, depths []units.Quantity) error {
	if got := tool.Diameter.Dim(); got != units.LengthDim {
		return &units.DimensionError{Op: "tool diameter", Left: got, Right: units.LengthDim}
	}
	if tool.Diameter.Sign() <= 0 || tool.Teeth <= 0 {
		return fmt.Errorf("%w: %q has diameter %v and %d teeth",
			ErrInvalidToolGeometry, tool.Label, tool.Diameter, tool.Teeth)
	}
	if got := material.SurfaceSpeed.Dim(); got != units.VelocityDim {
		return &units.DimensionError{Op: "surface speed", Left: got, Right: units.VelocityDim}
	}
	if got := material.UnitPower.Dim(); got != units.SpecificPowerDim {
		return &units.DimensionError{Op: "unit power", Left: got, Right: units.SpecificPowerDim}
	}
	if material.SurfaceSpeed.Sign() <= 0 || material.UnitPower.Sign() <= 0 {
		return fmt.Errorf("%w: %q has surface speed %v and unit power %v",
			ErrInvalidMaterial, material.Name, material.SurfaceSpeed, material.UnitPower)
	}
	if got := machine.Power.Dim(); got != units.PowerDim {
		return &units.DimensionError{Op: "machine power", Left: got, Right: units.PowerDim}
	}
	if got := machine.MaxFeed.Dim(); got != units.VelocityDim {
		return &units.DimensionError{Op: "machine max feed", Left: got, Right: units.VelocityDim}
	}
	if (machine.MaxSpeed == nil) == (len(machine.Speeds) == 0) {
		return fmt.Errorf("machine %q: exactly one of max speed or stepped speeds must be set", machine.Name)
	}
	if machine.MaxSpeed != nil {
		if got := machine.MaxSpeed.Dim(); got != units.AngularVelocityDim {
			return &units.DimensionError{Op: "machine max speed", Left: got, Right: units.AngularVelocityDim}
		}
	}
	for _, s := range machine.Speeds {
		if got := s.Dim(); got != units.AngularVelocityDim {
			return &units.DimensionError{Op: "machine speed step", Left: got, Right: units.AngularVelocityDim}
		}
	}
	for _, d := range depths {
		if got := d.Dim(); got != units.LengthDim {
			return &units.DimensionError{Op: "axial depth", Left: got, Right: units.LengthDim}
		}
	}
	return nil
}

func stepoverCurve(budget, feed, diameter units.Quantity, depths []units.Quantity) ([]model.StepoverPoint, error) {
	// A zero or negative axial depth has no defined stepover; drop it
	// rather than emit an infinity.
	samples := make([]units.Quantity, 0, len(depths))
	for _, d := range depths {
		if d.Sign() > 0 {
			samples = append(samples, d)
		}
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Base() < samples[j].Base()
	})

	points := make([]model.StepoverPoint, 0, len(samples))
	for _, depth := range samples {
		radial := budget.Div(feed.Mul(depth))
		ratio, err := radial.Div(diameter).Float()
		if err != nil {
			return nil, err
		}
		radialOut, err := radial.ConvertTo(units.Inch)
		if err != nil {
			return nil, err
		}
		points = append(points, model.StepoverPoint{
			AxialDOC:        depth,
			RadialDOC:       radialOut,
			StepoverPercent: 100 * ratio,
		})
	}
	return points, nil
}
