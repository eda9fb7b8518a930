package model

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

// ToolMaterial classifies what a tool is made of. The set is open: values
// beyond the built-in ones are legal and run at the baseline surface speed
// factor unless the settings list a multiplier for them.
type ToolMaterial string

const (
	HSS       ToolMaterial = "hss"
	HSSCobalt ToolMaterial = "hss_cobalt"
	Carbide   ToolMaterial = "carbide"
)

// Display returns the shop-floor spelling used on charts and labels.
func (m ToolMaterial) Display() string {
	switch m {
	case HSS:
		return "HSS"
	case HSSCobalt:
		return "HSS/Cobalt"
	case Carbide:
		return "Carbide"
	default:
		return string(m)
	}
}

// Tool represents an end mill in the shop library.
type Tool struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Diameter units.Quantity `json:"diameter"`
	Teeth    int            `json:"teeth"`
	Material ToolMaterial   `json:"material"`
}

// NewTool creates a tool with a generated ID.
func NewTool(label string, diameter units.Quantity, teeth int, material ToolMaterial) Tool {
	return Tool{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Diameter: diameter,
		Teeth:    teeth,
		Material: material,
	}
}

// Validate checks the tool's geometry.
func (t Tool) Validate() error {
	if t.Diameter.Dim() != units.LengthDim {
		return fmt.Errorf("tool %q: diameter must be a length, got %s", t.Label, t.Diameter.Dim())
	}
	if t.Diameter.Sign() <= 0 {
		return fmt.Errorf("tool %q: diameter must be positive, got %v", t.Label, t.Diameter)
	}
	if t.Teeth <= 0 {
		return fmt.Errorf("tool %q: tooth count must be positive, got %d", t.Label, t.Teeth)
	}
	return nil
}

// Line dash styles for stepover curves.
const (
	DashSolid   = "solid"
	DashDashed  = "dashed"
	DashDashDot = "dashdot"
)

// PlotStyle carries the line presentation for a material's stepover curve.
type PlotStyle struct {
	Color string  `json:"color"` // hex RGB, e.g. "#0343df"
	Dash  string  `json:"dash"`  // solid, dashed or dashdot
	Width float64 `json:"width"` // line width in points
}

// RGB decodes the hex color into its components. Unparseable colors come
// back as black.
func (s PlotStyle) RGB() (r, g, b int) {
	c := s.Color
	if len(c) == 7 && c[0] == '#' {
		c = c[1:]
	}
	if len(c) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(c, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

// WorkMaterial represents a stock material with its cutting properties.
type WorkMaterial struct {
	Name         string         `json:"name"`
	SurfaceSpeed units.Quantity `json:"surface_speed"` // max sustainable surface speed for HSS tooling
	UnitPower    units.Quantity `json:"unit_power"`    // spindle power per unit removal rate
	Style        PlotStyle      `json:"style"`
}

// Validate checks the material's cutting properties.
func (m WorkMaterial) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("material: name is required")
	}
	if m.SurfaceSpeed.Dim() != units.VelocityDim {
		return fmt.Errorf("material %q: surface speed must be a velocity, got %s", m.Name, m.SurfaceSpeed.Dim())
	}
	if m.SurfaceSpeed.Sign() <= 0 {
		return fmt.Errorf("material %q: surface speed must be positive, got %v", m.Name, m.SurfaceSpeed)
	}
	if m.UnitPower.Dim() != units.SpecificPowerDim {
		return fmt.Errorf("material %q: unit power must be power per removal rate, got %s", m.Name, m.UnitPower.Dim())
	}
	if m.UnitPower.Sign() <= 0 {
		return fmt.Errorf("material %q: unit power must be positive, got %v", m.Name, m.UnitPower)
	}
	return nil
}

// Machine represents a mill with its power and kinematic limits. Exactly
// one of MaxSpeed (continuously variable head) or Speeds (fixed gearbox
// steps, in preference order for ties) must be set.
type Machine struct {
	Name     string           `json:"name"`
	Power    units.Quantity   `json:"power"`
	MaxFeed  units.Quantity   `json:"max_feed"`
	MaxSpeed *units.Quantity  `json:"max_speed,omitempty"`
	Speeds   []units.Quantity `json:"speeds,omitempty"`
}

// Continuous reports whether the spindle is continuously variable.
func (m Machine) Continuous() bool {
	return m.MaxSpeed != nil
}

// Validate checks the machine's limits and its speed capability.
func (m Machine) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("machine: name is required")
	}
	if m.Power.Dim() != units.PowerDim {
		return fmt.Errorf("machine %q: power must be a power, got %s", m.Name, m.Power.Dim())
	}
	if m.Power.Sign() <= 0 {
		return fmt.Errorf("machine %q: power must be positive, got %v", m.Name, m.Power)
	}
	if m.MaxFeed.Dim() != units.VelocityDim {
		return fmt.Errorf("machine %q: max feed must be a velocity, got %s", m.Name, m.MaxFeed.Dim())
	}
	if m.MaxFeed.Sign() <= 0 {
		return fmt.Errorf("machine %q: max feed must be positive, got %v", m.Name, m.MaxFeed)
	}
	if (m.MaxSpeed != nil) == (len(m.Speeds) > 0) {
		return fmt.Errorf("machine %q: exactly one of max_speed or speeds must be set", m.Name)
	}
	if m.MaxSpeed != nil {
		if m.MaxSpeed.Dim() != units.AngularVelocityDim {
			return fmt.Errorf("machine %q: max speed must be an angular velocity, got %s", m.Name, m.MaxSpeed.Dim())
		}
		if m.MaxSpeed.Sign() <= 0 {
			return fmt.Errorf("machine %q: max speed must be positive, got %v", m.Name, *m.MaxSpeed)
		}
	}
	for i, s := range m.Speeds {
		if s.Dim() != units.AngularVelocityDim {
			return fmt.Errorf("machine %q: speeds[%d] must be an angular velocity, got %s", m.Name, i, s.Dim())
		}
		if s.Sign() <= 0 {
			return fmt.Errorf("machine %q: speeds[%d] must be positive, got %v", m.Name, i, s)
		}
	}
	return nil
}

// FractionInches renders a length as the fractional-inch spelling used on
// tool labels and chart titles, e.g. "3/4" or "3/16". Lengths that do not
// reduce to a clean fraction fall back to a decimal rendering.
func FractionInches(d units.Quantity) string {
	v, err := d.In(units.Inch)
	if err != nil {
		return d.String()
	}
	for _, den := range []int{1, 2, 4, 8, 16, 32, 64} {
		num := math.Round(v * float64(den))
		if math.Abs(v-num/float64(den)) < 1e-9 {
			n := int(num)
			if den == 1 {
				return strconv.Itoa(n)
			}
			g := gcd(n, den)
			if den/g == 1 {
				return strconv.Itoa(n / g)
			}
			return fmt.Sprintf("%d/%d", n/g, den/g)
		}
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
