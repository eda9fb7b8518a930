package model

import (
	"fmt"

	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

// Library holds the shop's machines, tools and materials. Entries are
// immutable reference data: the calculator reads them, never writes them.
type Library struct {
	Machines  []Machine      `json:"machines"`
	Tools     []Tool         `json:"tools"`
	Materials []WorkMaterial `json:"materials"`
}

// DefaultLibrary returns the library the tool ships with.
func DefaultLibrary() Library {
	sharpMax := units.New(3000, units.RevPerMinute)
	return Library{
		Machines: []Machine{
			{
				Name:     "Sharp LMV CNC Mill",
				Power:    units.New(3, units.Horsepower),
				MaxFeed:  units.New(60, units.InchesPerMinute),
				MaxSpeed: &sharpMax,
			},
			{
				Name:    "Bridgeport J-Head Mill",
				Power:   units.New(1, units.Horsepower),
				MaxFeed: units.New(30, units.InchesPerMinute),
				Speeds:  rpmSteps(80, 135, 210, 325, 660, 1115, 1750, 2720),
			},
		},
		Tools: []Tool{
			defaultTool(2, 1, HSSCobalt),
			defaultTool(3.0/4, 4, HSSCobalt),
			defaultTool(5.0/8, 4, HSSCobalt),
			defaultTool(1.0/2, 4, HSSCobalt),
			defaultTool(1.0/2, 4, Carbide),
			defaultTool(3.0/8, 4, Carbide),
			defaultTool(3.0/8, 2, HSSCobalt),
			defaultTool(3.0/8, 2, Carbide),
			defaultTool(3.0/16, 2, Carbide),
		},
		Materials: []WorkMaterial{
			{
				Name:         "Aluminum",
				SurfaceSpeed: sfm(300),
				UnitPower:    unitPower(0.4),
				Style:        PlotStyle{Color: "#0343df", Dash: DashSolid, Width: 1.5},
			},
			{
				Name:         "Mild Steel",
				SurfaceSpeed: sfm(100),
				UnitPower:    unitPower(1.8),
				Style:        PlotStyle{Color: "#e50000", Dash: DashSolid, Width: 1.5},
			},
			{
				Name:         "4130 Steel",
				SurfaceSpeed: sfm(80),
				UnitPower:    unitPower(2.2),
				Style:        PlotStyle{Color: "#0343df", Dash: DashDashed, Width: 2.0},
			},
			{
				Name:         "4140 Steel, annealed",
				SurfaceSpeed: sfm(60),
				UnitPower:    unitPower(2.3),
				Style:        PlotStyle{Color: "#e50000", Dash: DashDashed, Width: 1.5},
			},
			{
				Name:         "4140 Steel, hardened",
				SurfaceSpeed: sfm(30),
				UnitPower:    unitPower(2.6),
				Style:        PlotStyle{Color: "#15b01a", Dash: DashDashed, Width: 1.5},
			},
			{
				Name:         "304 Stainless",
				SurfaceSpeed: sfm(50),
				UnitPower:    unitPower(1.8),
				Style:        PlotStyle{Color: "#000000", Dash: DashDashDot, Width: 1.5},
			},
		},
	}
}

func defaultTool(diameterInches float64, teeth int, material ToolMaterial) Tool {
	d := units.New(diameterInches, units.Inch)
	label := fmt.Sprintf("%s\" %d fl. %s", FractionInches(d), teeth, material.Display())
	return NewTool(label, d, teeth, material)
}

func rpmSteps(values ...float64) []units.Quantity {
	speeds := make([]units.Quantity, len(values))
	for i, v := range values {
		speeds[i] = units.New(v, units.RevPerMinute)
	}
	return speeds
}

func sfm(v float64) units.Quantity {
	return units.New(v, units.FeetPerMinute)
}

func unitPower(v float64) units.Quantity {
	return units.New(v, units.HPMinPerCubicInch)
}

// MachineByName returns a pointer to the machine with the given name, or nil.
func (l *Library) MachineByName(name string) *Machine {
	for i := range l.Machines {
		if l.Machines[i].Name == name {
			return &l.Machines[i]
		}
	}
	return nil
}

// ToolByID returns a pointer to the tool with the given ID, or nil.
func (l *Library) ToolByID(id string) *Tool {
	for i := range l.Tools {
		if l.Tools[i].ID == id {
			return &l.Tools[i]
		}
	}
	return nil
}

// ToolByLabel returns a pointer to the first tool with the given label, or nil.
func (l *Library) ToolByLabel(label string) *Tool {
	for i := range l.Tools {
		if l.Tools[i].Label == label {
			return &l.Tools[i]
		}
	}
	return nil
}

// MaterialByName returns a pointer to the material with the given name, or nil.
func (l *Library) MaterialByName(name string) *WorkMaterial {
	for i := range l.Materials {
		if l.Materials[i].Name == name {
			return &l.Materials[i]
		}
	}
	return nil
}

// MergeTools adds tools to the library, replacing existing entries with the
// same label. It returns the number of tools added or replaced.
func (l *Library) MergeTools(tools []Tool) int {
	merged := 0
	for _, t := range tools {
		if existing := l.ToolByLabel(t.Label); existing != nil {
			id := existing.ID
			*existing = t
			existing.ID = id
			merged++
			continue
		}
		l.Tools = append(l.Tools, t)
		merged++
	}
	return merged
}

// Validate checks every library entry and the uniqueness of lookup keys.
func (l *Library) Validate() error {
	names := map[string]bool{}
	for _, m := range l.Machines {
		if err := m.Validate(); err != nil {
			return err
		}
		if names[m.Name] {
			return fmt.Errorf("machine %q: duplicate name", m.Name)
		}
		names[m.Name] = true
	}
	ids := map[string]bool{}
	for _, t := range l.Tools {
		if err := t.Validate(); err != nil {
			return err
		}
		if t.ID != "" && ids[t.ID] {
			return fmt.Errorf("tool %q: duplicate id %q", t.Label, t.ID)
		}
		ids[t.ID] = true
	}
	mats := map[string]bool{}
	for _, m := range l.Materials {
		if err := m.Validate(); err != nil {
			return err
		}
		if mats[m.Name] {
			return fmt.Errorf("material %q: duplicate name", m.Name)
		}
		mats[m.Name] = true
	}
	return nil
}
