package model

import (
	"math"

	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

// StepoverPoint is one sample of the stepover curve: at AxialDOC of axial
// engagement the power budget sustains RadialDOC of radial engagement.
type StepoverPoint struct {
	AxialDOC        units.Quantity `json:"axial_doc"`
	RadialDOC       units.Quantity `json:"radial_doc"`
	StepoverPercent float64        `json:"stepover_percent"`
}

// CuttingResult carries the recommended parameters for one machine, tool
// and material combination. Results are ephemeral: they are recomputed on
// demand and never persisted.
//
// The calculator emits SpindleSpeed in rpm, FeedRate in in/min, TargetPower
// in hp and RemovalRate in in3/min, so Value() on each reads in those units.
type CuttingResult struct {
	Machine  Machine      `json:"machine"`
	Tool     Tool         `json:"tool"`
	Material WorkMaterial `json:"material"`

	SpindleSpeed units.Quantity  `json:"spindle_speed"`
	FeedRate     units.Quantity  `json:"feed_rate"`
	TargetPower  units.Quantity  `json:"target_power"`
	RemovalRate  units.Quantity  `json:"removal_rate"`
	Curve        []StepoverPoint `json:"curve"`
}

// SpindleRPM returns the achieved spindle speed in revolutions per minute.
func (r CuttingResult) SpindleRPM() float64 {
	return r.SpindleSpeed.Value()
}

// FeedIPM returns the achieved feed rate in inches per minute.
func (r CuttingResult) FeedIPM() float64 {
	return r.FeedRate.Value()
}

// StepoverAtDepth returns the stepover percentage at the curve sample
// nearest the given axial depth. It reports false when the curve is empty
// or the depth is not a length.
func (r CuttingResult) StepoverAtDepth(depth units.Quantity) (float64, bool) {
	if len(r.Curve) == 0 || depth.Dim() != units.LengthDim {
		return 0, false
	}
	best := r.Curve[0]
	bestDiff := math.Abs(best.AxialDOC.Base() - depth.Base())
	for _, p := range r.Curve[1:] {
		d := math.Abs(p.AxialDOC.Base() - depth.Base())
		if d < bestDiff {
			best, bestDiff = p, d
		}
	}
	return best.StepoverPercent, true
}
