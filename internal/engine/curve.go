package engine

import (
	"math"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

// DepthGrid produces the axial depth-of-cut samples for a stepover curve.
// Both knobs are presentation policy, not physics: the ceiling controls how
// much of the flute length the chart covers, the step its resolution.
type DepthGrid struct {
	// MaxDiameterMultiple sets the deepest sample as a multiple of tool
	// diameter.
	MaxDiameterMultiple float64

	// Step is the spacing between consecutive samples.
	Step units.Quantity
}

// GridFromSettings builds the grid configured in the settings.
func GridFromSettings(s model.Settings) DepthGrid {
	return DepthGrid{
		MaxDiameterMultiple: s.MaxDepthDiameterMultiple,
		Step:                s.DepthStep,
	}
}

// Samples returns ascending depth samples for a tool diameter: one step
// above zero up to MaxDiameterMultiple times the diameter, inclusive.
// Each call allocates a fresh slice, so a grid can be reused across tools.
func (g DepthGrid) Samples(diameter units.Quantity) []units.Quantity {
	if g.MaxDiameterMultiple <= 0 || g.Step.Sign() <= 0 || diameter.Sign() <= 0 {
		return nil
	}
	limit := diameter.Scale(g.MaxDiameterMultiple)
	ratio, err := limit.Div(g.Step).Float()
	if err != nil {
		return nil
	}
	n := int(math.Floor(ratio + 1e-9))
	samples := make([]units.Quantity, 0, n)
	for i := 1; i <= n; i++ {
		samples = append(samples, g.Step.Scale(float64(i)))
	}
	return samples
}
