package engine

import (
	"math"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

// SpeedEnvelope is the set of spindle speeds a machine can physically
// realize. Resolve maps an ideal speed to the nearest achievable one and
// never fails: clamping and nearest-match always produce a valid speed.
type SpeedEnvelope interface {
	Resolve(ideal units.Quantity) units.Quantity
}

// ContinuousEnvelope models a continuously variable spindle. Any speed at
// or below Max is achievable as requested.
type ContinuousEnvelope struct {
	Max units.Quantity
}

// Resolve clamps the ideal speed down to the ceiling. It never rounds up.
func (e ContinuousEnvelope) Resolve(ideal units.Quantity) units.Quantity {
	if ideal.Base() > e.Max.Base() {
		return e.Max
	}
	return ideal
}

// SteppedEnvelope models a gearbox with fixed speed steps. Speeds must be
// non-empty and keeps its defined order, which decides ties.
type SteppedEnvelope struct {
	Speeds []units.Quantity
}

// Resolve returns the step with the smallest absolute distance from the
// ideal speed. When two steps are equidistant the one listed first wins.
func (e SteppedEnvelope) Resolve(ideal units.Quantity) units.Quantity {
	best := e.Speeds[0]
	bestDiff := math.Abs(best.Base() - ideal.Base())
	for _, s := range e.Speeds[1:] {
		if d := math.Abs(s.Base() - ideal.Base()); d < bestDiff {
			best, bestDiff = s, d
		}
	}
	return best
}

// EnvelopeOf builds the speed envelope for a machine.
func EnvelopeOf(m model.Machine) SpeedEnvelope {
	if m.MaxSpeed != nil {
		return ContinuousEnvelope{Max: *m.MaxSpeed}
	}
	return SteppedEnvelope{Speeds: m.Speeds}
}
