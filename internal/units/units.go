// Package units provides dimension-checked physical quantities for the
// cutting-parameter engine. A Quantity couples a magnitude with a Unit;
// arithmetic composes and cancels dimensions so a formula cannot silently
// mix, say, a feed rate with a spindle speed. A quantity keeps the
// magnitude in the unit it was entered with, so display and serialization
// reproduce the entered value exactly; converting to a different unit
// rounds through the coherent base representation.
package units

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Dimension is an integer exponent vector over the base dimensions the
// engine works in: length, time, angle (measured in revolutions) and
// power. The zero value is dimensionless.
type Dimension struct {
	Length int8
	Time   int8
	Angle  int8
	Power  int8
}

// Dimensions checked at the engine boundary.
var (
	Dimensionless      = Dimension{}
	LengthDim          = Dimension{Length: 1}
	TimeDim            = Dimension{Time: 1}
	VelocityDim        = Dimension{Length: 1, Time: -1}
	AngularVelocityDim = Dimension{Angle: 1, Time: -1}
	PowerDim           = Dimension{Power: 1}
	FlowRateDim        = Dimension{Length: 3, Time: -1}
	SpecificPowerDim   = Dimension{Length: -3, Time: 1, Power: 1}
)

// Mul returns the dimension of a product.
func (d Dimension) Mul(o Dimension) Dimension {
	return Dimension{
		Length: d.Length + o.Length,
		Time:   d.Time + o.Time,
		Angle:  d.Angle + o.Angle,
		Power:  d.Power + o.Power,
	}
}

// Div returns the dimension of a quotient.
func (d Dimension) Div(o Dimension) Dimension {
	return Dimension{
		Length: d.Length - o.Length,
		Time:   d.Time - o.Time,
		Angle:  d.Angle - o.Angle,
		Power:  d.Power - o.Power,
	}
}

// IsZero reports whether d is dimensionless.
func (d Dimension) IsZero() bool {
	return d == Dimension{}
}

func (d Dimension) String() string {
	if d.IsZero() {
		return "dimensionless"
	}
	var parts []string
	for _, b := range []struct {
		name string
		exp  int8
	}{
		{"length", d.Length},
		{"time", d.Time},
		{"angle", d.Angle},
		{"power", d.Power},
	} {
		switch {
		case b.exp == 0:
		case b.exp == 1:
			parts = append(parts, b.name)
		default:
			parts = append(parts, fmt.Sprintf("%s^%d", b.name, b.exp))
		}
	}
	return strings.Join(parts, "*")
}

// Unit is a named scale for one dimension. Factor is the magnitude of one
// of this unit expressed in the package's coherent base units (meter,
// second, revolution, watt).
type Unit struct {
	Name   string
	Dim    Dimension
	Factor float64
}

// Base units.
var (
	Scalar     = Unit{Name: "", Factor: 1}
	Meter      = Unit{Name: "m", Dim: LengthDim, Factor: 1}
	Inch       = Unit{Name: "in", Dim: LengthDim, Factor: 0.0254}
	Millimeter = Unit{Name: "mm", Dim: LengthDim, Factor: 0.001}
	Foot       = Unit{Name: "ft", Dim: LengthDim, Factor: 0.3048}
	Second     = Unit{Name: "s", Dim: TimeDim, Factor: 1}
	Minute     = Unit{Name: "min", Dim: TimeDim, Factor: 60}
	Revolution = Unit{Name: "rev", Dim: Dimension{Angle: 1}, Factor: 1}
	Radian     = Unit{Name: "rad", Dim: Dimension{Angle: 1}, Factor: 1 / (2 * math.Pi)}
	Watt       = Unit{Name: "W", Dim: PowerDim, Factor: 1}
	Kilowatt   = Unit{Name: "kW", Dim: PowerDim, Factor: 1000}
	Horsepower = Unit{Name: "hp", Dim: PowerDim, Factor: 745.6998715822702}
)

// Derived units used across the engine and its reports.
var (
	FeetPerMinute        = Foot.Div(Minute).Named("ft/min")
	InchesPerMinute      = Inch.Div(Minute).Named("in/min")
	MillimetersPerMinute = Millimeter.Div(Minute).Named("mm/min")
	RevPerMinute         = Revolution.Div(Minute).Named("rpm")
	RadiansPerSecond     = Radian.Div(Second).Named("rad/s")
	PerRevolution        = Scalar.Div(Revolution).Named("1/rev")
	CubicInch            = Inch.Pow(3).Named("in3")
	CubicInchPerMinute   = CubicInch.Div(Minute).Named("in3/min")
	HPMinPerCubicInch    = Horsepower.Mul(Minute).Div(CubicInch).Named("hp*min/in3")
)

// byName indexes every predefined unit for JSON decoding.
var byName = map[string]Unit{}

func init() {
	for _, u := range []Unit{
		Scalar, Meter, Inch, Millimeter, Foot, Second, Minute,
		Revolution, Radian, Watt, Kilowatt, Horsepower,
		FeetPerMinute, InchesPerMinute, MillimetersPerMinute,
		RevPerMinute, RadiansPerSecond, PerRevolution,
		CubicInch, CubicInchPerMinute, HPMinPerCubicInch,
	} {
		byName[u.Name] = u
	}
}

// ByName returns a predefined unit by its display name.
func ByName(name string) (Unit, bool) {
	u, ok := byName[name]
	return u, ok
}

// Mul returns the product unit.
func (u Unit) Mul(o Unit) Unit {
	return Unit{
		Name:   composeName(u.Name, o.Name, '*'),
		Dim:    u.Dim.Mul(o.Dim),
		Factor: u.Factor * o.Factor,
	}
}

// Div returns the quotient unit.
func (u Unit) Div(o Unit) Unit {
	return Unit{
		Name:   composeName(u.Name, o.Name, '/'),
		Dim:    u.Dim.Div(o.Dim),
		Factor: u.Factor / o.Factor,
	}
}

// Pow returns the unit raised to an integer power.
func (u Unit) Pow(n int) Unit {
	return Unit{
		Name: fmt.Sprintf("%s^%d", u.Name, n),
		Dim: Dimension{
			Length: u.Dim.Length * int8(n),
			Time:   u.Dim.Time * int8(n),
			Angle:  u.Dim.Angle * int8(n),
			Power:  u.Dim.Power * int8(n),
		},
		Factor: math.Pow(u.Factor, float64(n)),
	}
}

// Named returns a copy of u with a display name.
func (u Unit) Named(name string) Unit {
	u.Name = name
	return u
}

func composeName(a, b string, sep byte) string {
	if a == "" && sep == '/' {
		a = "1"
	}
	if b == "" {
		return a
	}
	if a == "" {
		return b
	}
	return a + string(sep) + b
}

// DimensionError reports arithmetic or conversion between incompatible
// dimensions. Op names the operation that failed.
type DimensionError struct {
	Op    string
	Left  Dimension
	Right Dimension
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: incompatible dimensions %s and %s", e.Op, e.Left, e.Right)
}

// Quantity is a magnitude bound to a physical dimension. The magnitude is
// stored in the unit the quantity was constructed with, so a diameter
// entered as 0.75 in stays 0.75 in through display and serialization;
// arithmetic and ordering work on the coherent base-unit form.
type Quantity struct {
	value float64
	unit  Unit
}

// New returns a quantity of the given magnitude in the given unit.
func New(magnitude float64, unit Unit) Quantity {
	return Quantity{value: magnitude, unit: unit}
}

// Value returns the magnitude expressed in the quantity's own unit.
func (q Quantity) Value() float64 {
	return q.value
}

// Base returns the magnitude in coherent base units. It is a stable
// ordering key for quantities of identical dimension.
func (q Quantity) Base() float64 {
	return q.value * q.unit.Factor
}

// Unit returns the display unit the quantity was constructed with.
func (q Quantity) Unit() Unit {
	return q.unit
}

// Dim returns the quantity's dimension.
func (q Quantity) Dim() Dimension {
	return q.unit.Dim
}

// Sign returns -1, 0 or 1 according to the sign of the magnitude.
func (q Quantity) Sign() int {
	switch {
	case q.value < 0:
		return -1
	case q.value > 0:
		return 1
	default:
		return 0
	}
}

// In returns the magnitude expressed in the target unit. Converting to a
// unit with the quantity's own scale returns the stored magnitude as is.
func (q Quantity) In(target Unit) (float64, error) {
	if q.unit.Dim != target.Dim {
		return 0, &DimensionError{Op: "convert", Left: q.unit.Dim, Right: target.Dim}
	}
	if q.unit.Factor == target.Factor {
		return q.value, nil
	}
	return q.value * q.unit.Factor / target.Factor, nil
}

// ConvertTo returns an equivalent quantity carrying target as its unit.
func (q Quantity) ConvertTo(target Unit) (Quantity, error) {
	if q.unit.Dim != target.Dim {
		return Quantity{}, &DimensionError{Op: "convert", Left: q.unit.Dim, Right: target.Dim}
	}
	if q.unit.Factor == target.Factor {
		return Quantity{value: q.value, unit: target}, nil
	}
	return Quantity{value: q.value * q.unit.Factor / target.Factor, unit: target}, nil
}

// Mul returns the product q*o. Dimensions compose. The product's unit
// scale is the product of the operand scales, so the magnitudes multiply
// directly.
func (q Quantity) Mul(o Quantity) Quantity {
	return Quantity{value: q.value * o.value, unit: q.unit.Mul(o.unit)}
}

// Div returns the quotient q/o. Dimensions cancel.
func (q Quantity) Div(o Quantity) Quantity {
	return Quantity{value: q.value / o.value, unit: q.unit.Div(o.unit)}
}

// Scale returns the quantity scaled by a dimensionless factor.
func (q Quantity) Scale(f float64) Quantity {
	return Quantity{value: q.value * f, unit: q.unit}
}

// Add returns q+o expressed in q's unit. The operands must share a
// dimension.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if q.unit.Dim != o.unit.Dim {
		return Quantity{}, &DimensionError{Op: "add", Left: q.unit.Dim, Right: o.unit.Dim}
	}
	return Quantity{value: q.value + o.value*(o.unit.Factor/q.unit.Factor), unit: q.unit}, nil
}

// Sub returns q-o expressed in q's unit. The operands must share a
// dimension.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if q.unit.Dim != o.unit.Dim {
		return Quantity{}, &DimensionError{Op: "subtract", Left: q.unit.Dim, Right: o.unit.Dim}
	}
	return Quantity{value: q.value - o.value*(o.unit.Factor/q.unit.Factor), unit: q.unit}, nil
}

// Cmp compares two quantities of the same dimension. It returns -1 if
// q < o, 0 if equal and 1 if q > o.
func (q Quantity) Cmp(o Quantity) (int, error) {
	if q.unit.Dim != o.unit.Dim {
		return 0, &DimensionError{Op: "compare", Left: q.unit.Dim, Right: o.unit.Dim}
	}
	a, b := q.Base(), o.Base()
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

// Min returns the smaller of a and b, which must share a dimension.
func Min(a, b Quantity) (Quantity, error) {
	c, err := a.Cmp(b)
	if err != nil {
		return Quantity{}, err
	}
	if c <= 0 {
		return a, nil
	}
	return b, nil
}

// Max returns the larger of a and b, which must share a dimension.
func Max(a, b Quantity) (Quantity, error) {
	c, err := a.Cmp(b)
	if err != nil {
		return Quantity{}, err
	}
	if c >= 0 {
		return a, nil
	}
	return b, nil
}

// Float returns the magnitude of a dimensionless quantity. A cancelled
// unit can still carry a residual scale (an inch-per-foot ratio, say), so
// the base form is the true ratio.
func (q Quantity) Float() (float64, error) {
	if !q.unit.Dim.IsZero() {
		return 0, &DimensionError{Op: "float", Left: q.unit.Dim, Right: Dimensionless}
	}
	return q.Base(), nil
}

func (q Quantity) String() string {
	if q.unit.Name == "" {
		return fmt.Sprintf("%g", q.Value())
	}
	return fmt.Sprintf("%g %s", q.Value(), q.unit.Name)
}

type quantityJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// MarshalJSON encodes the quantity as {"value": v, "unit": name} using the
// quantity's own display unit.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(quantityJSON{Value: q.Value(), Unit: q.unit.Name})
}

// UnmarshalJSON decodes a quantity whose unit name matches one of the
// predefined units.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var raw quantityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u, ok := ByName(raw.Unit)
	if !ok {
		return fmt.Errorf("unknown unit %q", raw.Unit)
	}
	*q = New(raw.Value, u)
	return nil
}
