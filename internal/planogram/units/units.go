// Package units keeps the three length systems used by the planogram apart:
// raw millimeters from the source data, scale-independent centimeters used for
// bookkeeping, and display units (centimeters multiplied by the view scale).
package units

// Millimeters is a raw length as delivered by the planogram API.
type Millimeters float64

// Centimeters is a scale-independent length (mm / 10).
type Centimeters float64

// DisplayUnits is an on-screen length: centimeters times the display scale.
type DisplayUnits float64

// ToDisplay converts millimeters into display units: (mm / 10) * scale.
// NaN inputs propagate, callers default missing values beforehand.
func ToDisplay(mm Millimeters, scale float64) DisplayUnits {
	return DisplayUnits(float64(mm) / 10 * scale)
}

// ToCentimeters is ToDisplay with an implicit scale of 1.
func ToCentimeters(mm Millimeters) Centimeters {
	return Centimeters(ToDisplay(mm, 1))
}

// Scale multiplies a centimeter value by the display scale.
func (c Centimeters) Scale(scale float64) DisplayUnits {
	return DisplayUnits(float64(c) * scale)
}

// Unscale maps display units back to centimeters.
func (d DisplayUnits) Unscale(scale float64) Centimeters {
	return Centimeters(float64(d) / scale)
}

// Or returns the pointed value or def when the pointer is nil.
func Or(v *Millimeters, def Millimeters) Millimeters {
	if v == nil {
		return def
	}
	return *v
}

// MM is a helper for literals of optional millimeter fields.
func MM(v float64) *Millimeters {
	mm := Millimeters(v)
	return &mm
}
